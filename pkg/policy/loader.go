package policy

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// LoaderConfig contains configuration for the policy loader.
type LoaderConfig struct {
	// MaxFileSize is the maximum policy file size in bytes.
	// Default: 1 MiB.
	MaxFileSize int64

	// Extensions is the list of file extensions treated as policy files.
	// Default: .yaml, .yml.
	Extensions []string

	// TypeChecker, when set, verifies every configured criterion tag
	// against the rule registry at load time so a policy referencing an
	// unregistered criterion fails here instead of at evaluation time.
	TypeChecker TypeChecker
}

// TypeChecker reports whether a criterion type has a registered rule.
// *rules.Registry satisfies this interface.
type TypeChecker interface {
	Has(ct CriterionType) bool
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		MaxFileSize: 1 << 20,
		Extensions:  []string{".yaml", ".yml"},
	}
}

// Loader reads lender policy YAML files and returns validated LenderPolicy
// values. The matching engine never sees a policy that failed validation.
type Loader struct {
	config *LoaderConfig
	logger *slog.Logger
}

// NewLoader creates a new policy loader with the given configuration.
// A nil config uses defaults.
func NewLoader(config *LoaderConfig) *Loader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = 1 << 20
	}
	if len(config.Extensions) == 0 {
		config.Extensions = []string{".yaml", ".yml"}
	}
	return &Loader{
		config: config,
		logger: slog.Default().With("component", "policy.loader"),
	}
}

// LoadFile loads and validates a single policy file. The lender id must
// match the file's base name (without extension).
func (l *Loader) LoadFile(path string) (*LenderPolicy, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{FilePath: path, Message: "file not found", Cause: err}
		}
		return nil, &LoadError{FilePath: path, Message: "failed to access file", Cause: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &LoadError{FilePath: path, Message: "not a regular file"}
	}
	if info.Size() > l.config.MaxFileSize {
		return nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), l.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to read file", Cause: err}
	}
	if !utf8.Valid(data) {
		return nil, &LoadError{FilePath: path, Message: "file contains invalid UTF-8 encoding"}
	}

	lenderID := lenderIDFromPath(path)

	policy, err := l.LoadBytes(data, lenderID)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.FilePath = path
		}
		return nil, err
	}

	l.logger.Info("loaded policy",
		"lender_id", policy.ID,
		"version", policy.Version,
		"programs", len(policy.Programs),
	)
	return policy, nil
}

// LoadBytes parses and validates policy YAML. The expected lender id is
// checked against the policy's declared id; pass an empty string to skip
// that check.
func (l *Loader) LoadBytes(data []byte, expectedID string) (*LenderPolicy, error) {
	var policy LenderPolicy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, &LoadError{LenderID: expectedID, Message: "invalid YAML syntax", Cause: err}
	}

	if expectedID != "" && policy.ID != expectedID {
		return nil, &LoadError{
			LenderID: expectedID,
			Message:  fmt.Sprintf("policy id %q does not match filename-derived id %q", policy.ID, expectedID),
		}
	}

	if err := Validate(&policy, l.config.TypeChecker); err != nil {
		return nil, err
	}

	return &policy, nil
}

// LoadDirectory loads every policy file in dir, sorted by filename for
// deterministic ordering. Files whose base name starts with an underscore
// are treated as templates and skipped.
//
// When skipErrors is true, files that fail to load are logged and skipped
// and the per-file errors are returned alongside the successfully loaded
// policies. When false, the first error aborts the load.
func (l *Loader) LoadDirectory(dir string, skipErrors bool) ([]*LenderPolicy, []error, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, &LoadError{FilePath: dir, Message: "directory not found", Cause: err}
		}
		return nil, nil, &LoadError{FilePath: dir, Message: "failed to read directory", Cause: err}
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
			continue
		}
		if !l.hasPolicyExtension(name) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)

	var (
		policies []*LenderPolicy
		loadErrs []error
	)
	for _, path := range paths {
		policy, err := l.LoadFile(path)
		if err != nil {
			if !skipErrors {
				return nil, nil, err
			}
			l.logger.Warn("skipping policy file", "path", path, "error", err)
			loadErrs = append(loadErrs, err)
			continue
		}
		policies = append(policies, policy)
	}

	return policies, loadErrs, nil
}

// hasPolicyExtension reports whether the filename carries a recognized
// policy extension.
func (l *Loader) hasPolicyExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range l.config.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// lenderIDFromPath derives the lender id from a policy file path: the base
// name without extension, lower-cased.
func lenderIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}
