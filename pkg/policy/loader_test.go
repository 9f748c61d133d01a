package policy

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePolicyFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadFileValid(t *testing.T) {
	dir := t.TempDir()
	path := writePolicyFile(t, dir, "acme_capital.yaml", `
id: acme_capital
name: Acme Capital
version: 3
programs:
  - id: standard
    name: Standard
    criteria:
      credit_score:
        type: fico
        min: 680
`)

	loader := NewLoader(&LoaderConfig{TypeChecker: knownTypes{}})
	p, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if p.ID != "acme_capital" || p.Version != 3 {
		t.Errorf("loaded policy = %s@%d, want acme_capital@3", p.ID, p.Version)
	}
	if p.Programs[0].Criteria.CreditScore == nil || p.Programs[0].Criteria.CreditScore.Min != 680 {
		t.Errorf("credit score criteria = %+v", p.Programs[0].Criteria.CreditScore)
	}
}

func TestLoadFileIDMismatch(t *testing.T) {
	dir := t.TempDir()
	path := writePolicyFile(t, dir, "wrong_name.yaml", `
id: acme_capital
name: Acme Capital
version: 1
programs:
  - id: standard
    name: Standard
`)

	loader := NewLoader(nil)
	_, err := loader.LoadFile(path)
	if err == nil {
		t.Fatal("LoadFile() = nil, want id mismatch error")
	}
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("error is %T, want *LoadError", err)
	}
	if !strings.Contains(le.Message, "does not match filename-derived id") {
		t.Errorf("message = %q", le.Message)
	}
}

func TestLoadFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writePolicyFile(t, dir, "broken.yaml", "id: [unclosed\n")

	loader := NewLoader(nil)
	_, err := loader.LoadFile(path)
	var le *LoadError
	if !errors.As(err, &le) || !strings.Contains(le.Message, "invalid YAML syntax") {
		t.Errorf("error = %v, want YAML syntax load error", err)
	}
}

func TestLoadFileSizeLimit(t *testing.T) {
	dir := t.TempDir()
	path := writePolicyFile(t, dir, "big.yaml", strings.Repeat("# padding\n", 100))

	loader := NewLoader(&LoaderConfig{MaxFileSize: 64})
	_, err := loader.LoadFile(path)
	var le *LoadError
	if !errors.As(err, &le) || !strings.Contains(le.Message, "exceeds maximum") {
		t.Errorf("error = %v, want size limit load error", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	loader := NewLoader(nil)
	_, err := loader.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	var le *LoadError
	if !errors.As(err, &le) || !strings.Contains(le.Message, "file not found") {
		t.Errorf("error = %v, want file-not-found load error", err)
	}
}

func TestLoadFileValidationFailure(t *testing.T) {
	dir := t.TempDir()
	path := writePolicyFile(t, dir, "no_programs.yaml", `
id: no_programs
name: No Programs
version: 1
`)

	loader := NewLoader(nil)
	_, err := loader.LoadFile(path)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error = %v (%T), want ValidationErrors", err, err)
	}
}

func TestLoadDirectorySortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writePolicyFile(t, dir, "zeta_finance.yaml", `
id: zeta_finance
name: Zeta Finance
version: 1
programs:
  - id: standard
    name: Standard
`)
	writePolicyFile(t, dir, "alpha_lending.yml", `
id: alpha_lending
name: Alpha Lending
version: 1
programs:
  - id: standard
    name: Standard
`)
	writePolicyFile(t, dir, "_template.yaml", "id: ignored\n")
	writePolicyFile(t, dir, ".hidden.yaml", "id: ignored\n")
	writePolicyFile(t, dir, "notes.txt", "not a policy\n")

	loader := NewLoader(nil)
	policies, loadErrs, err := loader.LoadDirectory(dir, false)
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}
	if len(loadErrs) != 0 {
		t.Fatalf("LoadDirectory() loadErrs = %v", loadErrs)
	}
	if len(policies) != 2 {
		t.Fatalf("loaded %d policies, want 2", len(policies))
	}
	if policies[0].ID != "alpha_lending" || policies[1].ID != "zeta_finance" {
		t.Errorf("load order = [%s, %s], want alphabetical", policies[0].ID, policies[1].ID)
	}
}

func TestLoadDirectorySkipErrors(t *testing.T) {
	dir := t.TempDir()
	writePolicyFile(t, dir, "good_lender.yaml", `
id: good_lender
name: Good Lender
version: 1
programs:
  - id: standard
    name: Standard
`)
	writePolicyFile(t, dir, "bad_lender.yaml", "id: [broken\n")

	loader := NewLoader(nil)

	policies, loadErrs, err := loader.LoadDirectory(dir, true)
	if err != nil {
		t.Fatalf("LoadDirectory(skip) error = %v", err)
	}
	if len(policies) != 1 || policies[0].ID != "good_lender" {
		t.Errorf("policies = %v, want good_lender only", policies)
	}
	if len(loadErrs) != 1 {
		t.Errorf("loadErrs = %v, want one entry", loadErrs)
	}

	_, _, err = loader.LoadDirectory(dir, false)
	if err == nil {
		t.Error("LoadDirectory(strict) = nil error, want abort on first failure")
	}
}

func TestLoadDirectoryMissing(t *testing.T) {
	loader := NewLoader(nil)
	_, _, err := loader.LoadDirectory(filepath.Join(t.TempDir(), "absent"), true)
	var le *LoadError
	if !errors.As(err, &le) || !strings.Contains(le.Message, "directory not found") {
		t.Errorf("error = %v, want directory-not-found load error", err)
	}
}

func TestLenderIDFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"policies/acme_capital.yaml", "acme_capital"},
		{"/abs/path/Big_Lender.YML", "big_lender"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := lenderIDFromPath(tt.path); got != tt.want {
			t.Errorf("lenderIDFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
