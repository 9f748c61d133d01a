package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path. It
// applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Decode over a defaulted config so boolean defaults survive when
	// the file omits them.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention ATLAS_SECTION_FIELD (e.g., ATLAS_POLICY_DIR) and always take
// precedence over file values.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies ATLAS_SECTION_FIELD environment variable
// overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Policy overrides
	if val := os.Getenv("ATLAS_POLICY_DIR"); val != "" {
		cfg.Policy.Dir = val
	}
	if val := os.Getenv("ATLAS_POLICY_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Policy.Watch = b
		}
	}
	if val := os.Getenv("ATLAS_POLICY_DEBOUNCE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Policy.DebounceInterval = d
		}
	}
	if val := os.Getenv("ATLAS_POLICY_MAX_FILE_SIZE"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Policy.MaxFileSize = i
		}
	}
	if val := os.Getenv("ATLAS_POLICY_SNAPSHOT_PATH"); val != "" {
		cfg.Policy.SnapshotPath = val
	}
	if val := os.Getenv("ATLAS_POLICY_SKIP_INVALID"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Policy.SkipInvalid = b
		}
	}

	// Engine overrides
	if val := os.Getenv("ATLAS_ENGINE_DEFAULT_WEIGHT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Engine.DefaultWeight = i
		}
	}
	if val := os.Getenv("ATLAS_ENGINE_MAX_CONCURRENCY"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Engine.MaxConcurrency = i
		}
	}

	// Results overrides
	if val := os.Getenv("ATLAS_RESULTS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Results.Enabled = b
		}
	}
	if val := os.Getenv("ATLAS_RESULTS_BACKEND"); val != "" {
		cfg.Results.Backend = strings.ToLower(val)
	}
	if val := os.Getenv("ATLAS_RESULTS_SQLITE_PATH"); val != "" {
		cfg.Results.SQLitePath = val
	}
	if val := os.Getenv("ATLAS_RESULTS_ASYNC_BUFFER"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Results.AsyncBuffer = i
		}
	}
	if val := os.Getenv("ATLAS_RESULTS_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Results.WriteTimeout = d
		}
	}
	if val := os.Getenv("ATLAS_RESULTS_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Results.Retention.RetentionDays = i
		}
	}
	if val := os.Getenv("ATLAS_RESULTS_PRUNE_SCHEDULE"); val != "" {
		cfg.Results.Retention.PruneSchedule = val
	}
	if val := os.Getenv("ATLAS_RESULTS_MAX_RECORDS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Results.Retention.MaxRecords = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("ATLAS_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = strings.ToLower(val)
	}
	if val := os.Getenv("ATLAS_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = strings.ToLower(val)
	}
	if val := os.Getenv("ATLAS_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("ATLAS_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
	if val := os.Getenv("ATLAS_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}
