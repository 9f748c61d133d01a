package config

import (
	"strings"
	"testing"
)

// fieldSet flattens a Validate error into the set of offending field paths.
func fieldSet(t *testing.T, err error) map[string]bool {
	t.Helper()
	if err == nil {
		return nil
	}
	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("Validate() returned %T, want ValidationError", err)
	}
	out := make(map[string]bool, len(verr.Errors))
	for _, fe := range verr.Errors {
		out[fe.Field] = true
	}
	return out
}

func TestValidateRejectsBadFields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "empty policy dir",
			mutate:    func(c *Config) { c.Policy.Dir = "" },
			wantField: "policy.dir",
		},
		{
			name:      "non-positive max file size",
			mutate:    func(c *Config) { c.Policy.MaxFileSize = -1 },
			wantField: "policy.max_file_size",
		},
		{
			name:      "non-positive debounce interval",
			mutate:    func(c *Config) { c.Policy.DebounceInterval = 0 },
			wantField: "policy.debounce_interval",
		},
		{
			name:      "non-positive default weight",
			mutate:    func(c *Config) { c.Engine.DefaultWeight = 0 },
			wantField: "engine.default_weight",
		},
		{
			name:      "negative concurrency",
			mutate:    func(c *Config) { c.Engine.MaxConcurrency = -2 },
			wantField: "engine.max_concurrency",
		},
		{
			name:      "unknown results backend",
			mutate:    func(c *Config) { c.Results.Backend = "dynamo" },
			wantField: "results.backend",
		},
		{
			name: "sqlite backend without path",
			mutate: func(c *Config) {
				c.Results.Backend = "sqlite"
				c.Results.SQLitePath = ""
			},
			wantField: "results.sqlite_path",
		},
		{
			name:      "negative retention days",
			mutate:    func(c *Config) { c.Results.Retention.RetentionDays = -1 },
			wantField: "results.retention.retention_days",
		},
		{
			name:      "bad cron expression",
			mutate:    func(c *Config) { c.Results.Retention.PruneSchedule = "whenever" },
			wantField: "results.retention.prune_schedule",
		},
		{
			name:      "unknown log level",
			mutate:    func(c *Config) { c.Telemetry.Logging.Level = "trace" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "unknown log format",
			mutate:    func(c *Config) { c.Telemetry.Logging.Format = "logfmt" },
			wantField: "telemetry.logging.format",
		},
		{
			name: "metrics enabled without address",
			mutate: func(c *Config) {
				c.Telemetry.Metrics.Enabled = true
				c.Telemetry.Metrics.ListenAddress = ""
			},
			wantField: "telemetry.metrics.listen_address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			fields := fieldSet(t, Validate(cfg))
			if !fields[tt.wantField] {
				t.Errorf("no error at %q, got %v", tt.wantField, fields)
			}
		})
	}
}

func TestValidateAcceptsMemoryBackendWithoutPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Results.Backend = "memory"
	cfg.Results.SQLitePath = ""
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidateEmptyScheduleAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Results.Retention.PruneSchedule = ""
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	one := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if got := one.Error(); got != "configuration validation failed: a: bad" {
		t.Errorf("single error = %q", got)
	}

	many := ValidationError{Errors: []FieldError{
		{Field: "a", Message: "bad"},
		{Field: "b", Message: "worse"},
	}}
	if got := many.Error(); !strings.Contains(got, "2 errors") {
		t.Errorf("aggregate = %q", got)
	}
}
