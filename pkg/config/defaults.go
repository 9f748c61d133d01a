package config

import "time"

// Default values for configuration fields.
const (
	// Policy defaults
	DefaultPolicyDir              = "policies"
	DefaultPolicyWatch            = true
	DefaultPolicyDebounceInterval = 250 * time.Millisecond
	DefaultPolicyMaxFileSize      = 1048576 // 1MB
	DefaultPolicySnapshotPath     = "data/policies.db"
	DefaultPolicySkipInvalid      = true

	// Engine defaults
	DefaultEngineWeight = 10

	// Results defaults
	DefaultResultsEnabled      = true
	DefaultResultsBackend      = "sqlite"
	DefaultResultsSQLitePath   = "data/matches.db"
	DefaultResultsAsyncBuffer  = 1000
	DefaultResultsWriteTimeout = 5 * time.Second

	// Retention defaults
	DefaultRetentionDays = 90
	DefaultPruneSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "json"
	DefaultMetricsEnabled       = true
	DefaultMetricsListenAddress = "127.0.0.1:9090"
	DefaultMetricsPath          = "/metrics"
)

// DefaultConfig returns a configuration populated with default values.
// Boolean defaults are set here because ApplyDefaults cannot distinguish an
// explicit false from an unset field.
func DefaultConfig() *Config {
	cfg := &Config{
		Policy: PolicyConfig{
			Watch:       DefaultPolicyWatch,
			SkipInvalid: DefaultPolicySkipInvalid,
		},
		Results: ResultsConfig{
			Enabled: DefaultResultsEnabled,
			Retention: RetentionConfig{
				PruneSchedule: DefaultPruneSchedule,
			},
		},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{
				Enabled: DefaultMetricsEnabled,
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in default values for any unset configuration fields.
// Explicitly set values are never overwritten.
func ApplyDefaults(cfg *Config) {
	if cfg.Policy.Dir == "" {
		cfg.Policy.Dir = DefaultPolicyDir
	}
	if cfg.Policy.DebounceInterval <= 0 {
		cfg.Policy.DebounceInterval = DefaultPolicyDebounceInterval
	}
	if cfg.Policy.MaxFileSize <= 0 {
		cfg.Policy.MaxFileSize = DefaultPolicyMaxFileSize
	}
	if cfg.Policy.SnapshotPath == "" {
		cfg.Policy.SnapshotPath = DefaultPolicySnapshotPath
	}

	if cfg.Engine.DefaultWeight <= 0 {
		cfg.Engine.DefaultWeight = DefaultEngineWeight
	}
	if cfg.Engine.MaxConcurrency < 0 {
		cfg.Engine.MaxConcurrency = 0
	}

	if cfg.Results.Backend == "" {
		cfg.Results.Backend = DefaultResultsBackend
	}
	if cfg.Results.SQLitePath == "" {
		cfg.Results.SQLitePath = DefaultResultsSQLitePath
	}
	if cfg.Results.AsyncBuffer <= 0 {
		cfg.Results.AsyncBuffer = DefaultResultsAsyncBuffer
	}
	if cfg.Results.WriteTimeout <= 0 {
		cfg.Results.WriteTimeout = DefaultResultsWriteTimeout
	}
	if cfg.Results.Retention.RetentionDays < 0 {
		cfg.Results.Retention.RetentionDays = DefaultRetentionDays
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
