package config

import "time"

// Config is the root configuration structure for Atlas. It contains all
// configuration sections for policy loading, the matching engine, results
// recording, and telemetry.
type Config struct {
	// Policy contains configuration for lender policy loading including
	// the policy directory, watch mode, and snapshot fallback.
	Policy PolicyConfig `yaml:"policy"`

	// Engine contains configuration for the matching engine.
	Engine EngineConfig `yaml:"engine"`

	// Results contains configuration for match result recording and
	// retention.
	Results ResultsConfig `yaml:"results"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// PolicyConfig contains configuration for lender policy loading.
type PolicyConfig struct {
	// Dir is the directory containing lender policy YAML files.
	// Default: "policies"
	Dir string `yaml:"dir"`

	// Watch enables hot reloading when policy files change.
	// Default: true
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period after the last file event
	// before a reload triggers.
	// Default: 250ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// MaxFileSize is the maximum policy file size in bytes.
	// Default: 1048576 (1MB)
	MaxFileSize int64 `yaml:"max_file_size"`

	// SnapshotPath is the SQLite database holding the last known-good
	// policy set, used as a fallback when the directory fails to load at
	// startup. Empty disables the snapshot store.
	// Default: "data/policies.db"
	SnapshotPath string `yaml:"snapshot_path"`

	// SkipInvalid continues loading when individual policy files fail,
	// skipping the broken files. When false, any bad file fails the
	// whole load.
	// Default: true
	SkipInvalid bool `yaml:"skip_invalid"`
}

// EngineConfig contains configuration for the matching engine.
type EngineConfig struct {
	// DefaultWeight is the scoring weight for criteria a policy does not
	// weight explicitly.
	// Default: 10
	DefaultWeight int `yaml:"default_weight"`

	// MaxConcurrency caps the number of lenders evaluated concurrently
	// per application. Zero means one goroutine per lender.
	// Default: 0
	MaxConcurrency int `yaml:"max_concurrency"`
}

// ResultsConfig contains configuration for match result recording.
type ResultsConfig struct {
	// Enabled enables result recording.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "memory" or "sqlite".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLitePath is the match record database path for the sqlite
	// backend.
	// Default: "data/matches.db"
	SQLitePath string `yaml:"sqlite_path"`

	// AsyncBuffer is the size of the recorder's async write buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for persisting one record.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Retention contains record retention settings.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig contains match record retention settings.
type RetentionConfig struct {
	// RetentionDays is the number of days to retain records. 0 keeps
	// records forever.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for scheduled pruning. Empty
	// disables scheduling.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords caps the number of retained records. 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains structured logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics settings.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled enables the metrics endpoint.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address for the metrics HTTP server.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// Path is the metrics endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
