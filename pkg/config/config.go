package config

import "time"

// Config is the root configuration for Ganymede.
type Config struct {
	// Simulation configures the model population and tick loop.
	Simulation SimulationConfig `yaml:"simulation"`

	// Rules configures where rule definitions come from.
	Rules RulesConfig `yaml:"rules"`

	// Results configures run and tick persistence.
	Results ResultsConfig `yaml:"results"`

	// Checkpoint configures model snapshot persistence.
	Checkpoint CheckpointConfig `yaml:"checkpoint"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// SimulationConfig configures the model population and tick loop.
type SimulationConfig struct {
	// Engineers is the initial agent population size.
	// Default: 10
	Engineers int `yaml:"engineers"`

	// InitialTasks is the backlog size each agent starts with.
	// Default: 5
	InitialTasks int `yaml:"initial_tasks"`

	// InitialPsychSafety is the team's starting psychological safety
	// level in [0, 1]. Default: 0.5
	InitialPsychSafety float64 `yaml:"initial_psych_safety"`

	// PsychSafetyThreshold is the safety level at which collaboration
	// reaches full strength. Default: 0.7
	PsychSafetyThreshold float64 `yaml:"psych_safety_threshold"`

	// BaseWorkUnits is the work done per tick before efficiency
	// scaling. Default: 0.1
	BaseWorkUnits float64 `yaml:"base_work_units"`

	// MaxSteps is the maximum number of ticks to run. The run also
	// stops early once a tick applies no effects. Default: 100
	MaxSteps int `yaml:"max_steps"`

	// Seed seeds the random initialization of agent attributes.
	// 0 means derive a seed from the current time.
	Seed int64 `yaml:"seed"`

	// Workers is the number of goroutines evaluating rules. 1 runs
	// evaluations sequentially. Default: 1
	Workers int `yaml:"workers"`

	// RuleTimeout bounds a single rule evaluation.
	// Default: 100ms
	RuleTimeout time.Duration `yaml:"rule_timeout"`

	// MaxEffectsPerTick caps effects collected in one tick.
	// Default: 50000
	MaxEffectsPerTick int `yaml:"max_effects_per_tick"`
}

// RulesConfig configures where rule definitions come from.
type RulesConfig struct {
	// Path is a ruleset YAML file or a directory of them. Empty means
	// use the built-in default ruleset.
	Path string `yaml:"path"`

	// Watch reloads the ruleset when files under Path change.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval coalesces rapid file change events during a
	// watched reload. Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// ResultsConfig configures run and tick persistence.
type ResultsConfig struct {
	// Enabled controls whether results are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend ("sqlite", "memory").
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the SQLite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention configures pruning of old results.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig configures a SQLite database.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging. Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig configures pruning of old results.
type RetentionConfig struct {
	// Days is the number of days to retain finished runs.
	// 0 disables age-based pruning. Default: 90
	Days int `yaml:"days"`

	// Schedule is a cron expression for automatic pruning.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`

	// MaxTickRecords caps the total tick records kept.
	// 0 means unlimited.
	MaxTickRecords int64 `yaml:"max_tick_records"`
}

// CheckpointConfig configures model snapshot persistence.
type CheckpointConfig struct {
	// Enabled controls whether checkpoints are written.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the checkpoint database file path.
	// Default: "data/checkpoints.db"
	Path string `yaml:"path"`

	// Interval is the number of ticks between checkpoints.
	// Default: 10
	Interval int `yaml:"interval"`

	// Keep is how many checkpoints to retain per run. Saving beyond the
	// limit deletes the oldest. 0 means keep all. Default: 5
	Keep int `yaml:"keep"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in logs.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// BufferSize is the async log buffer size. 0 writes through
	// directly.
	BufferSize int `yaml:"buffer_size"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// ListenAddress is the address the metrics server binds to.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// Namespace is the metric name prefix.
	// Default: "stratum"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "ganymede"
	Subsystem string `yaml:"subsystem"`

	// TickDurationBuckets defines histogram buckets for tick duration
	// (seconds).
	TickDurationBuckets []float64 `yaml:"tick_duration_buckets"`

	// RuleDurationBuckets defines histogram buckets for rule evaluation
	// duration (seconds).
	RuleDurationBuckets []float64 `yaml:"rule_duration_buckets"`
}
