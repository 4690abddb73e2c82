package config

import "time"

// Default values for configuration fields.
const (
	// Simulation defaults
	DefaultEngineers            = 10
	DefaultInitialTasks         = 5
	DefaultInitialPsychSafety   = 0.5
	DefaultPsychSafetyThreshold = 0.7
	DefaultBaseWorkUnits        = 0.1
	DefaultMaxSteps             = 100
	DefaultWorkers              = 1
	DefaultRuleTimeout          = 100 * time.Millisecond
	DefaultMaxEffectsPerTick    = 50000

	// Rules defaults
	DefaultRulesDebounceInterval = 100 * time.Millisecond

	// Results defaults
	DefaultResultsEnabled           = true
	DefaultResultsBackend           = "sqlite"
	DefaultResultsSQLitePath        = "data/results.db"
	DefaultSQLiteMaxOpenConns       = 10
	DefaultSQLiteMaxIdleConns       = 5
	DefaultSQLiteWALMode            = true
	DefaultSQLiteBusyTimeout        = 5 * time.Second
	DefaultRetentionDays            = 90
	DefaultRetentionSchedule        = "0 3 * * *"
	DefaultRetentionMaxTickRecords  = int64(0)

	// Checkpoint defaults
	DefaultCheckpointPath     = "data/checkpoints.db"
	DefaultCheckpointInterval = 10
	DefaultCheckpointKeep     = 5

	// Telemetry defaults
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "json"
	DefaultMetricsPath          = "/metrics"
	DefaultMetricsListenAddress = "127.0.0.1:9090"
	DefaultMetricsNamespace     = "stratum"
	DefaultMetricsSubsystem     = "ganymede"
)

// DefaultConfig returns a configuration with every field set to its
// default value.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Results.Enabled = DefaultResultsEnabled
	cfg.Results.SQLite.WALMode = DefaultSQLiteWALMode
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with defaults. Boolean fields
// keep their value; enable flags default at DefaultConfig, not here.
func ApplyDefaults(cfg *Config) {
	// Simulation defaults
	if cfg.Simulation.Engineers == 0 {
		cfg.Simulation.Engineers = DefaultEngineers
	}
	if cfg.Simulation.InitialTasks == 0 {
		cfg.Simulation.InitialTasks = DefaultInitialTasks
	}
	if cfg.Simulation.InitialPsychSafety == 0 {
		cfg.Simulation.InitialPsychSafety = DefaultInitialPsychSafety
	}
	if cfg.Simulation.PsychSafetyThreshold == 0 {
		cfg.Simulation.PsychSafetyThreshold = DefaultPsychSafetyThreshold
	}
	if cfg.Simulation.BaseWorkUnits == 0 {
		cfg.Simulation.BaseWorkUnits = DefaultBaseWorkUnits
	}
	if cfg.Simulation.MaxSteps == 0 {
		cfg.Simulation.MaxSteps = DefaultMaxSteps
	}
	if cfg.Simulation.Workers == 0 {
		cfg.Simulation.Workers = DefaultWorkers
	}
	if cfg.Simulation.RuleTimeout == 0 {
		cfg.Simulation.RuleTimeout = DefaultRuleTimeout
	}
	if cfg.Simulation.MaxEffectsPerTick == 0 {
		cfg.Simulation.MaxEffectsPerTick = DefaultMaxEffectsPerTick
	}

	// Rules defaults
	if cfg.Rules.DebounceInterval == 0 {
		cfg.Rules.DebounceInterval = DefaultRulesDebounceInterval
	}

	// Results defaults
	if cfg.Results.Backend == "" {
		cfg.Results.Backend = DefaultResultsBackend
	}
	if cfg.Results.SQLite.Path == "" {
		cfg.Results.SQLite.Path = DefaultResultsSQLitePath
	}
	if cfg.Results.SQLite.MaxOpenConns == 0 {
		cfg.Results.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if cfg.Results.SQLite.MaxIdleConns == 0 {
		cfg.Results.SQLite.MaxIdleConns = DefaultSQLiteMaxIdleConns
	}
	if cfg.Results.SQLite.BusyTimeout == 0 {
		cfg.Results.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Results.Retention.Days == 0 {
		cfg.Results.Retention.Days = DefaultRetentionDays
	}
	if cfg.Results.Retention.Schedule == "" {
		cfg.Results.Retention.Schedule = DefaultRetentionSchedule
	}

	// Checkpoint defaults
	if cfg.Checkpoint.Path == "" {
		cfg.Checkpoint.Path = DefaultCheckpointPath
	}
	if cfg.Checkpoint.Interval == 0 {
		cfg.Checkpoint.Interval = DefaultCheckpointInterval
	}
	if cfg.Checkpoint.Keep == 0 {
		cfg.Checkpoint.Keep = DefaultCheckpointKeep
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
}
