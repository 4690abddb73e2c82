package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

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
// applies environment variable overrides. Environment variables follow
// the naming convention GANYMEDE_SECTION_FIELD (e.g.,
// GANYMEDE_SIMULATION_MAX_STEPS) and always take precedence over
// file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file (defaults applied)
//  2. Apply environment variable overrides
//  3. Validate final configuration
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

// LoadConfigOrDefault behaves like LoadConfigWithEnvOverrides, except a
// missing configuration file is not an error: the default configuration
// is used instead, with environment overrides still applied.
func LoadConfigOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		applyEnvOverrides(cfg)
		if err := Validate(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
		}
		return cfg, nil
	}
	return LoadConfigWithEnvOverrides(path)
}

// applyEnvOverrides applies environment variable overrides to the
// configuration.
func applyEnvOverrides(cfg *Config) {
	// Simulation overrides
	if val := os.Getenv("GANYMEDE_SIMULATION_ENGINEERS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Simulation.Engineers = i
		}
	}
	if val := os.Getenv("GANYMEDE_SIMULATION_INITIAL_TASKS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Simulation.InitialTasks = i
		}
	}
	if val := os.Getenv("GANYMEDE_SIMULATION_INITIAL_PSYCH_SAFETY"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Simulation.InitialPsychSafety = f
		}
	}
	if val := os.Getenv("GANYMEDE_SIMULATION_PSYCH_SAFETY_THRESHOLD"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Simulation.PsychSafetyThreshold = f
		}
	}
	if val := os.Getenv("GANYMEDE_SIMULATION_BASE_WORK_UNITS"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Simulation.BaseWorkUnits = f
		}
	}
	if val := os.Getenv("GANYMEDE_SIMULATION_MAX_STEPS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Simulation.MaxSteps = i
		}
	}
	if val := os.Getenv("GANYMEDE_SIMULATION_SEED"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Simulation.Seed = i
		}
	}
	if val := os.Getenv("GANYMEDE_SIMULATION_WORKERS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Simulation.Workers = i
		}
	}
	if val := os.Getenv("GANYMEDE_SIMULATION_RULE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Simulation.RuleTimeout = d
		}
	}

	// Rules overrides
	if val := os.Getenv("GANYMEDE_RULES_PATH"); val != "" {
		cfg.Rules.Path = val
	}
	if val := os.Getenv("GANYMEDE_RULES_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Rules.Watch = b
		}
	}

	// Results overrides
	if val := os.Getenv("GANYMEDE_RESULTS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Results.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_RESULTS_BACKEND"); val != "" {
		cfg.Results.Backend = val
	}
	if val := os.Getenv("GANYMEDE_RESULTS_SQLITE_PATH"); val != "" {
		cfg.Results.SQLite.Path = val
	}
	if val := os.Getenv("GANYMEDE_RESULTS_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Results.Retention.Days = i
		}
	}
	if val := os.Getenv("GANYMEDE_RESULTS_RETENTION_SCHEDULE"); val != "" {
		cfg.Results.Retention.Schedule = val
	}

	// Checkpoint overrides
	if val := os.Getenv("GANYMEDE_CHECKPOINT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Checkpoint.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_CHECKPOINT_PATH"); val != "" {
		cfg.Checkpoint.Path = val
	}
	if val := os.Getenv("GANYMEDE_CHECKPOINT_INTERVAL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Checkpoint.Interval = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("GANYMEDE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("GANYMEDE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("GANYMEDE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("GANYMEDE_TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
}
