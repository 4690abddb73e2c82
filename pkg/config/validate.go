package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "simulation.engineers").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides access
// to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a
// ValidationError if any validation rules fail. All validation errors
// are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateSimulation(&cfg.Simulation)...)
	errs = append(errs, validateRules(&cfg.Rules)...)
	errs = append(errs, validateResults(&cfg.Results)...)
	errs = append(errs, validateCheckpoint(&cfg.Checkpoint)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateSimulation(cfg *SimulationConfig) []FieldError {
	var errs []FieldError

	if cfg.Engineers < 0 {
		errs = append(errs, FieldError{"simulation.engineers", "must not be negative"})
	}
	if cfg.InitialTasks < 0 {
		errs = append(errs, FieldError{"simulation.initial_tasks", "must not be negative"})
	}
	if cfg.InitialPsychSafety < 0 || cfg.InitialPsychSafety > 1 {
		errs = append(errs, FieldError{"simulation.initial_psych_safety", "must be in [0, 1]"})
	}
	if cfg.PsychSafetyThreshold <= 0 || cfg.PsychSafetyThreshold > 1 {
		errs = append(errs, FieldError{"simulation.psych_safety_threshold", "must be in (0, 1]"})
	}
	if cfg.BaseWorkUnits <= 0 {
		errs = append(errs, FieldError{"simulation.base_work_units", "must be positive"})
	}
	if cfg.MaxSteps <= 0 {
		errs = append(errs, FieldError{"simulation.max_steps", "must be positive"})
	}
	if cfg.Workers <= 0 {
		errs = append(errs, FieldError{"simulation.workers", "must be positive"})
	}
	if cfg.RuleTimeout <= 0 {
		errs = append(errs, FieldError{"simulation.rule_timeout", "must be positive"})
	}
	if cfg.MaxEffectsPerTick <= 0 {
		errs = append(errs, FieldError{"simulation.max_effects_per_tick", "must be positive"})
	}

	return errs
}

func validateRules(cfg *RulesConfig) []FieldError {
	var errs []FieldError

	if cfg.Watch && cfg.Path == "" {
		errs = append(errs, FieldError{"rules.watch", "requires rules.path to be set"})
	}
	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{"rules.debounce_interval", "must not be negative"})
	}

	return errs
}

func validateResults(cfg *ResultsConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	switch cfg.Backend {
	case "sqlite", "memory":
	default:
		errs = append(errs, FieldError{"results.backend", fmt.Sprintf("unknown backend %q (expected \"sqlite\" or \"memory\")", cfg.Backend)})
	}
	if cfg.Backend == "sqlite" && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{"results.sqlite.path", "must not be empty"})
	}
	if cfg.SQLite.MaxOpenConns < 0 {
		errs = append(errs, FieldError{"results.sqlite.max_open_conns", "must not be negative"})
	}
	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{"results.retention.days", "must not be negative"})
	}
	if cfg.Retention.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.Schedule); err != nil {
			errs = append(errs, FieldError{"results.retention.schedule", fmt.Sprintf("invalid cron expression: %v", err)})
		}
	}
	if cfg.Retention.MaxTickRecords < 0 {
		errs = append(errs, FieldError{"results.retention.max_tick_records", "must not be negative"})
	}

	return errs
}

func validateCheckpoint(cfg *CheckpointConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	if cfg.Path == "" {
		errs = append(errs, FieldError{"checkpoint.path", "must not be empty"})
	}
	if cfg.Interval <= 0 {
		errs = append(errs, FieldError{"checkpoint.interval", "must be positive"})
	}
	if cfg.Keep < 0 {
		errs = append(errs, FieldError{"checkpoint.keep", "must not be negative"})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level", fmt.Sprintf("unknown level %q", cfg.Logging.Level)})
	}
	switch cfg.Logging.Format {
	case "json", "text", "":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format", fmt.Sprintf("unknown format %q", cfg.Logging.Format)})
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Path == "" || !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{"telemetry.metrics.path", "must start with \"/\""})
		}
		if cfg.Metrics.ListenAddress == "" {
			errs = append(errs, FieldError{"telemetry.metrics.listen_address", "must not be empty"})
		}
	}

	return errs
}
