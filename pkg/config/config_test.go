package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ganymede.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Simulation.Engineers != DefaultEngineers {
		t.Errorf("Engineers = %d, want %d", cfg.Simulation.Engineers, DefaultEngineers)
	}
	if cfg.Simulation.InitialPsychSafety != DefaultInitialPsychSafety {
		t.Errorf("InitialPsychSafety = %v, want %v", cfg.Simulation.InitialPsychSafety, DefaultInitialPsychSafety)
	}
	if cfg.Simulation.MaxSteps != DefaultMaxSteps {
		t.Errorf("MaxSteps = %d, want %d", cfg.Simulation.MaxSteps, DefaultMaxSteps)
	}
	if !cfg.Results.Enabled {
		t.Error("Results.Enabled should default to true")
	}
	if cfg.Results.Backend != DefaultResultsBackend {
		t.Errorf("Results.Backend = %q, want %q", cfg.Results.Backend, DefaultResultsBackend)
	}
	if !cfg.Results.SQLite.WALMode {
		t.Error("Results.SQLite.WALMode should default to true")
	}
	if cfg.Telemetry.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want %q", cfg.Telemetry.Logging.Level, DefaultLogLevel)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
simulation:
  engineers: 25
  initial_tasks: 8
  max_steps: 500
  seed: 42
rules:
  path: rules.yaml
  watch: true
results:
  backend: memory
telemetry:
  logging:
    level: debug
    format: text
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Simulation.Engineers != 25 {
		t.Errorf("Engineers = %d, want 25", cfg.Simulation.Engineers)
	}
	if cfg.Simulation.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Simulation.Seed)
	}
	if cfg.Results.Backend != "memory" {
		t.Errorf("Backend = %q, want memory", cfg.Results.Backend)
	}
	if !cfg.Rules.Watch {
		t.Error("Rules.Watch should be true")
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Telemetry.Logging.Level)
	}

	// Unset fields keep defaults.
	if cfg.Simulation.BaseWorkUnits != DefaultBaseWorkUnits {
		t.Errorf("BaseWorkUnits = %v, want default %v", cfg.Simulation.BaseWorkUnits, DefaultBaseWorkUnits)
	}
	if cfg.Simulation.RuleTimeout != DefaultRuleTimeout {
		t.Errorf("RuleTimeout = %v, want default %v", cfg.Simulation.RuleTimeout, DefaultRuleTimeout)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "simulation: [not a mapping")
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	path := writeConfigFile(t, `
simulation:
  initial_psych_safety: 1.5
results:
  backend: postgres
`)
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want ValidationError", err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("got %d field errors, want 2: %v", len(verr.Errors), verr)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
simulation:
  engineers: 5
  max_steps: 50
`)

	t.Setenv("GANYMEDE_SIMULATION_ENGINEERS", "30")
	t.Setenv("GANYMEDE_SIMULATION_RULE_TIMEOUT", "250ms")
	t.Setenv("GANYMEDE_RESULTS_BACKEND", "memory")
	t.Setenv("GANYMEDE_TELEMETRY_METRICS_ENABLED", "true")
	t.Setenv("GANYMEDE_TELEMETRY_METRICS_LISTEN_ADDRESS", "127.0.0.1:19090")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Simulation.Engineers != 30 {
		t.Errorf("Engineers = %d, want env override 30", cfg.Simulation.Engineers)
	}
	if cfg.Simulation.MaxSteps != 50 {
		t.Errorf("MaxSteps = %d, want file value 50", cfg.Simulation.MaxSteps)
	}
	if cfg.Simulation.RuleTimeout != 250*time.Millisecond {
		t.Errorf("RuleTimeout = %v, want 250ms", cfg.Simulation.RuleTimeout)
	}
	if cfg.Results.Backend != "memory" {
		t.Errorf("Backend = %q, want memory", cfg.Results.Backend)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("Metrics.Enabled should be overridden to true")
	}
	if cfg.Telemetry.Metrics.ListenAddress != "127.0.0.1:19090" {
		t.Errorf("ListenAddress = %q", cfg.Telemetry.Metrics.ListenAddress)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverride(t *testing.T) {
	path := writeConfigFile(t, "simulation:\n  engineers: 5\n")

	t.Setenv("GANYMEDE_SIMULATION_INITIAL_PSYCH_SAFETY", "2.0")

	_, err := LoadConfigWithEnvOverrides(path)
	if err == nil {
		t.Fatal("expected validation error after env override")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "zero max steps",
			mutate:  func(cfg *Config) { cfg.Simulation.MaxSteps = -1 },
			wantErr: "simulation.max_steps",
		},
		{
			name:    "psych safety out of range",
			mutate:  func(cfg *Config) { cfg.Simulation.InitialPsychSafety = -0.1 },
			wantErr: "simulation.initial_psych_safety",
		},
		{
			name:    "zero workers",
			mutate:  func(cfg *Config) { cfg.Simulation.Workers = -2 },
			wantErr: "simulation.workers",
		},
		{
			name:    "watch without path",
			mutate:  func(cfg *Config) { cfg.Rules.Watch = true },
			wantErr: "rules.watch",
		},
		{
			name:    "unknown results backend",
			mutate:  func(cfg *Config) { cfg.Results.Backend = "cassandra" },
			wantErr: "results.backend",
		},
		{
			name: "sqlite backend without path",
			mutate: func(cfg *Config) {
				cfg.Results.Backend = "sqlite"
				cfg.Results.SQLite.Path = ""
			},
			wantErr: "results.sqlite.path",
		},
		{
			name:    "bad retention schedule",
			mutate:  func(cfg *Config) { cfg.Results.Retention.Schedule = "not a cron" },
			wantErr: "results.retention.schedule",
		},
		{
			name: "checkpoint enabled without path",
			mutate: func(cfg *Config) {
				cfg.Checkpoint.Enabled = true
				cfg.Checkpoint.Path = ""
			},
			wantErr: "checkpoint.path",
		},
		{
			name:    "unknown log level",
			mutate:  func(cfg *Config) { cfg.Telemetry.Logging.Level = "verbose" },
			wantErr: "telemetry.logging.level",
		},
		{
			name: "metrics path without slash",
			mutate: func(cfg *Config) {
				cfg.Telemetry.Metrics.Enabled = true
				cfg.Telemetry.Metrics.Path = "metrics"
			},
			wantErr: "telemetry.metrics.path",
		},
		{
			name: "disabled results skip backend checks",
			mutate: func(cfg *Config) {
				cfg.Results.Enabled = false
				cfg.Results.Backend = "cassandra"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want mention of %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidationError_Format(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{"a.b", "bad"}}}
	if got := single.Error(); !strings.Contains(got, "a.b: bad") {
		t.Errorf("single error format = %q", got)
	}

	multi := ValidationError{Errors: []FieldError{{"a", "x"}, {"b", "y"}}}
	if got := multi.Error(); !strings.Contains(got, "2 errors") {
		t.Errorf("multi error format = %q", got)
	}
}

func TestApplyDefaults_PreservesSetValues(t *testing.T) {
	cfg := &Config{}
	cfg.Simulation.Engineers = 3
	cfg.Telemetry.Logging.Level = "warn"

	ApplyDefaults(cfg)

	if cfg.Simulation.Engineers != 3 {
		t.Errorf("Engineers = %d, want 3", cfg.Simulation.Engineers)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Telemetry.Logging.Level)
	}
	if cfg.Simulation.InitialTasks != DefaultInitialTasks {
		t.Errorf("InitialTasks = %d, want default %d", cfg.Simulation.InitialTasks, DefaultInitialTasks)
	}
}
