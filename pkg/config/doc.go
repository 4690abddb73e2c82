// Package config defines the configuration model for Ganymede and the
// machinery to load it.
//
// Configuration is read from a YAML file, filled in with defaults, then
// overridden by GANYMEDE_* environment variables, and finally validated.
// Environment variables follow the naming convention GANYMEDE_SECTION_FIELD
// (e.g., GANYMEDE_SIMULATION_MAX_STEPS) and always take precedence over
// file-based configuration.
//
// Usage:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("ganymede.yaml")
//	if err != nil {
//		return err
//	}
package config
