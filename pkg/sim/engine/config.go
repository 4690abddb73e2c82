package engine

import (
	"fmt"
	"time"
)

// Config contains tick scheduler configuration.
type Config struct {
	// Workers is the number of goroutines evaluating (rule, context)
	// pairs in parallel during the evaluate phase. 1 means fully
	// sequential evaluation. Parallel evaluation does not affect
	// determinism: results are collected in job order regardless of
	// completion order.
	// Default: 1.
	Workers int `yaml:"workers"`

	// RuleTimeout is the maximum time allowed for a single rule
	// evaluation. An evaluation that overruns is reported as a failed
	// evaluation for its context.
	// Default: 100ms.
	RuleTimeout time.Duration `yaml:"rule_timeout"`

	// MaxEffectsPerTick bounds the number of effects collected in one
	// tick. Exceeding the bound aborts the tick before apply; it guards
	// against runaway rules, not normal operation.
	// Default: 50000.
	MaxEffectsPerTick int `yaml:"max_effects_per_tick"`

	// EnableTrace records per-phase timing on each TickReport.
	// Default: false.
	EnableTrace bool `yaml:"enable_trace"`
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() *Config {
	return &Config{
		Workers:           1,
		RuleTimeout:       100 * time.Millisecond,
		MaxEffectsPerTick: 50000,
		EnableTrace:       false,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	}
	if c.RuleTimeout <= 0 {
		return fmt.Errorf("%w: rule timeout must be positive", ErrInvalidConfig)
	}
	if c.MaxEffectsPerTick <= 0 {
		return fmt.Errorf("%w: max effects per tick must be positive", ErrInvalidConfig)
	}
	return nil
}
