package metrics

import (
	"time"

	"stratum-hq/ganymede/pkg/config"
	"stratum-hq/ganymede/pkg/sim/engine"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the orchestrator for all Prometheus metrics in Ganymede.
// It manages metric registration and provides a unified interface for
// recording metrics across the engine and the simulation driver.
//
// Collector implements engine.Recorder, so the engine feeds it directly.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Tick metrics
	tickMetrics *TickMetrics

	// Rule metrics
	ruleMetrics *RuleMetrics
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "stratum",
//		Subsystem: "ganymede",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "stratum"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "ganymede"
	}
	if len(cfg.TickDurationBuckets) == 0 {
		// Ticks are cheap, sub-millisecond to a few seconds.
		cfg.TickDurationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
	}
	if len(cfg.RuleDurationBuckets) == 0 {
		// Individual rule evaluations are microseconds to milliseconds.
		cfg.RuleDurationBuckets = []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.1}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.tickMetrics = NewTickMetrics(cfg, registry)
	c.ruleMetrics = NewRuleMetrics(cfg, registry)

	return c
}

// RecordTick implements engine.Recorder. It records the outcome of one
// completed tick.
func (c *Collector) RecordTick(report *engine.TickReport) {
	if !c.config.Enabled {
		return
	}

	c.tickMetrics.RecordTick(report)
}

// RecordEvaluation implements engine.Recorder. It records a single rule
// evaluation.
func (c *Collector) RecordEvaluation(ruleName string, duration time.Duration, failed bool) {
	if !c.config.Enabled {
		return
	}

	c.ruleMetrics.RecordEvaluation(ruleName, duration, failed)
}

// SetAgentCount updates the agent population gauge.
func (c *Collector) SetAgentCount(count int) {
	if !c.config.Enabled {
		return
	}

	c.tickMetrics.SetAgentCount(count)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
