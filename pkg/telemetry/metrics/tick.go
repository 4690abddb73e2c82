package metrics

import (
	"stratum-hq/ganymede/pkg/config"
	"stratum-hq/ganymede/pkg/sim/engine"

	"github.com/prometheus/client_golang/prometheus"
)

// TickMetrics tracks per-tick simulation metrics.
//
// Metrics:
//   - stratum_ganymede_ticks_total: Total ticks by outcome ("changed", "quiescent")
//   - stratum_ganymede_tick_duration_seconds: Tick duration histogram
//   - stratum_ganymede_effects_total: Effects by disposition ("applied", "superseded")
//   - stratum_ganymede_events_total: Events emitted
//   - stratum_ganymede_eval_errors_total: Failed rule evaluations
//   - stratum_ganymede_agents: Current agent population
type TickMetrics struct {
	ticksTotal      *prometheus.CounterVec
	tickDuration    prometheus.Histogram
	effectsTotal    *prometheus.CounterVec
	eventsTotal     prometheus.Counter
	evalErrorsTotal prometheus.Counter
	agents          prometheus.Gauge
}

// NewTickMetrics creates and registers tick metrics with the provided registry.
func NewTickMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *TickMetrics {
	tm := &TickMetrics{
		ticksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ticks_total",
				Help:      "Total number of simulation ticks executed",
			},
			[]string{"outcome"},
		),

		tickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "tick_duration_seconds",
				Help:      "Duration of simulation ticks in seconds",
				Buckets:   cfg.TickDurationBuckets,
			},
		),

		effectsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "effects_total",
				Help:      "Total number of effects by disposition",
			},
			[]string{"disposition"},
		),

		eventsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "events_total",
				Help:      "Total number of events emitted by rules",
			},
		),

		evalErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "eval_errors_total",
				Help:      "Total number of failed rule evaluations",
			},
		),

		agents: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "agents",
				Help:      "Current agent population",
			},
		),
	}

	registry.MustRegister(
		tm.ticksTotal,
		tm.tickDuration,
		tm.effectsTotal,
		tm.eventsTotal,
		tm.evalErrorsTotal,
		tm.agents,
	)

	return tm
}

// RecordTick records the outcome of one completed tick.
func (tm *TickMetrics) RecordTick(report *engine.TickReport) {
	outcome := "quiescent"
	if report.Changed {
		outcome = "changed"
	}
	tm.ticksTotal.WithLabelValues(outcome).Inc()
	tm.tickDuration.Observe(report.Duration.Seconds())

	if report.Applied > 0 {
		tm.effectsTotal.WithLabelValues("applied").Add(float64(report.Applied))
	}
	if report.Superseded > 0 {
		tm.effectsTotal.WithLabelValues("superseded").Add(float64(report.Superseded))
	}
	if len(report.Events) > 0 {
		tm.eventsTotal.Add(float64(len(report.Events)))
	}
	if len(report.Errors) > 0 {
		tm.evalErrorsTotal.Add(float64(len(report.Errors)))
	}
}

// SetAgentCount updates the agent population gauge.
func (tm *TickMetrics) SetAgentCount(count int) {
	tm.agents.Set(float64(count))
}
