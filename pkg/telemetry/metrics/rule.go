package metrics

import (
	"time"

	"stratum-hq/ganymede/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RuleMetrics tracks per-rule evaluation metrics.
//
// Metrics:
//   - stratum_ganymede_rule_evaluations_total: Evaluations by rule and status
//   - stratum_ganymede_rule_evaluation_duration_seconds: Evaluation duration histogram by rule
//
// Rule names come from configuration, so cardinality stays bounded by the
// ruleset size.
type RuleMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
}

// NewRuleMetrics creates and registers rule metrics with the provided registry.
func NewRuleMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RuleMetrics {
	rm := &RuleMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_evaluations_total",
				Help:      "Total number of rule evaluations",
			},
			[]string{"rule", "status"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_evaluation_duration_seconds",
				Help:      "Duration of rule evaluations in seconds",
				Buckets:   cfg.RuleDurationBuckets,
			},
			[]string{"rule"},
		),
	}

	registry.MustRegister(
		rm.evaluationsTotal,
		rm.evaluationDuration,
	)

	return rm
}

// RecordEvaluation records a single rule evaluation.
func (rm *RuleMetrics) RecordEvaluation(ruleName string, duration time.Duration, failed bool) {
	status := "success"
	if failed {
		status = "error"
	}
	rm.evaluationsTotal.WithLabelValues(ruleName, status).Inc()
	rm.evaluationDuration.WithLabelValues(ruleName).Observe(duration.Seconds())
}
