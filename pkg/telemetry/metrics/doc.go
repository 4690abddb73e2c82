// Package metrics provides Prometheus metrics for the simulation engine.
//
// The Collector owns a Prometheus registry and two metric groups:
//
//   - TickMetrics: per-tick counters and histograms (ticks run, effects
//     applied and superseded, events emitted, evaluation errors, tick
//     duration, agent population).
//   - RuleMetrics: per-rule evaluation counters and duration histograms.
//
// The Collector implements the engine's Recorder interface, so wiring it
// up is a single SetRecorder call:
//
//	collector := metrics.NewCollector(cfg, nil)
//	eng.SetRecorder(collector)
//	http.Handle("/metrics", collector.Handler())
package metrics
