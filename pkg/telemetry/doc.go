// Package telemetry provides observability for Stratum Ganymede.
//
// # Components
//
//   - logging: Structured logging with optional async buffering
//   - metrics: Prometheus metrics for tick and rule evaluation timing
//   - health: Liveness, readiness, and simulation status endpoints
//
// # Usage
//
//	logger, _ := logging.New(logging.Config{Level: "info", Format: "json"})
//	logger.Info("tick completed", "tick", 42, "applied", 17)
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
//	engine.SetRecorder(collector)
//	mux.Handle("/metrics", collector.Handler())
//
// The logging and metrics subpackages are wired into the engine through
// its logger and Recorder hooks; health handlers are mounted next to the
// metrics endpoint by the run command.
package telemetry
