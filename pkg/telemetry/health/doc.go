/*
Package health provides liveness and readiness probes for the telemetry
HTTP endpoint of a running simulation.

The Checker aggregates named component checks (results store, checkpoint
store) into a readiness status, and the StatusHandler exposes live
simulation progress:

	checker := health.New(0)
	checker.RegisterCheck("results", func(ctx context.Context) error {
		_, err := store.ListRuns(ctx, 1)
		return err
	})

	mux.Handle("/healthz", checker.LivenessHandler())
	mux.Handle("/readyz", checker.ReadinessHandler())
	mux.Handle("/statusz", health.StatusHandler(func() health.SimStatus {
		return health.SimStatus{Tick: eng.CurrentTick(), Agents: m.AgentCount()}
	}))
*/
package health
