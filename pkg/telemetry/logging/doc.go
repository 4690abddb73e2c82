// Package logging provides structured logging for the simulation engine.
//
// The Logger wraps log/slog with level and format configuration, async
// buffered output, and context-aware field extraction. Simulation code
// attaches run and tick identifiers to a context once; every log call
// made with that context then carries them automatically.
//
// Example:
//
//	logger, _ := logging.New(logging.Config{Level: "info", Format: "json"})
//	defer logger.Shutdown()
//
//	ctx := logging.WithRunID(context.Background(), runID)
//	logger.InfoContext(ctx, "tick completed", "applied", 12)
package logging
