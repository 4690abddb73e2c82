// Stratum Ganymede is a rule-driven agent-based simulation engine.
//
// It models a population of agents evolving under declarative rules,
// providing:
//   - Declarative rule sets loaded from YAML with hot reload
//   - Deterministic tick scheduling with conflict resolution
//   - Per-tick result aggregation persisted to SQLite
//   - Model state checkpointing and restore
//   - Prometheus metrics for tick and rule evaluation timing
//
// Usage:
//
//	# Run a simulation with default configuration
//	ganymede run
//
//	# Run with a custom configuration file
//	ganymede run --config /path/to/ganymede.yaml
//
//	# Validate configuration and rule files without running
//	ganymede validate --rules rules.yaml
//
//	# List built-in rule kinds
//	ganymede rules
//
//	# List recorded simulation runs
//	ganymede runs
//
//	# Show version information
//	ganymede version
package main

func main() {
	Execute()
}
