// Package results collects and persists per-tick simulation outcomes.
//
// The Collector sits between the engine and a Store: after each tick it
// aggregates model state (task throughput, knowledge, perceived safety)
// together with the engine's tick report (effects applied, superseded,
// evaluation errors) into a TickRecord and persists it under a run ID.
//
// Storage backends live in the storage subpackage. Retention enforcement
// lives in the retention subpackage.
package results
