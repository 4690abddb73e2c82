// Package storage provides results storage backends.
//
// Two implementations are available:
//
//   - MemoryStore: in-memory storage for tests and short-lived runs.
//   - SQLiteStore: durable storage backed by SQLite with WAL mode,
//     suitable for long runs and post-hoc analysis.
//
// Both implement the results.Store interface and are safe for concurrent
// use.
package storage
