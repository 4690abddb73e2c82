// Package checkpoint persists model snapshots so long simulations can be
// resumed after a restart.
//
// Snapshots are stored per run and tick in a SQLite database. The model's
// full state (agent population with attributes, globals, tick counter) is
// serialized as JSON; restoring a checkpoint rebuilds the model exactly,
// including agent iteration order.
package checkpoint
