// Package model holds the simulated population and global state that rules
// are evaluated against.
//
// A Model owns a set of agents (keyed by ID, iterated in insertion order)
// and a map of global attributes. During a tick's evaluation phase the model
// is only ever read, through the Reader interface; all mutation goes through
// Apply, which the tick scheduler calls exactly once per tick with the
// finalized effect set. Apply validates every effect before mutating
// anything, so a rejected effect leaves the model in its pre-tick state.
package model
