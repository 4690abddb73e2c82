// Package engine implements the tick scheduler: the evaluation loop that
// drives a model forward one tick at a time.
//
// Each tick progresses through fixed phases:
//
//	resolve contexts -> evaluate -> collect -> resolve conflicts -> apply -> advance
//
// Contexts are snapshotted at tick start (agents added mid-tick wait for the
// next tick). Evaluation is read-only and may fan out over a bounded worker
// pool; results land in per-job slots, so thread interleaving cannot change
// the collected effect order. Collection stamps provenance onto every
// proposed effect, conflict resolution reduces collisions to one winner per
// attribute, and the apply phase is the single mutation point, executed
// sequentially against the model. A failed evaluation is isolated to its
// (rule, context) pair; a rejected apply rolls the whole tick back.
//
// The engine owns no termination policy. Callers invoke RunTick repeatedly
// and decide for themselves when to stop, typically on a step budget or when
// a tick reports no applied effects.
package engine
