// Package effect defines the immutable state-change proposals produced by
// rule evaluation and the conflict resolution policy that reduces them to
// exactly one winner per contested attribute.
//
// An Effect is created by a rule as a bare proposal (kind, target,
// attribute, value). The tick scheduler stamps provenance onto each proposal
// at collection time: the source rule's name, its effective priority, its
// registry position, and a monotonic emission sequence number. Provenance is
// what makes conflict resolution deterministic regardless of how the
// evaluation phase was parallelized.
//
// The default resolution policy is a strict total order over colliding
// effects: higher priority wins, then earlier registry position, then later
// emission within the same rule's outcome.
package effect
