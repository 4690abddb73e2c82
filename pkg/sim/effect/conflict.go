package effect

import "sort"

// Resolver reduces the full set of effects proposed in one tick to the set
// that will be applied. Implementations must be deterministic: for equal
// input (including provenance), equal output.
type Resolver interface {
	// Resolve partitions effects into the applied set and the superseded
	// set. Every mutation effect appears in exactly one of the two; event
	// effects are always applied.
	Resolve(effects []Effect) (applied, superseded []Effect, err error)
}

// PriorityResolver is the default conflict resolution policy.
//
// For each group of mutation effects sharing a collision key, the winner is
// chosen by a strict total order:
//
//  1. higher Priority wins
//  2. on tie, lower Position (earlier registration) wins
//  3. on tie, higher Seq wins (last write within a single rule's outcome)
//
// Seq is unique per tick, so the order is total and the policy can never
// produce an ambiguous result. The applied set is returned sorted by
// (Position, Seq) so the apply phase is deterministic as well.
type PriorityResolver struct{}

// NewPriorityResolver returns the default resolver.
func NewPriorityResolver() *PriorityResolver {
	return &PriorityResolver{}
}

// Resolve implements Resolver.
func (r *PriorityResolver) Resolve(effects []Effect) (applied, superseded []Effect, err error) {
	winners := make(map[string]Effect)

	for _, ef := range effects {
		if !ef.IsMutation() {
			applied = append(applied, ef)
			continue
		}

		key := ef.Key()
		cur, ok := winners[key]
		if !ok {
			winners[key] = ef
			continue
		}

		if beats(ef, cur) {
			superseded = append(superseded, cur)
			winners[key] = ef
		} else {
			superseded = append(superseded, ef)
		}
	}

	for _, ef := range winners {
		applied = append(applied, ef)
	}

	sortDeterministic(applied)
	sortDeterministic(superseded)

	return applied, superseded, nil
}

// beats reports whether a wins over b under the resolution policy.
func beats(a, b Effect) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if a.Position != b.Position {
		return a.Position < b.Position
	}
	return a.Seq > b.Seq
}

// sortDeterministic orders effects by registry position, then emission
// sequence. Seq is unique per tick, so the order is stable.
func sortDeterministic(effects []Effect) {
	sort.Slice(effects, func(i, j int) bool {
		if effects[i].Position != effects[j].Position {
			return effects[i].Position < effects[j].Position
		}
		return effects[i].Seq < effects[j].Seq
	})
}

// VerifyResolved checks that a resolved applied set contains at most one
// mutation effect per collision key. The default resolver guarantees this by
// construction; the check exists to catch broken custom Resolver
// implementations before the apply phase runs.
func VerifyResolved(applied []Effect) error {
	seen := make(map[string]Effect, len(applied))
	for _, ef := range applied {
		if !ef.IsMutation() {
			continue
		}
		key := ef.Key()
		if prev, ok := seen[key]; ok {
			return &ConflictError{
				Key:   key,
				Rules: []string{prev.Rule, ef.Rule},
			}
		}
		seen[key] = ef
	}
	return nil
}
