package rule

import (
	"fmt"
	"sync"
)

// Entry pairs a registered rule with its registry position. Position is the
// zero-based registration index and is the conflict tiebreak when two rules
// share a priority: lower positions win.
type Entry struct {
	Rule Rule

	// Position is the rule's index in registration order at snapshot
	// time.
	Position int
}

// EffectivePriority returns the priority used for conflict resolution:
// the rule's explicit priority when set, zero otherwise (registration order
// alone decides ties among unprioritized rules).
func (e Entry) EffectivePriority() int {
	return e.Rule.Priority()
}

// Registry is the ordered collection of rules attached to a model. Names
// are unique; registration order is preserved and is the default evaluation
// and conflict order, which makes runs with identical registration
// sequences deterministic.
//
// Registry is safe for concurrent use. Snapshot returns a stable copy so an
// in-flight tick is unaffected by concurrent Register/Remove calls.
type Registry struct {
	mu    sync.RWMutex
	order []string
	rules map[string]Rule
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rules: make(map[string]Rule),
	}
}

// Register appends a rule. Registering a name that already exists is an
// error; remove the old rule first to replace it.
func (r *Registry) Register(rl Rule) error {
	if rl == nil {
		return fmt.Errorf("%w: rule is nil", ErrInvalidRule)
	}
	if rl.Name() == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRule)
	}
	if !rl.Scope().Valid() {
		return fmt.Errorf("%w: rule %s has unknown scope %q", ErrInvalidRule, rl.Name(), rl.Scope())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rules[rl.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, rl.Name())
	}
	r.rules[rl.Name()] = rl
	r.order = append(r.order, rl.Name())
	return nil
}

// Remove deletes a rule by name. Removal takes effect for the next tick;
// already-applied state from prior ticks is untouched.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rules[name]; !ok {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, name)
	}
	delete(r.rules, name)
	for i, existing := range r.order {
		if existing == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a rule by name.
func (r *Registry) Get(name string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rl, ok := r.rules[name]
	return rl, ok
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Names returns the registered rule names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Snapshot returns the rules in registration order with their positions.
// The returned slice is independent of later registry mutation; the tick
// scheduler takes one snapshot per tick.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.order))
	for i, name := range r.order {
		entries = append(entries, Entry{Rule: r.rules[name], Position: i})
	}
	return entries
}

// Replace atomically swaps the whole rule set. Used by declarative rule-set
// reloads; the order of the provided slice becomes the new registration
// order.
func (r *Registry) Replace(rules []Rule) error {
	order := make([]string, 0, len(rules))
	byName := make(map[string]Rule, len(rules))
	for _, rl := range rules {
		if rl == nil {
			return fmt.Errorf("%w: rule is nil", ErrInvalidRule)
		}
		if rl.Name() == "" {
			return fmt.Errorf("%w: empty name", ErrInvalidRule)
		}
		if !rl.Scope().Valid() {
			return fmt.Errorf("%w: rule %s has unknown scope %q", ErrInvalidRule, rl.Name(), rl.Scope())
		}
		if _, ok := byName[rl.Name()]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateRule, rl.Name())
		}
		byName[rl.Name()] = rl
		order = append(order, rl.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = order
	r.rules = byName
	return nil
}
