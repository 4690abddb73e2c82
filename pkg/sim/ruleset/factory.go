package ruleset

import (
	"fmt"
	"sort"
	"sync"

	"stratum-hq/ganymede/pkg/sim/rule"
)

// Builder constructs a live rule from a validated spec.
type Builder func(spec Spec) (rule.Rule, error)

// Factory maps rule kinds to builders. The rule library registers its
// built-in kinds; simulation authors register custom kinds the same way.
type Factory struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{
		builders: make(map[string]Builder),
	}
}

// RegisterKind registers a builder for a kind. Registering a kind twice is
// an error.
func (f *Factory) RegisterKind(kind string, b Builder) error {
	if kind == "" {
		return fmt.Errorf("%w: empty kind", ErrInvalidSpec)
	}
	if b == nil {
		return fmt.Errorf("%w: kind %s has nil builder", ErrInvalidSpec, kind)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.builders[kind]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, kind)
	}
	f.builders[kind] = b
	return nil
}

// Kinds returns the registered kinds, sorted.
func (f *Factory) Kinds() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	kinds := make([]string, 0, len(f.builders))
	for k := range f.builders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Build constructs one rule from a spec. When the spec declares a scope it
// must match the built rule's scope.
func (f *Factory) Build(spec Spec) (rule.Rule, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	b, ok := f.builders[spec.Kind]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s (rule %s)", ErrUnknownKind, spec.Kind, spec.Name)
	}

	r, err := b(spec)
	if err != nil {
		return nil, fmt.Errorf("build rule %s: %w", spec.Name, err)
	}
	if spec.Scope != "" && r.Scope() != spec.Scope {
		return nil, fmt.Errorf("%w: rule %s declares scope %q but kind %s is %q",
			ErrInvalidSpec, spec.Name, spec.Scope, spec.Kind, r.Scope())
	}
	return r, nil
}

// BuildAll constructs all enabled rules from a document, preserving file
// order. Any failed build rejects the whole set.
func (f *Factory) BuildAll(doc *Document) ([]rule.Rule, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	rules := make([]rule.Rule, 0, len(doc.Rules))
	for _, spec := range doc.Rules {
		if !spec.IsEnabled() {
			continue
		}
		r, err := f.Build(spec)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}
