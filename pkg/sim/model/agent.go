package model

import "fmt"

// Agent is one member of the simulated population. Attributes are free-form
// named values; the rule library documents the attribute names it reads and
// writes.
type Agent struct {
	// ID uniquely identifies the agent within its model.
	ID string

	// Attrs holds the agent's named attributes.
	Attrs map[string]any
}

// NewAgent creates an agent with the given ID and a copy of the provided
// attributes.
func NewAgent(id string, attrs map[string]any) *Agent {
	copied := make(map[string]any, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}
	return &Agent{ID: id, Attrs: copied}
}

// clone returns a deep copy of the agent (attribute values are copied
// shallowly; they are expected to be scalars).
func (a *Agent) clone() *Agent {
	return NewAgent(a.ID, a.Attrs)
}

// AgentView is the read-only per-tick view of one agent handed to rules
// during evaluation. It is transient and must not be retained across ticks.
type AgentView struct {
	id    string
	attrs map[string]any
}

// ID returns the agent's identifier.
func (v *AgentView) ID() string { return v.id }

// Attr returns the named attribute, or (nil, false) when absent.
func (v *AgentView) Attr(name string) (any, bool) {
	val, ok := v.attrs[name]
	return val, ok
}

// Float returns the named attribute as a float64. Integer values are
// widened. A missing or non-numeric attribute is an error, which the engine
// reports as a rule evaluation failure for this agent.
func (v *AgentView) Float(name string) (float64, error) {
	val, ok := v.attrs[name]
	if !ok {
		return 0, &MissingAttributeError{TargetID: v.id, Attribute: name}
	}
	f, ok := asFloat(val)
	if !ok {
		return 0, fmt.Errorf("agent %s attribute %q: value %v (%T) is not numeric", v.id, name, val, val)
	}
	return f, nil
}

// FloatOr returns the named attribute as a float64, or fallback when the
// attribute is absent or non-numeric.
func (v *AgentView) FloatOr(name string, fallback float64) float64 {
	f, err := v.Float(name)
	if err != nil {
		return fallback
	}
	return f
}

// asFloat widens common numeric types to float64.
func asFloat(val any) (float64, bool) {
	switch n := val.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
