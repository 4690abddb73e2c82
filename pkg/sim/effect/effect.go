package effect

import "fmt"

// Kind identifies what part of the model an effect mutates.
type Kind string

const (
	// KindSetAgentAttr sets a single attribute on a single agent.
	KindSetAgentAttr Kind = "set_agent_attr"

	// KindSetGlobal sets a single global attribute on the model.
	KindSetGlobal Kind = "set_global"

	// KindEvent emits a named event. Events carry no state mutation and
	// never collide with other effects.
	KindEvent Kind = "event"
)

// Effect is an immutable description of one proposed state change. Effects
// exist only within the scope of a single tick.
//
// The Rule, Priority, Position, and Seq fields are provenance stamped by the
// tick scheduler during collection; rule implementations leave them zero.
type Effect struct {
	// Kind is the mutation type.
	Kind Kind

	// TargetID is the agent ID for KindSetAgentAttr. It is empty for
	// global and event effects.
	TargetID string

	// Attribute is the attribute name for set effects, or the event name
	// for KindEvent.
	Attribute string

	// Value is the new attribute value, or the event payload.
	Value any

	// Rule is the name of the rule that proposed this effect.
	Rule string

	// Priority is the effective priority of the source rule.
	Priority int

	// Position is the source rule's position in the registry at tick
	// start. Lower positions were registered earlier.
	Position int

	// Seq is the global emission index within the tick's collection
	// phase. Seq is unique across all effects collected in one tick and
	// increases in outcome order within each rule.
	Seq int
}

// SetAgentAttr proposes setting an attribute on one agent.
func SetAgentAttr(agentID, attribute string, value any) Effect {
	return Effect{Kind: KindSetAgentAttr, TargetID: agentID, Attribute: attribute, Value: value}
}

// SetGlobal proposes setting a global attribute on the model.
func SetGlobal(attribute string, value any) Effect {
	return Effect{Kind: KindSetGlobal, Attribute: attribute, Value: value}
}

// Emit proposes a named event with an optional payload.
func Emit(name string, payload any) Effect {
	return Effect{Kind: KindEvent, Attribute: name, Value: payload}
}

// IsMutation reports whether the effect mutates model state when applied.
// Event effects are observational only.
func (e Effect) IsMutation() bool {
	return e.Kind == KindSetAgentAttr || e.Kind == KindSetGlobal
}

// Key returns the collision key for the effect. Two mutation effects with
// equal keys target the same attribute and must be conflict-resolved down to
// one winner. Event effects have no collision key.
func (e Effect) Key() string {
	switch e.Kind {
	case KindSetAgentAttr:
		return fmt.Sprintf("agent/%s/%s", e.TargetID, e.Attribute)
	case KindSetGlobal:
		return "global/" + e.Attribute
	default:
		return ""
	}
}

// String returns a compact description for logging.
func (e Effect) String() string {
	switch e.Kind {
	case KindSetAgentAttr:
		return fmt.Sprintf("set %s.%s=%v (rule=%s prio=%d)", e.TargetID, e.Attribute, e.Value, e.Rule, e.Priority)
	case KindSetGlobal:
		return fmt.Sprintf("set global %s=%v (rule=%s prio=%d)", e.Attribute, e.Value, e.Rule, e.Priority)
	default:
		return fmt.Sprintf("event %s (rule=%s)", e.Attribute, e.Rule)
	}
}
