package rule

import (
	"context"
	"fmt"

	"stratum-hq/ganymede/pkg/sim/effect"
	"stratum-hq/ganymede/pkg/sim/model"
)

// Scope declares which contexts a rule is evaluated against.
type Scope string

const (
	// ScopeModel evaluates the rule once per tick against the model.
	ScopeModel Scope = "model"

	// ScopeAgent evaluates the rule once per tick per agent alive at
	// tick start.
	ScopeAgent Scope = "agent"
)

// Valid reports whether the scope is a known value.
func (s Scope) Valid() bool {
	return s == ScopeModel || s == ScopeAgent
}

// Context is the tagged evaluation context handed to a rule. For model-scope
// evaluations Agent is nil; for agent-scope evaluations it is the read view
// of exactly one agent. Contexts are transient: they are built fresh each
// tick and must not be retained.
type Context struct {
	// Tick is the tick number this evaluation belongs to.
	Tick uint64

	// Model is the read-only view of the owning model.
	Model model.Reader

	// Agent is the agent under evaluation, nil for model scope.
	Agent *model.AgentView
}

// IsAgent reports whether this is an agent-scope context.
func (c *Context) IsAgent() bool { return c.Agent != nil }

// TargetID returns the agent ID for agent-scope contexts and the empty
// string for model scope. Useful for error attribution.
func (c *Context) TargetID() string {
	if c.Agent == nil {
		return ""
	}
	return c.Agent.ID()
}

// Outcome is the raw result of one rule evaluation: an ordered list of
// proposed effects. Order matters: when one rule proposes two writes to
// the same attribute, the later proposal wins.
type Outcome struct {
	effects []effect.Effect
}

// Propose appends a proposed effect to the outcome.
func (o *Outcome) Propose(ef effect.Effect) {
	o.effects = append(o.effects, ef)
}

// SetAgentAttr proposes setting an attribute on one agent.
func (o *Outcome) SetAgentAttr(agentID, attribute string, value any) {
	o.Propose(effect.SetAgentAttr(agentID, attribute, value))
}

// SetGlobal proposes setting a global model attribute.
func (o *Outcome) SetGlobal(attribute string, value any) {
	o.Propose(effect.SetGlobal(attribute, value))
}

// Emit proposes a named event with an optional payload.
func (o *Outcome) Emit(name string, payload any) {
	o.Propose(effect.Emit(name, payload))
}

// Effects returns the proposed effects in emission order.
func (o *Outcome) Effects() []effect.Effect {
	return o.effects
}

// Empty reports whether the outcome proposes nothing.
func (o *Outcome) Empty() bool {
	return len(o.effects) == 0
}

// Rule is the contract every simulation rule satisfies.
//
// Evaluate must be side-effect free: it may read the context freely but must
// not mutate model state, retain the context, or depend on evaluation order.
// Returning an error marks this single (rule, context) evaluation as failed;
// the engine logs it and continues with the remaining evaluations.
type Rule interface {
	// Name uniquely identifies the rule within a registry. It is used as
	// the registry key and for effect provenance.
	Name() string

	// Scope declares which contexts the rule is evaluated against.
	Scope() Scope

	// Priority is the explicit conflict priority. Zero means "use
	// registration order"; higher values win conflicts.
	Priority() int

	// Evaluate runs the rule against one context and returns the
	// proposed outcome.
	Evaluate(ctx context.Context, ec *Context) (Outcome, error)
}

// Func adapts a plain function into a Rule. Handy for tests and one-off
// rules.
type Func struct {
	RuleName     string
	RuleScope    Scope
	RulePriority int
	Fn           func(ctx context.Context, ec *Context) (Outcome, error)
}

// Name implements Rule.
func (f *Func) Name() string { return f.RuleName }

// Scope implements Rule.
func (f *Func) Scope() Scope { return f.RuleScope }

// Priority implements Rule.
func (f *Func) Priority() int { return f.RulePriority }

// Evaluate implements Rule.
func (f *Func) Evaluate(ctx context.Context, ec *Context) (Outcome, error) {
	return f.Fn(ctx, ec)
}

// Describe returns the advisory log description of a rule.
func Describe(r Rule) string {
	return fmt.Sprintf("rule %s (scope=%s priority=%d)", r.Name(), r.Scope(), r.Priority())
}
