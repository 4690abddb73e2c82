package rules

import (
	"context"
	"fmt"

	"stratum-hq/ganymede/pkg/sim/rule"
)

// KnowledgeGrowthParams configures the knowledge-growth rule.
type KnowledgeGrowthParams struct {
	// Cap is the maximum knowledge level an agent can reach.
	// Default: 100.
	Cap float64 `yaml:"cap"`
}

// KnowledgeGrowth is an agent-scope rule modeling learning: each tick an
// agent's knowledge grows by its learning rate, amplified by the team's
// collaboration factor (knowledge flows faster on a collaborating team).
// Growth stops at the cap.
type KnowledgeGrowth struct {
	name     string
	priority int
	params   KnowledgeGrowthParams
}

// NewKnowledgeGrowth creates the rule.
func NewKnowledgeGrowth(name string, priority int, params KnowledgeGrowthParams) (*KnowledgeGrowth, error) {
	if params.Cap == 0 {
		params.Cap = 100
	}
	if params.Cap < 0 {
		return nil, fmt.Errorf("cap must be positive, got %v", params.Cap)
	}
	return &KnowledgeGrowth{name: name, priority: priority, params: params}, nil
}

// Name implements rule.Rule.
func (r *KnowledgeGrowth) Name() string { return r.name }

// Scope implements rule.Rule.
func (r *KnowledgeGrowth) Scope() rule.Scope { return rule.ScopeAgent }

// Priority implements rule.Rule.
func (r *KnowledgeGrowth) Priority() int { return r.priority }

// Evaluate implements rule.Rule.
func (r *KnowledgeGrowth) Evaluate(ctx context.Context, ec *rule.Context) (rule.Outcome, error) {
	agent := ec.Agent
	learningRate, err := agent.Float(AttrLearningRate)
	if err != nil {
		return rule.Outcome{}, err
	}

	knowledge := agent.FloatOr(AttrKnowledge, 0)

	var out rule.Outcome
	if knowledge >= r.params.Cap {
		return out, nil
	}

	// The collaboration factor is absent until the psychological-safety
	// rule has run at least once; treat that as no amplification.
	collab := 0.0
	if f, err := ec.Model.GlobalFloat(GlobalCollaborationFactor); err == nil {
		collab = f
	}

	knowledge += learningRate * (1 + collab)
	if knowledge > r.params.Cap {
		knowledge = r.params.Cap
	}
	out.SetAgentAttr(agent.ID(), AttrKnowledge, knowledge)
	return out, nil
}
