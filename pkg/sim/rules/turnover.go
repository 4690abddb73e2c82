package rules

import (
	"context"
	"fmt"

	"stratum-hq/ganymede/pkg/sim/rule"
)

// TurnoverRiskParams configures the turnover-risk rule.
type TurnoverRiskParams struct {
	// WarnThreshold is the risk level at which an attrition warning is
	// emitted. Default: 0.7.
	WarnThreshold float64 `yaml:"warn_threshold"`
}

// TurnoverRisk is an agent-scope rule deriving each agent's attrition risk
// from its perceived psychological safety and motivation: risk is the
// complement of their average. Crossing the warn threshold emits an
// attrition_warning event so the driver can react (or just record it).
type TurnoverRisk struct {
	name     string
	priority int
	params   TurnoverRiskParams
}

// NewTurnoverRisk creates the rule.
func NewTurnoverRisk(name string, priority int, params TurnoverRiskParams) (*TurnoverRisk, error) {
	if params.WarnThreshold == 0 {
		params.WarnThreshold = 0.7
	}
	if params.WarnThreshold < 0 || params.WarnThreshold > 1 {
		return nil, fmt.Errorf("warn threshold must be in [0, 1], got %v", params.WarnThreshold)
	}
	return &TurnoverRisk{name: name, priority: priority, params: params}, nil
}

// Name implements rule.Rule.
func (r *TurnoverRisk) Name() string { return r.name }

// Scope implements rule.Rule.
func (r *TurnoverRisk) Scope() rule.Scope { return rule.ScopeAgent }

// Priority implements rule.Rule.
func (r *TurnoverRisk) Priority() int { return r.priority }

// Evaluate implements rule.Rule.
func (r *TurnoverRisk) Evaluate(ctx context.Context, ec *rule.Context) (rule.Outcome, error) {
	agent := ec.Agent
	pps, err := agent.Float(AttrPPS)
	if err != nil {
		return rule.Outcome{}, err
	}
	motivation, err := agent.Float(AttrMotivation)
	if err != nil {
		return rule.Outcome{}, err
	}

	risk := clamp01(1 - (pps+motivation)/2)

	var out rule.Outcome
	previous := agent.FloatOr(AttrAttritionRisk, -1)
	if risk != previous {
		out.SetAgentAttr(agent.ID(), AttrAttritionRisk, risk)
	}
	if risk >= r.params.WarnThreshold && previous < r.params.WarnThreshold {
		out.Emit(EventAttritionWarning, agent.ID())
	}
	return out, nil
}
