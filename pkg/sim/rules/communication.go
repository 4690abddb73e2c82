package rules

import (
	"context"
	"fmt"

	"stratum-hq/ganymede/pkg/sim/rule"
)

// CommunicationParams configures the communication rule.
type CommunicationParams struct {
	// Gain scales how much collaborative interaction raises perceived
	// psychological safety per tick. Default: 0.05.
	Gain float64 `yaml:"gain"`

	// Decay is how much perceived safety erodes per tick when the team
	// is not collaborating. Default: 0.01.
	Decay float64 `yaml:"decay"`
}

// Communication is an agent-scope rule modeling the feedback loop between
// collaboration and perceived psychological safety: while the team
// collaborates, each agent's perceived safety climbs in proportion to its
// communication skill; without collaboration it slowly decays.
type Communication struct {
	name     string
	priority int
	params   CommunicationParams
}

// NewCommunication creates the rule.
func NewCommunication(name string, priority int, params CommunicationParams) (*Communication, error) {
	if params.Gain == 0 {
		params.Gain = 0.05
	}
	if params.Decay == 0 {
		params.Decay = 0.01
	}
	if params.Gain < 0 || params.Decay < 0 {
		return nil, fmt.Errorf("gain and decay must be positive, got gain=%v decay=%v", params.Gain, params.Decay)
	}
	return &Communication{name: name, priority: priority, params: params}, nil
}

// Name implements rule.Rule.
func (r *Communication) Name() string { return r.name }

// Scope implements rule.Rule.
func (r *Communication) Scope() rule.Scope { return rule.ScopeAgent }

// Priority implements rule.Rule.
func (r *Communication) Priority() int { return r.priority }

// Evaluate implements rule.Rule.
func (r *Communication) Evaluate(ctx context.Context, ec *rule.Context) (rule.Outcome, error) {
	agent := ec.Agent
	pps, err := agent.Float(AttrPPS)
	if err != nil {
		return rule.Outcome{}, err
	}

	collab := 0.0
	if f, err := ec.Model.GlobalFloat(GlobalCollaborationFactor); err == nil {
		collab = f
	}

	var next float64
	if collab > 0 {
		skill := agent.FloatOr(AttrCommunicationSkill, 0.5)
		next = clamp01(pps + skill*collab*r.params.Gain)
	} else {
		next = clamp01(pps - r.params.Decay)
	}

	var out rule.Outcome
	if next != pps {
		out.SetAgentAttr(agent.ID(), AttrPPS, next)
	}
	return out, nil
}
