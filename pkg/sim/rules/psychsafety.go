package rules

import (
	"context"
	"fmt"

	"stratum-hq/ganymede/pkg/sim/rule"
)

// PsychologicalSafetyParams configures the psychological-safety rule.
type PsychologicalSafetyParams struct {
	// Threshold is the safety level at which collaboration reaches full
	// strength. Default: 0.7.
	Threshold float64 `yaml:"threshold"`
}

// PsychologicalSafety is a model-scope rule that derives the team's
// collaboration factor from its psychological safety level: the factor is
// safety/threshold clamped to [0, 1], so collaboration scales up smoothly
// and saturates once safety meets the threshold.
type PsychologicalSafety struct {
	name     string
	priority int
	params   PsychologicalSafetyParams
}

// NewPsychologicalSafety creates the rule.
func NewPsychologicalSafety(name string, priority int, params PsychologicalSafetyParams) (*PsychologicalSafety, error) {
	if params.Threshold == 0 {
		params.Threshold = 0.7
	}
	if params.Threshold < 0 || params.Threshold > 1 {
		return nil, fmt.Errorf("threshold must be in [0, 1], got %v", params.Threshold)
	}
	return &PsychologicalSafety{name: name, priority: priority, params: params}, nil
}

// Name implements rule.Rule.
func (r *PsychologicalSafety) Name() string { return r.name }

// Scope implements rule.Rule.
func (r *PsychologicalSafety) Scope() rule.Scope { return rule.ScopeModel }

// Priority implements rule.Rule.
func (r *PsychologicalSafety) Priority() int { return r.priority }

// Evaluate implements rule.Rule.
func (r *PsychologicalSafety) Evaluate(ctx context.Context, ec *rule.Context) (rule.Outcome, error) {
	safety, err := ec.Model.GlobalFloat(GlobalPsychSafety)
	if err != nil {
		return rule.Outcome{}, err
	}

	factor := clamp01(safety / r.params.Threshold)

	var out rule.Outcome
	current, err := ec.Model.GlobalFloat(GlobalCollaborationFactor)
	if err != nil || current != factor {
		out.SetGlobal(GlobalCollaborationFactor, factor)
	}
	return out, nil
}

// CollaborationMet reports whether the safety level meets the threshold.
// Exposed for drivers that gate behavior on full collaboration.
func (r *PsychologicalSafety) CollaborationMet(safety float64) bool {
	return safety >= r.params.Threshold
}
