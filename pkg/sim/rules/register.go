package rules

import (
	"fmt"

	"stratum-hq/ganymede/pkg/sim/rule"
	"stratum-hq/ganymede/pkg/sim/ruleset"
)

// Rule kinds recognized by configuration files.
const (
	KindPsychologicalSafety = "psychological_safety"
	KindTaskProgress        = "task_progress"
	KindKnowledgeGrowth     = "knowledge_growth"
	KindCommunication       = "communication"
	KindTurnoverRisk        = "turnover_risk"
)

// RegisterKinds registers every built-in rule kind with the factory.
func RegisterKinds(f *ruleset.Factory) error {
	kinds := map[string]ruleset.Builder{
		KindPsychologicalSafety: buildPsychologicalSafety,
		KindTaskProgress:        buildTaskProgress,
		KindKnowledgeGrowth:     buildKnowledgeGrowth,
		KindCommunication:       buildCommunication,
		KindTurnoverRisk:        buildTurnoverRisk,
	}
	for kind, b := range kinds {
		if err := f.RegisterKind(kind, b); err != nil {
			return fmt.Errorf("registering kind %q: %w", kind, err)
		}
	}
	return nil
}

func buildPsychologicalSafety(spec ruleset.Spec) (rule.Rule, error) {
	var params PsychologicalSafetyParams
	if err := spec.DecodeParams(&params); err != nil {
		return nil, err
	}
	return NewPsychologicalSafety(spec.Name, spec.Priority, params)
}

func buildTaskProgress(spec ruleset.Spec) (rule.Rule, error) {
	var params TaskProgressParams
	if err := spec.DecodeParams(&params); err != nil {
		return nil, err
	}
	return NewTaskProgress(spec.Name, spec.Priority, params)
}

func buildKnowledgeGrowth(spec ruleset.Spec) (rule.Rule, error) {
	var params KnowledgeGrowthParams
	if err := spec.DecodeParams(&params); err != nil {
		return nil, err
	}
	return NewKnowledgeGrowth(spec.Name, spec.Priority, params)
}

func buildCommunication(spec ruleset.Spec) (rule.Rule, error) {
	var params CommunicationParams
	if err := spec.DecodeParams(&params); err != nil {
		return nil, err
	}
	return NewCommunication(spec.Name, spec.Priority, params)
}

func buildTurnoverRisk(spec ruleset.Spec) (rule.Rule, error) {
	var params TurnoverRiskParams
	if err := spec.DecodeParams(&params); err != nil {
		return nil, err
	}
	return NewTurnoverRisk(spec.Name, spec.Priority, params)
}

// Defaults returns the built-in ruleset used when no ruleset file is
// configured. It mirrors the ordering a standard simulation expects:
// model-level climate first, then per-agent work, learning, interaction
// and risk.
func Defaults() ([]rule.Rule, error) {
	return DefaultsWith(0, 0)
}

// DefaultsWith returns the built-in ruleset with the psychological
// safety threshold and per-tick base work units overridden. Zero values
// fall back to the rule constructors' defaults.
func DefaultsWith(psychSafetyThreshold, baseWorkUnits float64) ([]rule.Rule, error) {
	ps, err := NewPsychologicalSafety("psychological-safety", 100, PsychologicalSafetyParams{
		Threshold: psychSafetyThreshold,
	})
	if err != nil {
		return nil, err
	}
	tp, err := NewTaskProgress("task-progress", 50, TaskProgressParams{
		BaseWorkUnits: baseWorkUnits,
	})
	if err != nil {
		return nil, err
	}
	kg, err := NewKnowledgeGrowth("knowledge-growth", 40, KnowledgeGrowthParams{})
	if err != nil {
		return nil, err
	}
	cm, err := NewCommunication("communication", 30, CommunicationParams{})
	if err != nil {
		return nil, err
	}
	tr, err := NewTurnoverRisk("turnover-risk", 20, TurnoverRiskParams{})
	if err != nil {
		return nil, err
	}
	return []rule.Rule{ps, tp, kg, cm, tr}, nil
}
