package rules

// Global attribute names read and written by the built-in rules.
const (
	// GlobalPsychSafety is the team-wide psychological safety level,
	// 0..1.
	GlobalPsychSafety = "psychological_safety"

	// GlobalCollaborationFactor is the collaboration strength derived
	// from psychological safety, 0..1. Written by the
	// psychological-safety rule, read by the agent-scope rules.
	GlobalCollaborationFactor = "collaboration_factor"
)

// Agent attribute names read and written by the built-in rules.
const (
	// AttrTaskProgress is the progress on the agent's current task,
	// 0..1.
	AttrTaskProgress = "task_progress"

	// AttrTasksRemaining counts tasks waiting in the agent's backlog.
	AttrTasksRemaining = "tasks_remaining"

	// AttrTasksCompleted counts tasks the agent has finished.
	AttrTasksCompleted = "tasks_completed"

	// AttrWorkEfficiency multiplies the agent's work progress per tick.
	AttrWorkEfficiency = "work_efficiency"

	// AttrKnowledge is the agent's accumulated knowledge level.
	AttrKnowledge = "knowledge"

	// AttrLearningRate is how fast the agent accumulates knowledge.
	AttrLearningRate = "learning_rate"

	// AttrPPS is the agent's perceived psychological safety, 0..1.
	AttrPPS = "pps"

	// AttrCommunicationSkill scales how much the agent benefits from
	// collaborative interactions, 0..1.
	AttrCommunicationSkill = "communication_skill"

	// AttrMotivation is the agent's motivation level, 0..1.
	AttrMotivation = "motivation"

	// AttrAttritionRisk is the derived risk that the agent leaves,
	// 0..1.
	AttrAttritionRisk = "attrition_risk"
)

// Event names emitted by the built-in rules.
const (
	// EventTaskCompleted fires when an agent finishes a task. The
	// payload is the agent ID.
	EventTaskCompleted = "task_completed"

	// EventAttritionWarning fires when an agent's attrition risk
	// crosses the configured threshold. The payload is the agent ID.
	EventAttritionWarning = "attrition_warning"
)

// clamp01 clamps v to the [0, 1] interval.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
