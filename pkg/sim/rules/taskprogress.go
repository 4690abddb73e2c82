package rules

import (
	"context"
	"fmt"

	"stratum-hq/ganymede/pkg/sim/rule"
)

// TaskProgressParams configures the task-progress rule.
type TaskProgressParams struct {
	// BaseWorkUnits is the work done per tick before the agent's
	// efficiency multiplier. Default: 0.1.
	BaseWorkUnits float64 `yaml:"base_work_units"`
}

// TaskProgress is an agent-scope rule that advances the agent's current
// task by base work units scaled by the agent's work efficiency. Crossing
// full progress completes the task: the completed count goes up, the
// backlog count goes down, progress resets, and a task_completed event is
// emitted. Agents with an empty backlog contribute nothing.
type TaskProgress struct {
	name     string
	priority int
	params   TaskProgressParams
}

// NewTaskProgress creates the rule.
func NewTaskProgress(name string, priority int, params TaskProgressParams) (*TaskProgress, error) {
	if params.BaseWorkUnits == 0 {
		params.BaseWorkUnits = 0.1
	}
	if params.BaseWorkUnits < 0 {
		return nil, fmt.Errorf("base work units must be positive, got %v", params.BaseWorkUnits)
	}
	return &TaskProgress{name: name, priority: priority, params: params}, nil
}

// Name implements rule.Rule.
func (r *TaskProgress) Name() string { return r.name }

// Scope implements rule.Rule.
func (r *TaskProgress) Scope() rule.Scope { return rule.ScopeAgent }

// Priority implements rule.Rule.
func (r *TaskProgress) Priority() int { return r.priority }

// Evaluate implements rule.Rule.
func (r *TaskProgress) Evaluate(ctx context.Context, ec *rule.Context) (rule.Outcome, error) {
	agent := ec.Agent
	remaining, err := agent.Float(AttrTasksRemaining)
	if err != nil {
		return rule.Outcome{}, err
	}

	var out rule.Outcome
	if remaining < 1 {
		return out, nil
	}

	progress := agent.FloatOr(AttrTaskProgress, 0)
	efficiency := agent.FloatOr(AttrWorkEfficiency, 1.0)

	progress += r.params.BaseWorkUnits * efficiency

	if progress >= 1.0 {
		completed := agent.FloatOr(AttrTasksCompleted, 0)
		out.SetAgentAttr(agent.ID(), AttrTasksCompleted, completed+1)
		out.SetAgentAttr(agent.ID(), AttrTasksRemaining, remaining-1)
		out.SetAgentAttr(agent.ID(), AttrTaskProgress, 0.0)
		out.Emit(EventTaskCompleted, agent.ID())
	} else {
		out.SetAgentAttr(agent.ID(), AttrTaskProgress, progress)
	}
	return out, nil
}
