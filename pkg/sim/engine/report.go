package engine

import (
	"time"

	"stratum-hq/ganymede/pkg/sim/effect"
)

// TickReport summarizes one completed tick.
type TickReport struct {
	// Tick is the tick number that was executed (the counter value
	// before advancing).
	Tick uint64

	// Applied is the number of state mutations applied to the model.
	Applied int

	// Superseded is the number of effects that lost conflict resolution.
	Superseded int

	// Events holds the event effects emitted this tick, in deterministic
	// order.
	Events []effect.Effect

	// Errors lists the isolated rule evaluation failures.
	Errors []*EvalError

	// Evaluations is the number of (rule, context) pairs evaluated.
	Evaluations int

	// Changed reports whether any state mutation was applied. Callers
	// use it for convergence detection.
	Changed bool

	// Duration is the wall time the tick took.
	Duration time.Duration

	// Trace holds per-phase timing when tracing is enabled, nil
	// otherwise.
	Trace *TickTrace
}

// TickTrace records per-phase timing for one tick.
type TickTrace struct {
	Steps []TraceStep
}

// TraceStep is one phase timing entry.
type TraceStep struct {
	// Phase names the tick phase ("resolve", "evaluate", "collect",
	// "conflicts", "apply", "advance").
	Phase string

	// Detail carries phase-specific context, such as counts.
	Detail string

	// Duration is how long the phase took.
	Duration time.Duration
}

// add appends a step when tracing is active.
func (t *TickTrace) add(phase, detail string, d time.Duration) {
	if t == nil {
		return
	}
	t.Steps = append(t.Steps, TraceStep{Phase: phase, Detail: detail, Duration: d})
}
