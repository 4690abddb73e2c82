package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrInvalidConfig indicates invalid scheduler configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrEffectBudgetExceeded indicates a tick collected more effects
	// than Config.MaxEffectsPerTick allows.
	ErrEffectBudgetExceeded = errors.New("effect budget exceeded")
)

// EvalError records one failed rule evaluation. Failures are isolated: the
// tick continues with the remaining (rule, context) pairs and the error is
// reported on the TickReport.
type EvalError struct {
	// Rule is the name of the rule that failed.
	Rule string

	// TargetID is the agent the rule was evaluated against, empty for
	// model scope.
	TargetID string

	// Cause is the underlying evaluation failure.
	Cause error
}

// Error returns the error message.
func (e *EvalError) Error() string {
	if e.TargetID != "" {
		return fmt.Sprintf("rule %s failed for agent %s: %v", e.Rule, e.TargetID, e.Cause)
	}
	return fmt.Sprintf("rule %s failed: %v", e.Rule, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *EvalError) Unwrap() error {
	return e.Cause
}
