package model

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrAgentExists indicates an agent ID is already present.
	ErrAgentExists = errors.New("agent already exists")

	// ErrAgentNotFound indicates an agent ID is not present.
	ErrAgentNotFound = errors.New("agent not found")
)

// MissingAttributeError indicates a rule read an attribute that the target
// does not carry. The engine converts this into an isolated rule evaluation
// failure rather than aborting the tick.
type MissingAttributeError struct {
	// TargetID is the agent ID, or empty for a global attribute.
	TargetID string

	// Attribute is the missing attribute name.
	Attribute string
}

// Error returns the error message.
func (e *MissingAttributeError) Error() string {
	if e.TargetID == "" {
		return fmt.Sprintf("global attribute %q not set", e.Attribute)
	}
	return fmt.Sprintf("agent %s has no attribute %q", e.TargetID, e.Attribute)
}

// ApplyError indicates the model rejected an effect during the apply phase.
// Validation runs before any mutation, so an ApplyError guarantees the model
// is unchanged for the whole tick.
type ApplyError struct {
	// TargetID is the effect's target agent, or empty for globals.
	TargetID string

	// Attribute is the attribute the effect tried to set.
	Attribute string

	// Rule is the rule that produced the rejected effect.
	Rule string

	// Cause is the underlying validation failure.
	Cause error
}

// Error returns the error message.
func (e *ApplyError) Error() string {
	target := e.TargetID
	if target == "" {
		target = "model"
	}
	return fmt.Sprintf("apply rejected: target=%s attribute=%q rule=%s: %v", target, e.Attribute, e.Rule, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ApplyError) Unwrap() error {
	return e.Cause
}
