package rule

import "errors"

// Sentinel errors for registry operations.
var (
	// ErrInvalidRule indicates a rule that does not satisfy the contract
	// (nil, unnamed, or unknown scope).
	ErrInvalidRule = errors.New("invalid rule")

	// ErrDuplicateRule indicates a name collision on registration.
	ErrDuplicateRule = errors.New("duplicate rule")

	// ErrRuleNotFound indicates a lookup or removal of an unknown name.
	ErrRuleNotFound = errors.New("rule not found")
)
