package ruleset

import "errors"

// Sentinel errors.
var (
	// ErrInvalidSpec indicates a malformed rule spec or document.
	ErrInvalidSpec = errors.New("invalid rule spec")

	// ErrUnknownKind indicates a spec references a kind that no builder
	// was registered for.
	ErrUnknownKind = errors.New("unknown rule kind")

	// ErrDuplicateKind indicates two builders registered the same kind.
	ErrDuplicateKind = errors.New("duplicate rule kind")
)
