package effect

import (
	"fmt"
	"strings"
)

// ConflictError indicates a resolver returned more than one winning effect
// for a single collision key. The default policy makes this unreachable; it
// can only occur with a broken custom Resolver. The tick scheduler treats it
// as fatal and aborts the tick before any state is mutated.
type ConflictError struct {
	// Key is the collision key with multiple winners.
	Key string

	// Rules names the rules whose effects both survived resolution.
	Rules []string
}

// Error returns the error message.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict resolution not total: %d winners for %s (rules: %s)",
		len(e.Rules), e.Key, strings.Join(e.Rules, ", "))
}
