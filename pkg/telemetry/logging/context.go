package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for simulation run IDs.
	RunIDKey contextKey = "run_id"

	// TickKey is the context key for the current tick.
	TickKey contextKey = "tick"

	// RuleKey is the context key for the rule being evaluated.
	RuleKey contextKey = "rule"

	// AgentKey is the context key for agent identifiers.
	AgentKey contextKey = "agent"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithTick adds the current tick to the context.
func WithTick(ctx context.Context, tick uint64) context.Context {
	return context.WithValue(ctx, TickKey, tick)
}

// GetTick retrieves the tick from the context. The second return value
// reports whether a tick was set.
func GetTick(ctx context.Context) (uint64, bool) {
	tick, ok := ctx.Value(TickKey).(uint64)
	return tick, ok
}

// WithRule adds a rule name to the context.
func WithRule(ctx context.Context, rule string) context.Context {
	return context.WithValue(ctx, RuleKey, rule)
}

// GetRule retrieves the rule name from the context.
func GetRule(ctx context.Context) string {
	if rule, ok := ctx.Value(RuleKey).(string); ok {
		return rule
	}
	return ""
}

// WithAgent adds an agent ID to the context.
func WithAgent(ctx context.Context, agentID string) context.Context {
	return context.WithValue(ctx, AgentKey, agentID)
}

// GetAgent retrieves the agent ID from the context.
func GetAgent(ctx context.Context) string {
	if agentID, ok := ctx.Value(AgentKey).(string); ok {
		return agentID
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, "run_id", runID)
	}
	if tick, ok := GetTick(ctx); ok {
		fields = append(fields, "tick", tick)
	}
	if rule := GetRule(ctx); rule != "" {
		fields = append(fields, "rule", rule)
	}
	if agentID := GetAgent(ctx); agentID != "" {
		fields = append(fields, "agent", agentID)
	}

	return fields
}
