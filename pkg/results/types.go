package results

import (
	"context"
	"time"
)

// RunRecord describes a single simulation run.
type RunRecord struct {
	// ID is a UUID v4 assigned when the run starts.
	ID string `json:"id"`

	// Description is an optional operator-supplied label.
	Description string `json:"description,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run ended. Zero while the run is active.
	FinishedAt time.Time `json:"finished_at,omitempty"`

	// Agents is the initial agent population.
	Agents int `json:"agents"`

	// Seed is the random seed used to build the initial population.
	Seed int64 `json:"seed"`

	// Ticks is the number of ticks completed. Updated when the run
	// finishes.
	Ticks uint64 `json:"ticks"`
}

// TickRecord captures the observable outcome of one tick.
type TickRecord struct {
	RunID      string    `json:"run_id"`
	Tick       uint64    `json:"tick"`
	RecordedAt time.Time `json:"recorded_at"`

	// Population aggregates
	AgentCount     int     `json:"agent_count"`
	TasksCompleted float64 `json:"tasks_completed"`
	TasksRemaining float64 `json:"tasks_remaining"`
	AvgKnowledge   float64 `json:"avg_knowledge"`
	AvgPerceived   float64 `json:"avg_perceived_safety"`

	// Model globals
	PsychSafety         float64 `json:"psychological_safety"`
	CollaborationFactor float64 `json:"collaboration_factor"`

	// Engine activity
	EffectsApplied    int  `json:"effects_applied"`
	EffectsSuperseded int  `json:"effects_superseded"`
	Evaluations       int  `json:"evaluations"`
	EvalErrors        int  `json:"eval_errors"`
	Events            int  `json:"events"`
	Changed           bool `json:"changed"`

	// Duration is the wall-clock time of the tick.
	Duration time.Duration `json:"duration"`
}

// Query defines filter parameters for querying tick records.
type Query struct {
	// RunID restricts results to a single run.
	RunID string `json:"run_id,omitempty"`

	// Tick range, inclusive on both ends.
	MinTick *uint64 `json:"min_tick,omitempty"`
	MaxTick *uint64 `json:"max_tick,omitempty"`

	// Before restricts results to records recorded before the given
	// time. Used by retention pruning.
	Before *time.Time `json:"before,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// SortOrder is "asc" or "desc" by tick. Default: "asc".
	SortOrder string `json:"sort_order,omitempty"`
}

// Store defines the interface for results storage backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// CreateRun registers a new run.
	CreateRun(ctx context.Context, run *RunRecord) error

	// FinishRun marks a run as complete with its final tick count.
	FinishRun(ctx context.Context, runID string, finishedAt time.Time, ticks uint64) error

	// GetRun retrieves a single run by ID.
	GetRun(ctx context.Context, runID string) (*RunRecord, error)

	// StoreTick persists a tick record. A record with the same
	// (run, tick) replaces the earlier one: a run resumed from a
	// checkpoint re-records the ticks between the snapshot and where
	// the previous run stopped.
	StoreTick(ctx context.Context, rec *TickRecord) error

	// QueryTicks retrieves tick records matching the query filters.
	// Returns an empty slice if no records match.
	QueryTicks(ctx context.Context, q *Query) ([]*TickRecord, error)

	// CountTicks returns the number of tick records matching the query
	// filters.
	CountTicks(ctx context.Context, q *Query) (int64, error)

	// DeleteTicks removes tick records matching the query filters and
	// returns the number removed. Used for retention enforcement.
	DeleteTicks(ctx context.Context, q *Query) (int64, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*RunRecord, error)

	// DeleteRunsBefore removes runs that finished before the cutoff,
	// along with their tick records. Returns the number of runs removed.
	DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases any resources held by the backend.
	Close() error
}
