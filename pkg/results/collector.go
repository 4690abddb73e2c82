package results

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stratum-hq/ganymede/pkg/sim/engine"
	"stratum-hq/ganymede/pkg/sim/model"
	"stratum-hq/ganymede/pkg/sim/rules"
)

// Collector aggregates model state and engine tick reports into tick
// records and persists them under a run ID.
//
// A Collector tracks exactly one run. BeginRun assigns the run ID and
// registers the run; Collect is then called once per tick; Finish closes
// the run out. The Collector is driven from the simulation loop and is
// not safe for concurrent use.
type Collector struct {
	store  Store
	logger *slog.Logger

	run   *RunRecord
	ticks uint64
}

// NewCollector creates a collector writing to the given store.
func NewCollector(store Store, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		store:  store,
		logger: logger.With("component", "results.collector"),
	}
}

// RunID returns the active run's ID, or empty before BeginRun.
func (c *Collector) RunID() string {
	if c.run == nil {
		return ""
	}
	return c.run.ID
}

// BeginRun registers a new run and returns its ID.
func (c *Collector) BeginRun(ctx context.Context, m model.Reader, seed int64, description string) (string, error) {
	if c.run != nil {
		return "", fmt.Errorf("run %s already active", c.run.ID)
	}

	run := &RunRecord{
		ID:          uuid.NewString(),
		Description: description,
		StartedAt:   time.Now(),
		Agents:      m.AgentCount(),
		Seed:        seed,
	}
	if err := c.store.CreateRun(ctx, run); err != nil {
		return "", err
	}

	c.run = run
	c.ticks = 0
	c.logger.Info("run started",
		"run_id", run.ID,
		"agents", run.Agents,
		"seed", run.Seed,
	)
	return run.ID, nil
}

// ResumeRun attaches the collector to an existing run so a simulation
// restored from a checkpoint keeps recording under the same run ID.
func (c *Collector) ResumeRun(ctx context.Context, runID string) (string, error) {
	if c.run != nil {
		return "", fmt.Errorf("run %s already active", c.run.ID)
	}

	run, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return "", err
	}

	c.run = run
	c.ticks = run.Ticks
	c.logger.Info("run resumed",
		"run_id", run.ID,
		"ticks", run.Ticks,
	)
	return run.ID, nil
}

// Collect aggregates the model and tick report into a TickRecord and
// persists it.
func (c *Collector) Collect(ctx context.Context, m model.Reader, report *engine.TickReport) error {
	if c.run == nil {
		return fmt.Errorf("no active run")
	}

	rec := c.aggregate(m, report)
	if err := c.store.StoreTick(ctx, rec); err != nil {
		return err
	}
	// Derived from the tick number, not counted, so ticks replayed
	// after a checkpoint resume are not double counted.
	c.ticks = rec.Tick + 1

	c.logger.Debug("tick recorded",
		"run_id", rec.RunID,
		"tick", rec.Tick,
		"applied", rec.EffectsApplied,
		"changed", rec.Changed,
	)
	return nil
}

// Finish marks the active run as complete.
func (c *Collector) Finish(ctx context.Context) error {
	if c.run == nil {
		return fmt.Errorf("no active run")
	}

	finishedAt := time.Now()
	if err := c.store.FinishRun(ctx, c.run.ID, finishedAt, c.ticks); err != nil {
		return err
	}

	c.logger.Info("run finished",
		"run_id", c.run.ID,
		"ticks", c.ticks,
		"duration", finishedAt.Sub(c.run.StartedAt),
	)
	c.run = nil
	return nil
}

// aggregate computes a TickRecord from current model state and the tick
// report. The model is read after apply, so the record reflects post-tick
// state.
func (c *Collector) aggregate(m model.Reader, report *engine.TickReport) *TickRecord {
	rec := &TickRecord{
		RunID:             c.run.ID,
		Tick:              report.Tick,
		RecordedAt:        time.Now(),
		AgentCount:        m.AgentCount(),
		EffectsApplied:    report.Applied,
		EffectsSuperseded: report.Superseded,
		Evaluations:       report.Evaluations,
		EvalErrors:        len(report.Errors),
		Events:            len(report.Events),
		Changed:           report.Changed,
		Duration:          report.Duration,
	}

	if v, err := m.GlobalFloat(rules.GlobalPsychSafety); err == nil {
		rec.PsychSafety = v
	}
	if v, err := m.GlobalFloat(rules.GlobalCollaborationFactor); err == nil {
		rec.CollaborationFactor = v
	}

	var knowledge, perceived float64
	for _, id := range m.AgentIDs() {
		view, ok := m.View(id)
		if !ok {
			continue
		}
		rec.TasksCompleted += view.FloatOr(rules.AttrTasksCompleted, 0)
		rec.TasksRemaining += view.FloatOr(rules.AttrTasksRemaining, 0)
		knowledge += view.FloatOr(rules.AttrKnowledge, 0)
		perceived += view.FloatOr(rules.AttrPPS, 0)
	}
	if rec.AgentCount > 0 {
		rec.AvgKnowledge = knowledge / float64(rec.AgentCount)
		rec.AvgPerceived = perceived / float64(rec.AgentCount)
	}
	return rec
}
