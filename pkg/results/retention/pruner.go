package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"stratum-hq/ganymede/pkg/results"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain finished runs.
	// 0 means keep runs forever (no age-based pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// MaxTickRecords is the maximum number of tick records to keep.
	// 0 means unlimited.
	MaxTickRecords int64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays:  90,
		PruneSchedule:  "0 3 * * *",
		MaxTickRecords: 0,
	}
}

// Pruner enforces retention policies on a results store.
type Pruner struct {
	store     results.Store
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a new retention pruner.
func NewPruner(store results.Store, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "results.retention"),
	}
	pruner.scheduler = NewScheduler(pruner)
	return pruner
}

// Prune enforces the retention policy and returns the total number of
// records deleted.
//
// Pruning happens in two phases:
//  1. Age-based: delete runs that finished more than RetentionDays ago,
//     together with their tick records.
//  2. Count-based: if tick records exceed MaxTickRecords, delete the
//     oldest until the cap holds.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Info("pruned runs by age",
			"deleted_runs", deleted,
			"retention_days", p.config.RetentionDays,
		)
	}

	if p.config.MaxTickRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Info("pruned tick records by count",
			"deleted_ticks", deleted,
			"max_tick_records", p.config.MaxTickRecords,
		)
	}

	if totalDeleted == 0 {
		p.logger.Debug("no records pruned",
			"retention_days", p.config.RetentionDays,
			"max_tick_records", p.config.MaxTickRecords,
		)
	}
	return totalDeleted, nil
}

// pruneByAge deletes runs that finished before the retention cutoff.
func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	deleted, err := p.store.DeleteRunsBefore(ctx, cutoff)
	if err != nil {
		return 0, results.NewRetentionError(p.config.RetentionDays, err)
	}
	return deleted, nil
}

// pruneByCount deletes the oldest tick records when the total exceeds the
// configured cap.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.store.CountTicks(ctx, &results.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count tick records: %w", err)
	}

	if count <= p.config.MaxTickRecords {
		return 0, nil
	}
	toDelete := count - p.config.MaxTickRecords

	// Tick ordering is per run, so the cutoff has to come from recording
	// time. Query everything and sort by RecordedAt to find the newest
	// record that must go.
	all, err := p.store.QueryTicks(ctx, &results.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to query tick records: %w", err)
	}
	if len(all) == 0 {
		return 0, nil
	}
	sortTicksByTime(all)

	if toDelete > int64(len(all)) {
		toDelete = int64(len(all))
	}
	cutoff := all[toDelete-1].RecordedAt.Add(time.Microsecond)
	deleted, err := p.store.DeleteTicks(ctx, &results.Query{Before: &cutoff})
	if err != nil {
		return 0, fmt.Errorf("failed to delete tick records: %w", err)
	}
	return deleted, nil
}

// sortTicksByTime sorts tick records by RecordedAt in ascending order.
func sortTicksByTime(recs []*results.TickRecord) {
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].RecordedAt.Before(recs[j].RecordedAt)
	})
}

// Start starts the automatic pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
