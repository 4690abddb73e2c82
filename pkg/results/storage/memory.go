package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"stratum-hq/ganymede/pkg/results"
)

// MemoryStore is an in-memory results store. It keeps all records in
// process memory and is intended for tests and short-lived runs.
type MemoryStore struct {
	mu    sync.RWMutex
	runs  map[string]*results.RunRecord
	ticks []*results.TickRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]*results.RunRecord),
	}
}

// CreateRun implements results.Store.
func (s *MemoryStore) CreateRun(ctx context.Context, run *results.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return results.NewStorageError("memory", "create_run", results.ErrRunExists)
	}
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

// FinishRun implements results.Store.
func (s *MemoryStore) FinishRun(ctx context.Context, runID string, finishedAt time.Time, ticks uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return results.NewStorageError("memory", "finish_run", results.ErrRunNotFound)
	}
	run.FinishedAt = finishedAt
	run.Ticks = ticks
	return nil
}

// GetRun implements results.Store.
func (s *MemoryStore) GetRun(ctx context.Context, runID string) (*results.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, results.NewStorageError("memory", "get_run", results.ErrRunNotFound)
	}
	cp := *run
	return &cp, nil
}

// StoreTick implements results.Store.
func (s *MemoryStore) StoreTick(ctx context.Context, rec *results.TickRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	for i, existing := range s.ticks {
		if existing.RunID == rec.RunID && existing.Tick == rec.Tick {
			s.ticks[i] = &cp
			return nil
		}
	}
	s.ticks = append(s.ticks, &cp)
	return nil
}

// QueryTicks implements results.Store.
func (s *MemoryStore) QueryTicks(ctx context.Context, q *results.Query) ([]*results.TickRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []*results.TickRecord{}
	for _, rec := range s.ticks {
		if matches(rec, q) {
			cp := *rec
			matched = append(matched, &cp)
		}
	}

	desc := q != nil && q.SortOrder == "desc"
	sort.Slice(matched, func(i, j int) bool {
		if desc {
			return matched[i].Tick > matched[j].Tick
		}
		return matched[i].Tick < matched[j].Tick
	})

	return paginate(matched, q), nil
}

// CountTicks implements results.Store.
func (s *MemoryStore) CountTicks(ctx context.Context, q *results.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, rec := range s.ticks {
		if matches(rec, q) {
			count++
		}
	}
	return count, nil
}

// DeleteTicks implements results.Store.
func (s *MemoryStore) DeleteTicks(ctx context.Context, q *results.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.ticks[:0]
	var deleted int64
	for _, rec := range s.ticks {
		if matches(rec, q) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	s.ticks = kept
	return deleted, nil
}

// ListRuns implements results.Store.
func (s *MemoryStore) ListRuns(ctx context.Context, limit int) ([]*results.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*results.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		cp := *run
		runs = append(runs, &cp)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// DeleteRunsBefore implements results.Store.
func (s *MemoryStore) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, run := range s.runs {
		if run.FinishedAt.IsZero() || !run.FinishedAt.Before(cutoff) {
			continue
		}
		delete(s.runs, id)
		deleted++

		kept := s.ticks[:0]
		for _, rec := range s.ticks {
			if rec.RunID != id {
				kept = append(kept, rec)
			}
		}
		s.ticks = kept
	}
	return deleted, nil
}

// Close implements results.Store. It is a no-op for the memory backend.
func (s *MemoryStore) Close() error {
	return nil
}

// matches reports whether a tick record passes the query filters.
func matches(rec *results.TickRecord, q *results.Query) bool {
	if q == nil {
		return true
	}
	if q.RunID != "" && rec.RunID != q.RunID {
		return false
	}
	if q.MinTick != nil && rec.Tick < *q.MinTick {
		return false
	}
	if q.MaxTick != nil && rec.Tick > *q.MaxTick {
		return false
	}
	if q.Before != nil && !rec.RecordedAt.Before(*q.Before) {
		return false
	}
	return true
}

// paginate applies offset and limit to an already sorted result set.
func paginate(recs []*results.TickRecord, q *results.Query) []*results.TickRecord {
	if q == nil {
		return recs
	}
	if q.Offset > 0 {
		if q.Offset >= len(recs) {
			return []*results.TickRecord{}
		}
		recs = recs[q.Offset:]
	}
	if q.Limit > 0 && len(recs) > q.Limit {
		recs = recs[:q.Limit]
	}
	return recs
}
