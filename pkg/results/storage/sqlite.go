package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"stratum-hq/ganymede/pkg/results"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/results.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements the results.Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite results store.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "results.storage.sqlite")

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, results.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite results store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return results.NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return results.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return results.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return results.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return results.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return results.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// CreateRun implements results.Store.
func (s *SQLiteStore) CreateRun(ctx context.Context, run *results.RunRecord) error {
	query := `
		INSERT INTO runs (id, description, started_at, finished_at, agents, seed, ticks)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	var finishedAt interface{}
	if !run.FinishedAt.IsZero() {
		finishedAt = run.FinishedAt
	}

	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.Description, run.StartedAt, finishedAt, run.Agents, run.Seed, run.Ticks,
	)
	if err != nil {
		return results.NewStorageError("sqlite", "create_run", err)
	}
	return nil
}

// FinishRun implements results.Store.
func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, finishedAt time.Time, ticks uint64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, ticks = ? WHERE id = ?",
		finishedAt, ticks, runID,
	)
	if err != nil {
		return results.NewStorageError("sqlite", "finish_run", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return results.NewStorageError("sqlite", "finish_run", err)
	}
	if affected == 0 {
		return results.NewStorageError("sqlite", "finish_run", results.ErrRunNotFound)
	}
	return nil
}

// GetRun implements results.Store.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*results.RunRecord, error) {
	var run results.RunRecord
	var description sql.NullString
	var finishedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		"SELECT id, description, started_at, finished_at, agents, seed, ticks FROM runs WHERE id = ?",
		runID,
	).Scan(&run.ID, &description, &run.StartedAt, &finishedAt, &run.Agents, &run.Seed, &run.Ticks)
	if err == sql.ErrNoRows {
		return nil, results.NewStorageError("sqlite", "get_run", results.ErrRunNotFound)
	}
	if err != nil {
		return nil, results.NewStorageError("sqlite", "get_run", err)
	}
	run.Description = description.String
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	return &run, nil
}

// StoreTick implements results.Store.
func (s *SQLiteStore) StoreTick(ctx context.Context, rec *results.TickRecord) error {
	query := `
		INSERT OR REPLACE INTO ticks (
			run_id, tick, recorded_at,
			agent_count, tasks_completed, tasks_remaining, avg_knowledge, avg_perceived_safety,
			psychological_safety, collaboration_factor,
			effects_applied, effects_superseded, evaluations, eval_errors, events, changed,
			duration
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.RunID, rec.Tick, rec.RecordedAt,
		rec.AgentCount, rec.TasksCompleted, rec.TasksRemaining, rec.AvgKnowledge, rec.AvgPerceived,
		rec.PsychSafety, rec.CollaborationFactor,
		rec.EffectsApplied, rec.EffectsSuperseded, rec.Evaluations, rec.EvalErrors, rec.Events, rec.Changed,
		rec.Duration.Microseconds(),
	)
	if err != nil {
		return results.NewStorageError("sqlite", "store_tick", err)
	}
	return nil
}

// QueryTicks implements results.Store.
func (s *SQLiteStore) QueryTicks(ctx context.Context, q *results.Query) ([]*results.TickRecord, error) {
	whereClause, args := buildWhereClause(q)

	sqlQuery := `
		SELECT run_id, tick, recorded_at,
			agent_count, tasks_completed, tasks_remaining, avg_knowledge, avg_perceived_safety,
			psychological_safety, collaboration_factor,
			effects_applied, effects_superseded, evaluations, eval_errors, events, changed,
			duration
		FROM ticks
	`
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	sortOrder := "ASC"
	if q != nil && q.SortOrder == "desc" {
		sortOrder = "DESC"
	}
	sqlQuery += fmt.Sprintf(" ORDER BY tick %s", sortOrder)

	if q != nil && q.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", q.Limit)
		if q.Offset > 0 {
			sqlQuery += fmt.Sprintf(" OFFSET %d", q.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, results.NewStorageError("sqlite", "query_ticks", err)
	}
	defer rows.Close()

	records := []*results.TickRecord{}
	for rows.Next() {
		rec, err := scanTickRow(rows)
		if err != nil {
			return nil, results.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, results.NewStorageError("sqlite", "query_ticks", err)
	}
	return records, nil
}

// CountTicks implements results.Store.
func (s *SQLiteStore) CountTicks(ctx context.Context, q *results.Query) (int64, error) {
	whereClause, args := buildWhereClause(q)

	sqlQuery := "SELECT COUNT(*) FROM ticks"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, results.NewStorageError("sqlite", "count_ticks", err)
	}
	return count, nil
}

// DeleteTicks implements results.Store.
func (s *SQLiteStore) DeleteTicks(ctx context.Context, q *results.Query) (int64, error) {
	whereClause, args := buildWhereClause(q)

	sqlQuery := "DELETE FROM ticks"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	res, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, results.NewStorageError("sqlite", "delete_ticks", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, results.NewStorageError("sqlite", "delete_ticks", err)
	}
	return count, nil
}

// ListRuns implements results.Store.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*results.RunRecord, error) {
	sqlQuery := `
		SELECT id, description, started_at, finished_at, agents, seed, ticks
		FROM runs
		ORDER BY started_at DESC
	`
	if limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, results.NewStorageError("sqlite", "list_runs", err)
	}
	defer rows.Close()

	runs := []*results.RunRecord{}
	for rows.Next() {
		var run results.RunRecord
		var description sql.NullString
		var finishedAt sql.NullTime
		if err := rows.Scan(&run.ID, &description, &run.StartedAt, &finishedAt, &run.Agents, &run.Seed, &run.Ticks); err != nil {
			return nil, results.NewStorageError("sqlite", "scan", err)
		}
		run.Description = description.String
		if finishedAt.Valid {
			run.FinishedAt = finishedAt.Time
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, results.NewStorageError("sqlite", "list_runs", err)
	}
	return runs, nil
}

// DeleteRunsBefore implements results.Store.
func (s *SQLiteStore) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	// Remove tick records first so a failure between the two statements
	// never strands ticks without their run.
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM ticks WHERE run_id IN (SELECT id FROM runs WHERE finished_at IS NOT NULL AND finished_at < ?)",
		cutoff,
	)
	if err != nil {
		return 0, results.NewStorageError("sqlite", "delete_runs", err)
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM runs WHERE finished_at IS NOT NULL AND finished_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, results.NewStorageError("sqlite", "delete_runs", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, results.NewStorageError("sqlite", "delete_runs", err)
	}
	return count, nil
}

// Close releases resources held by the store.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return results.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite results store closed")
	return nil
}

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the WHERE clause (without "WHERE" keyword) and the query arguments.
func buildWhereClause(q *results.Query) (string, []interface{}) {
	if q == nil {
		return "", nil
	}

	var conditions []string
	var args []interface{}

	if q.RunID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, q.RunID)
	}
	if q.MinTick != nil {
		conditions = append(conditions, "tick >= ?")
		args = append(args, *q.MinTick)
	}
	if q.MaxTick != nil {
		conditions = append(conditions, "tick <= ?")
		args = append(args, *q.MaxTick)
	}
	if q.Before != nil {
		conditions = append(conditions, "recorded_at < ?")
		args = append(args, *q.Before)
	}

	whereClause := ""
	for i, condition := range conditions {
		if i > 0 {
			whereClause += " AND "
		}
		whereClause += condition
	}
	return whereClause, args
}

// scanTickRow scans a database row into a TickRecord.
func scanTickRow(rows *sql.Rows) (*results.TickRecord, error) {
	var rec results.TickRecord
	var durationUs int64

	err := rows.Scan(
		&rec.RunID, &rec.Tick, &rec.RecordedAt,
		&rec.AgentCount, &rec.TasksCompleted, &rec.TasksRemaining, &rec.AvgKnowledge, &rec.AvgPerceived,
		&rec.PsychSafety, &rec.CollaborationFactor,
		&rec.EffectsApplied, &rec.EffectsSuperseded, &rec.Evaluations, &rec.EvalErrors, &rec.Events, &rec.Changed,
		&durationUs,
	)
	if err != nil {
		return nil, err
	}

	rec.Duration = time.Duration(durationUs) * time.Microsecond
	return &rec, nil
}
