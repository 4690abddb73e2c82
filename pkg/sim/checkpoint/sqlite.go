package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"stratum-hq/ganymede/pkg/sim/model"
)

// ErrNotFound is returned when no checkpoint exists for the requested
// run or tick.
var ErrNotFound = errors.New("checkpoint not found")

// SQLiteStoreConfig configures the checkpoint store.
type SQLiteStoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// Keep is how many checkpoints to retain per run. Saving beyond the
	// limit deletes the oldest. 0 means keep all.
	Keep int
}

// SQLiteStore persists model snapshots in SQLite.
// It is safe for concurrent use, though the simulation loop normally
// saves from a single goroutine.
type SQLiteStore struct {
	db     *sql.DB
	config SQLiteStoreConfig
	mu     sync.Mutex

	saveStmt   *sql.Stmt
	loadStmt   *sql.Stmt
	latestStmt *sql.Stmt
}

// NewSQLiteStore opens (or creates) a checkpoint database.
func NewSQLiteStore(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:     db,
		config: cfg,
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}
	return s, nil
}

// initSchema creates the database schema if it doesn't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS checkpoints (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		state TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE INDEX IF NOT EXISTS idx_checkpoints_created_at ON checkpoints(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO checkpoints (run_id, tick, state, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (run_id, tick) DO UPDATE SET
			state = excluded.state,
			created_at = excluded.created_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.loadStmt, err = s.db.Prepare(`
		SELECT state FROM checkpoints
		WHERE run_id = ? AND tick = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load statement: %w", err)
	}

	s.latestStmt, err = s.db.Prepare(`
		SELECT state FROM checkpoints
		WHERE run_id = ?
		ORDER BY tick DESC
		LIMIT 1
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare latest statement: %w", err)
	}

	return nil
}

// Save persists a model snapshot for the given run.
func (s *SQLiteStore) Save(ctx context.Context, runID string, st *model.State) error {
	if runID == "" {
		return fmt.Errorf("run id cannot be empty")
	}
	if st == nil {
		return fmt.Errorf("state cannot be nil")
	}

	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.saveStmt.ExecContext(ctx, runID, st.Tick, string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	if s.config.Keep > 0 {
		_, err = s.db.ExecContext(ctx, `
			DELETE FROM checkpoints
			WHERE run_id = ? AND tick NOT IN (
				SELECT tick FROM checkpoints
				WHERE run_id = ?
				ORDER BY tick DESC
				LIMIT ?
			)
		`, runID, runID, s.config.Keep)
		if err != nil {
			return fmt.Errorf("failed to trim checkpoints: %w", err)
		}
	}
	return nil
}

// Load retrieves the snapshot for a specific run and tick.
// Returns ErrNotFound if no such checkpoint exists.
func (s *SQLiteStore) Load(ctx context.Context, runID string, tick uint64) (*model.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload string
	err := s.loadStmt.QueryRowContext(ctx, runID, tick).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	return unmarshalState(payload)
}

// Latest retrieves the most recent snapshot for a run.
// Returns ErrNotFound if the run has no checkpoints.
func (s *SQLiteStore) Latest(ctx context.Context, runID string) (*model.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload string
	err := s.latestStmt.QueryRowContext(ctx, runID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest checkpoint: %w", err)
	}
	return unmarshalState(payload)
}

// Ticks returns the checkpointed ticks for a run in ascending order.
func (s *SQLiteStore) Ticks(ctx context.Context, runID string) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT tick FROM checkpoints WHERE run_id = ? ORDER BY tick ASC", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var ticks []uint64
	for rows.Next() {
		var tick uint64
		if err := rows.Scan(&tick); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint tick: %w", err)
		}
		ticks = append(ticks, tick)
	}
	return ticks, rows.Err()
}

// DeleteRun removes all checkpoints for a run.
func (s *SQLiteStore) DeleteRun(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM checkpoints WHERE run_id = ?", runID)
	if err != nil {
		return fmt.Errorf("failed to delete checkpoints: %w", err)
	}
	return nil
}

// Close releases database resources.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range []*sql.Stmt{s.saveStmt, s.loadStmt, s.latestStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}

// unmarshalState decodes a JSON snapshot. JSON turns every numeric
// attribute into float64, which the model's numeric accessors accept.
func unmarshalState(payload string) (*model.State, error) {
	var st model.State
	if err := json.Unmarshal([]byte(payload), &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &st, nil
}
