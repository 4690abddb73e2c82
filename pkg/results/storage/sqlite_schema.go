package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the results database schema.
const Schema = `
-- Simulation runs
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    description TEXT,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    agents INTEGER NOT NULL,
    seed INTEGER NOT NULL,
    ticks INTEGER NOT NULL DEFAULT 0
);

-- Per-tick outcomes
CREATE TABLE IF NOT EXISTS ticks (
    run_id TEXT NOT NULL,
    tick INTEGER NOT NULL,
    recorded_at TIMESTAMP NOT NULL,

    -- Population aggregates
    agent_count INTEGER NOT NULL,
    tasks_completed REAL NOT NULL,
    tasks_remaining REAL NOT NULL,
    avg_knowledge REAL NOT NULL,
    avg_perceived_safety REAL NOT NULL,

    -- Model globals
    psychological_safety REAL NOT NULL,
    collaboration_factor REAL NOT NULL,

    -- Engine activity
    effects_applied INTEGER NOT NULL,
    effects_superseded INTEGER NOT NULL,
    evaluations INTEGER NOT NULL,
    eval_errors INTEGER NOT NULL,
    events INTEGER NOT NULL,
    changed BOOLEAN NOT NULL,

    -- Wall-clock tick duration in microseconds
    duration INTEGER NOT NULL,

    PRIMARY KEY (run_id, tick)
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_ticks_run_id ON ticks(run_id);
CREATE INDEX IF NOT EXISTS idx_ticks_recorded_at ON ticks(recorded_at);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_finished_at ON runs(finished_at);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
