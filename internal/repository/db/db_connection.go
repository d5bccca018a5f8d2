package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// pragmas applied to every new connection pool, in order.
var pragmas = []string{
	"PRAGMA journal_mode = WAL;",
	"PRAGMA foreign_keys = ON;",
	"PRAGMA busy_timeout = 5000;",
}

// InitDB opens (or creates) the SQLite file at path and ensures the oven
// tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// one writer: the event loop persists every snapshot
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

const schemaOvenState = `
CREATE TABLE IF NOT EXISTS oven_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    state TEXT NOT NULL,
    time_left INTEGER NOT NULL CHECK (time_left >= 0),
    door_open BOOLEAN NOT NULL,
    food TEXT,
    display TEXT NOT NULL,
    panel TEXT NOT NULL,
    can_start BOOLEAN NOT NULL,
    start_ready BOOLEAN NOT NULL,
    angle INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaOperators = `
CREATE TABLE IF NOT EXISTS operators (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`

// operator_id is NULL for events raised by the timer.
const schemaOvenEvents = `
CREATE TABLE IF NOT EXISTS oven_events (
    id TEXT PRIMARY KEY,
    occurred_at TIMESTAMP NOT NULL,
    type TEXT NOT NULL,
    message TEXT NOT NULL,
    operator_id INTEGER REFERENCES operators (id) ON DELETE SET NULL,
    operator TEXT,
    meta TEXT
);
`

const indexOvenEventsTime = `
CREATE INDEX IF NOT EXISTS idx_oven_events_occurred_at ON oven_events (occurred_at);
`

const indexOvenEventsOperator = `
CREATE INDEX IF NOT EXISTS idx_oven_events_operator ON oven_events (operator);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after Commit
	}()

	for i, stmt := range []string{
		schemaOvenState,
		schemaOperators,
		schemaOvenEvents,
		indexOvenEventsTime,
		indexOvenEventsOperator,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
