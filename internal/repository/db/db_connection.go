package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Single writer: the control loop.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Fail fast if the DB cannot be reached
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

const schemaAlarmLimits = `
CREATE TABLE IF NOT EXISTS alarm_limits (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    high_temp REAL NOT NULL,
    low_temp REAL NOT NULL,
    high_humid REAL NOT NULL,
    low_humid REAL NOT NULL,
    high_press REAL NOT NULL,
    low_press REAL NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaAlarmEvents = `
CREATE TABLE IF NOT EXISTS alarm_events (
    id TEXT PRIMARY KEY,
    occurred_at TIMESTAMP NOT NULL,
    code TEXT NOT NULL,
    value REAL NOT NULL
);
`

const indexAlarmEventsTime = `
CREATE INDEX IF NOT EXISTS idx_alarm_events_occurred_at ON alarm_events (occurred_at);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaAlarmLimits,
		schemaAlarmEvents,
		indexAlarmEventsTime,
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
