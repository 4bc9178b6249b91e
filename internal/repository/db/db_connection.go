package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// InitDB opens or creates the SQLite history database and ensures tables exist.
// Use ":memory:" for a throwaway database.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// One writer keeps appends totally ordered and makes :memory: a single database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
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

var pragmas = []string{
	"PRAGMA journal_mode = WAL;",
	"PRAGMA foreign_keys = ON;",
	"PRAGMA busy_timeout = 5000;",
}

// Timestamps are unix nanoseconds so ordering is numeric. Numbers are
// thousandths so sums are exact.
const schemaReadings = `
CREATE TABLE IF NOT EXISTS readings (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT UNIQUE NOT NULL,
    kind TEXT NOT NULL,
    topic TEXT NOT NULL,
    num_milli INTEGER,
    txt TEXT,
    field_length INTEGER,
    field_width INTEGER,
    motor_speed INTEGER,
    observed_at INTEGER NOT NULL
);
`

const indexReadings = `CREATE INDEX IF NOT EXISTS idx_readings_kind_observed ON readings (kind, observed_at);`

const schemaCoopStats = `
CREATE TABLE IF NOT EXISTS coop_stats (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT UNIQUE NOT NULL,
    bird_count INTEGER NOT NULL CHECK (bird_count >= 0),
    egg_count INTEGER NOT NULL CHECK (egg_count >= 0),
    ailing_bird_count INTEGER NOT NULL CHECK (ailing_bird_count >= 0),
    recorded_at INTEGER NOT NULL
);
`

const schemaSalesLogs = `
CREATE TABLE IF NOT EXISTS sales_logs (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT UNIQUE NOT NULL,
    birds_sold INTEGER NOT NULL CHECK (birds_sold >= 0),
    eggs_sold INTEGER NOT NULL CHECK (eggs_sold >= 0),
    recorded_at INTEGER NOT NULL
);
`

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
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
		schemaReadings,
		indexReadings,
		schemaCoopStats,
		schemaSalesLogs,
		schemaUsers,
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
