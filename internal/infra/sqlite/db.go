// Package sqlite implements the domain repository contracts over a
// single SQLite file. WAL mode for concurrent reads and crash-safe
// writes; all upserts are atomic at the storage layer, which is what
// the engine's correctness leans on.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations. It
// satisfies every repository interface in the domain package.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and a 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS organizations (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL,
			username   TEXT NOT NULL DEFAULT '',
			org_id     INTEGER NOT NULL REFERENCES organizations(id),
			join_time  INTEGER NOT NULL,
			leave_time INTEGER,
			edited     BOOLEAN NOT NULL DEFAULT 0,
			edit_count INTEGER NOT NULL DEFAULT 0,
			experience INTEGER NOT NULL DEFAULT 0
		)`,
		// The storage-level authority for "no double check-in":
		// at most one open row per user.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_open
			ON sessions(user_id) WHERE leave_time IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_join ON sessions(join_time)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, join_time)`,

		`CREATE TABLE IF NOT EXISTS seasons (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			theme      TEXT NOT NULL DEFAULT '',
			start_date INTEGER NOT NULL,
			end_date   INTEGER NOT NULL,
			active     BOOLEAN NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS level_titles (
			level          INTEGER PRIMARY KEY,
			title          TEXT NOT NULL,
			category       TEXT NOT NULL,
			min_experience INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS season_ranks (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id       INTEGER NOT NULL,
			username      TEXT NOT NULL DEFAULT '',
			season_id     INTEGER NOT NULL REFERENCES seasons(id),
			experience    INTEGER NOT NULL DEFAULT 0,
			level         INTEGER NOT NULL DEFAULT 1,
			total_seconds INTEGER NOT NULL DEFAULT 0,
			visits        INTEGER NOT NULL DEFAULT 0,
			UNIQUE(user_id, season_id)
		)`,

		`CREATE TABLE IF NOT EXISTS achievements (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id     INTEGER NOT NULL,
			username    TEXT NOT NULL DEFAULT '',
			label       TEXT NOT NULL,
			achieved_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_achievements_user ON achievements(user_id)`,

		`CREATE TABLE IF NOT EXISTS daily_stats (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id       INTEGER NOT NULL,
			username      TEXT NOT NULL DEFAULT '',
			date          TEXT NOT NULL,
			total_seconds INTEGER NOT NULL DEFAULT 0,
			total_trips   INTEGER NOT NULL DEFAULT 0,
			UNIQUE(user_id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_stats_date ON daily_stats(date)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// dayRange returns the unix bounds [start, end) of the day containing t.
func dayRange(t time.Time) (int64, int64) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start.Unix(), start.AddDate(0, 0, 1).Unix()
}

// dateKey formats the day the way daily_stats stores it.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
