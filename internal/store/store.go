package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type Store struct {
	db  *sql.DB
	loc *time.Location
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLocation sets the zone whose midnights split study time into days.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now, which bounds the still-open sessions in ListProfiles.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string, opts ...Option) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory(opts ...Option) (*Store, error) {
	return New(":memory:", opts...)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Location is the zone used to derive calendar dates.
func (s *Store) Location() *time.Location {
	return s.loc
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS viewers (
		name              TEXT PRIMARY KEY,
		profile_image_url TEXT NOT NULL DEFAULT '',
		first_seen        TEXT NOT NULL,
		last_seen         TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS study_sessions (
		id          TEXT PRIMARY KEY,
		viewer      TEXT NOT NULL REFERENCES viewers(name),
		start_time  TEXT NOT NULL,
		end_time    TEXT,
		duration    INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_open ON study_sessions(viewer) WHERE end_time IS NULL;
	CREATE INDEX IF NOT EXISTS idx_sessions_start ON study_sessions(start_time);

	CREATE TABLE IF NOT EXISTS study_segments (
		session_id  TEXT NOT NULL REFERENCES study_sessions(id),
		viewer      TEXT NOT NULL REFERENCES viewers(name),
		date        TEXT NOT NULL,
		seconds     INTEGER NOT NULL,
		PRIMARY KEY (session_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_segments_viewer_date ON study_segments(viewer, date);

	CREATE TABLE IF NOT EXISTS visit_stamps (
		viewer      TEXT NOT NULL REFERENCES viewers(name),
		date        TEXT NOT NULL,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		PRIMARY KEY (viewer, date)
	);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id           TEXT PRIMARY KEY,
		author       TEXT NOT NULL,
		message      TEXT NOT NULL,
		published_at TEXT NOT NULL,
		kind         TEXT NOT NULL DEFAULT '',
		received_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('users_per_page',       '3'),
		('page_seconds',         '10'),
		('progress_seconds',     '5'),
		('refresh_seconds',      '5'),
		('progress_title',       ''),
		('progress_update_date', ''),
		('progress_total_time',  ''),
		('progress_exam_date',   ''),
		('progress_test_score',  '');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/studyboard/studyboard.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "studyboard", "studyboard.db"), nil
}
