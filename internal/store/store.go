package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/sadopc/timetracer/internal/model"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
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

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
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

// statColumns lines up with model.Buckets.
var statColumns = []string{
	"sleep_time", "sleep_night_time", "sleep_day_time",
	"total_exercise_time", "cardio_time", "anaerobic_time",
	"grooming_time", "toilet_time", "gaming_time",
	"study_time", "recreation_time",
}

func statColumnDDL() string {
	var b strings.Builder
	for _, c := range statColumns {
		fmt.Fprintf(&b, "\t\t%-20s INTEGER NOT NULL DEFAULT 0,\n", c)
	}
	return b.String()
}

func (s *Store) migrateV1() error {
	ddl := `
	CREATE TABLE IF NOT EXISTS imports (
		id              TEXT PRIMARY KEY,
		source          TEXT NOT NULL DEFAULT '',
		imported_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		day_count       INTEGER NOT NULL DEFAULT 0,
		activity_count  INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS projects (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,
		parent_id  INTEGER REFERENCES projects(id)
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_name_parent ON projects(name, IFNULL(parent_id, 0));

	CREATE TABLE IF NOT EXISTS days (
		date        TEXT PRIMARY KEY,
		year        INTEGER NOT NULL,
		month       INTEGER NOT NULL,
		status      INTEGER NOT NULL DEFAULT 0,
		exercise    INTEGER NOT NULL DEFAULT 0,
		sleep       INTEGER NOT NULL DEFAULT 0,
		remark      TEXT NOT NULL DEFAULT '',
		getup_time  TEXT,
` + statColumnDDL() + `		import_id   TEXT REFERENCES imports(id)
	);

	CREATE TABLE IF NOT EXISTS activities (
		logical_id  INTEGER PRIMARY KEY,
		start_ts    INTEGER NOT NULL,
		end_ts      INTEGER NOT NULL,
		date        TEXT NOT NULL REFERENCES days(date),
		start_time  TEXT NOT NULL,
		end_time    TEXT NOT NULL,
		project_id  INTEGER NOT NULL REFERENCES projects(id),
		duration    INTEGER NOT NULL DEFAULT 0,
		remark      TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_activities_date    ON activities(date);
	CREATE INDEX IF NOT EXISTS idx_activities_project ON activities(project_id);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/timetracer/timetracer.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "timetracer", "timetracer.db"), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func statsArgs(g model.GeneratedStats) []any {
	args := make([]any, 0, len(model.Buckets))
	for _, b := range model.Buckets {
		args = append(args, g.Get(b))
	}
	return args
}
