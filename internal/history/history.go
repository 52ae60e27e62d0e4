// Package history persists the outcome of executed runs in a local SQLite
// database so `macapps history` / `macprefs history` can show what past
// invocations did. History is best-effort: recording failures are reported
// as warnings by callers, never as run failures.
package history

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Run is one recorded tool invocation.
type Run struct {
	ID        string
	Tool      string
	StartedAt time.Time
	Total     int
	Succeeded int
}

// ActionRecord is one action outcome within a run.
type ActionRecord struct {
	Action string
	OK     bool
	Detail string
}

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// DefaultDataDir returns the per-user data directory for the history DB.
func DefaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "Library", "Application Support", "macsetup")
	}
	return "macsetup-data"
}

// Open opens (or creates) the history database in dataDir and applies
// pending migrations. Pass ":memory:" for an in-memory database (tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "macsetup.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Single connection avoids "database is locked" with the pure-Go driver.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores one invocation and its per-action outcomes.
func (s *Store) RecordRun(tool string, startedAt time.Time, actions []ActionRecord) (string, error) {
	id := uuid.New().String()
	succeeded := 0
	for _, a := range actions {
		if a.OK {
			succeeded++
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, tool, started_at, total, succeeded) VALUES (?, ?, ?, ?, ?)`,
		id, tool, startedAt.UTC().Format(time.RFC3339), len(actions), succeeded,
	); err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	for i, a := range actions {
		if _, err := tx.Exec(
			`INSERT INTO run_actions (run_id, position, action, ok, detail) VALUES (?, ?, ?, ?, ?)`,
			id, i, a.Action, boolToInt(a.OK), a.Detail,
		); err != nil {
			return "", fmt.Errorf("inserting action %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// RecentRuns returns up to limit runs for the named tool, newest first.
func (s *Store) RecentRuns(tool string, limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, tool, started_at, total, succeeded FROM runs
		 WHERE tool = ? ORDER BY started_at DESC, id LIMIT ?`, tool, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &r.Tool, &started, &r.Total, &r.Succeeded); err != nil {
			return nil, err
		}
		if r.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("parsing started_at %q: %w", started, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunActions returns a run's outcomes in execution order.
func (s *Store) RunActions(runID string) ([]ActionRecord, error) {
	rows, err := s.db.Query(
		`SELECT action, ok, detail FROM run_actions WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []ActionRecord
	for rows.Next() {
		var a ActionRecord
		var ok int
		if err := rows.Scan(&a.Action, &ok, &a.Detail); err != nil {
			return nil, err
		}
		a.OK = ok != 0
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// migrate applies embedded SQL migrations that haven't run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

func parseMigrationVersion(name string) (int, error) {
	base := strings.TrimSuffix(name, ".sql")
	idx := strings.IndexByte(base, '_')
	if idx < 0 {
		idx = len(base)
	}
	v, err := strconv.Atoi(base[:idx])
	if err != nil {
		return 0, fmt.Errorf("migration %q has no numeric prefix: %w", name, err)
	}
	return v, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
