// Package history journals script runs to a SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusOK        = "ok"
	StatusFault     = "fault"
	StatusCancelled = "cancelled"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	script      TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at);
`

// timeLayout is fixed-width so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one recorded run.
type Entry struct {
	ID         string
	Script     string
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
	Status     string
	Error      string
}

// Duration returns how long the run took, or zero while it is running.
func (e Entry) Duration() time.Duration {
	if e.FinishedAt.IsZero() {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}

// Store is a run journal backed by SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the journal at path. Use ":memory:" for a
// throwaway journal.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Begin records the start of a run of script.
func (s *Store) Begin(script string) (Entry, error) {
	e := Entry{
		ID:        uuid.New().String(),
		Script:    script,
		StartedAt: s.now().UTC(),
		Status:    StatusRunning,
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (id, script, started_at, status) VALUES (?, ?, ?, ?)`,
		e.ID, e.Script, e.StartedAt.Format(timeLayout), e.Status,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to record run: %w", err)
	}
	return e, nil
}

// Finish records the outcome of run id. A nil err is ok, a context error
// is cancelled and anything else is a fault.
func (s *Store) Finish(id string, runErr error) error {
	status, msg := StatusOK, ""
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		status, msg = StatusCancelled, runErr.Error()
	default:
		status, msg = StatusFault, runErr.Error()
	}

	res, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, status = ?, error = ? WHERE id = ?`,
		s.now().UTC().Format(timeLayout), status, msg, id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// List returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT id, script, started_at, finished_at, status, error
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Script, &started, &finished, &e.Status, &e.Error); err != nil {
			return nil, fmt.Errorf("failed to read run: %w", err)
		}
		if e.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("bad start time for run %s: %w", e.ID, err)
		}
		if finished.Valid {
			if e.FinishedAt, err = time.Parse(timeLayout, finished.String); err != nil {
				return nil, fmt.Errorf("bad finish time for run %s: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
