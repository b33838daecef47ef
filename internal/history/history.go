// Package history records executed statements in a local SQLite store.
//
// Recording is best-effort: callers log failures and carry on, a broken
// history store never fails the statement that produced the entry.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // sqlite driver
)

// Run is one recorded statement execution.
type Run struct {
	ID        string
	Source    string // "exec", "repl" or "gateway"
	Dialect   string
	SQL       string
	RowCount  int64
	Duration  time.Duration
	Error     string
	StartedAt time.Time
}

// Store persists runs in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the history database at path and runs
// pending migrations. Use ":memory:" for an in-memory store.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create history directory: %w", err)
			}
		}
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the history database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string { return s.path }

// DB exposes the underlying connection for inspection tooling.
func (s *Store) DB() *sql.DB { return s.db }

// Record inserts a run. A missing ID is filled with a fresh UUID and a
// zero StartedAt with the current time; the stored run is returned.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if s.db == nil {
		return run, fmt.Errorf("history database not opened")
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	var errMsg *string
	if run.Error != "" {
		errMsg = &run.Error
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, source, dialect, sql_text, row_count, duration_ms, error, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Dialect, run.SQL, run.RowCount,
		run.Duration.Milliseconds(), errMsg, run.StartedAt,
	)
	if err != nil {
		return run, fmt.Errorf("failed to record run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first. A non-positive limit
// returns up to 50 runs.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("history database not opened")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, dialect, sql_text, row_count, duration_ms, error, started_at
		FROM runs
		ORDER BY started_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get retrieves a single run by ID. A unique ID prefix is accepted, so the
// short form shown by list views addresses a run directly.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	if s.db == nil {
		return Run{}, fmt.Errorf("history database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, dialect, sql_text, row_count, duration_ms, error, started_at
		FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' LIMIT 2`, id, likePrefix(id))
	if err != nil {
		return Run{}, err
	}
	defer func() { _ = rows.Close() }()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}

	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("run not found: %s", id)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("run ID %q is ambiguous", id)
	}
}

// likePrefix escapes LIKE metacharacters so an ID prefix matches literally.
func likePrefix(id string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(id) + "%"
}

// Clear deletes all recorded runs and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("history database not opened")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run        Run
		durationMS int64
		errMsg     sql.NullString
	)
	err := sc.Scan(&run.ID, &run.Source, &run.Dialect, &run.SQL,
		&run.RowCount, &durationMS, &errMsg, &run.StartedAt)
	if err != nil {
		return Run{}, err
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	return run, nil
}
