// Package history persists analysis runs to a local sqlite database so that
// week-over-week trends survive between invocations.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one recorded analysis run.
type Run struct {
	ID           int64
	RunAt        time.Time
	Source       string // export file path
	PeriodStart  string // YYYY-MM-DD
	PeriodEnd    string // YYYY-MM-DD
	DaysTracked  int
	Productivity float64
	Focus        float64
	Combined     int
	TotalHours   float64
	Switches     int
	Loops        int
}

// Store wraps the sqlite run history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  run_at TEXT NOT NULL,
  source TEXT NOT NULL,
  period_start TEXT NOT NULL,
  period_end TEXT NOT NULL,
  days_tracked INTEGER NOT NULL,
  productivity REAL NOT NULL,
  focus REAL NOT NULL,
  combined INTEGER NOT NULL,
  total_hours REAL NOT NULL,
  switches INTEGER NOT NULL,
  loops INTEGER NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a run and returns its id.
func (s *Store) Record(ctx context.Context, r Run) (int64, error) {
	const stmt = `
INSERT INTO runs (run_at, source, period_start, period_end, days_tracked,
  productivity, focus, combined, total_hours, switches, loops)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	res, err := s.db.ExecContext(ctx, stmt,
		r.RunAt.UTC().Format(time.RFC3339), r.Source,
		r.PeriodStart, r.PeriodEnd, r.DaysTracked,
		r.Productivity, r.Focus, r.Combined,
		r.TotalHours, r.Switches, r.Loops)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return id, nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 12
	}
	const stmt = `
SELECT id, run_at, source, period_start, period_end, days_tracked,
  productivity, focus, combined, total_hours, switches, loops
FROM runs ORDER BY run_at DESC, id DESC LIMIT ?
`
	rows, err := s.db.QueryContext(ctx, stmt, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var runAt string
		if err := rows.Scan(&r.ID, &runAt, &r.Source, &r.PeriodStart, &r.PeriodEnd,
			&r.DaysTracked, &r.Productivity, &r.Focus, &r.Combined,
			&r.TotalHours, &r.Switches, &r.Loops); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, runAt); err == nil {
			r.RunAt = t
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
