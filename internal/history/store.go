// Package history persists completed archive jobs to SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eliteGoblin/parcel/internal/config"
	"github.com/eliteGoblin/parcel/internal/domain"
)

// Store manages job-history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	operation TEXT NOT NULL,
	kind TEXT NOT NULL DEFAULT '',
	source_count INTEGER NOT NULL,
	destination TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	started_at INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_started_at ON jobs(started_at DESC);
`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Add records one finished job.
func (s *Store) Add(ctx context.Context, rec domain.JobRecord) error {
	const q = `
INSERT INTO jobs (id, operation, kind, source_count, destination, status, message, started_at, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		rec.ID,
		string(rec.Operation),
		string(rec.Kind),
		rec.SourceCount,
		rec.Destination,
		string(rec.Status),
		rec.Message,
		rec.StartedAt.Unix(),
		rec.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("insert job %s: %w", rec.ID, err)
	}
	return nil
}

// List returns the most recent jobs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]domain.JobRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, operation, kind, source_count, destination, status, message, started_at, duration_ms
FROM jobs ORDER BY started_at DESC, id LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var records []domain.JobRecord
	for rows.Next() {
		var rec domain.JobRecord
		var op, kind, status string
		var startedAt int64
		if err := rows.Scan(&rec.ID, &op, &kind, &rec.SourceCount, &rec.Destination, &status, &rec.Message, &startedAt, &rec.DurationMs); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		rec.Operation = domain.Operation(op)
		rec.Kind = domain.CompressionKind(kind)
		rec.Status = domain.JobStatus(status)
		rec.StartedAt = time.Unix(startedAt, 0)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Ensure Store implements domain.HistoryStore.
var _ domain.HistoryStore = (*Store)(nil)
