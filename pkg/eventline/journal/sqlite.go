package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteJournal persists failure records to SQLite.
// It is suitable for single-process production use.
type SQLiteJournal struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteJournal creates a new SQLite failure journal.
// The path should be a file path (e.g., "./failures.db") or ":memory:" for
// testing.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent and
	// serializes writers.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS failures (
			id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL,
			event_name TEXT NOT NULL,
			handler TEXT NOT NULL,
			error TEXT NOT NULL,
			occurred_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_failures_event_name
		ON failures(event_name, occurred_at)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

// Record persists a failure record.
func (j *SQLiteJournal) Record(ctx context.Context, rec *FailureRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrJournalClosed
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO failures (id, event_id, event_name, handler, error, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.EventID, rec.EventName, rec.Handler, rec.Error,
		rec.OccurredAt.UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("record failure: %w", err)
	}
	return nil
}

// List returns the most recent records, newest first.
func (j *SQLiteJournal) List(ctx context.Context, limit int) ([]*FailureRecord, error) {
	return j.query(ctx, `
		SELECT id, event_id, event_name, handler, error, occurred_at
		FROM failures
		ORDER BY occurred_at DESC
		LIMIT ?
	`, normalizeLimit(limit))
}

// ListByEvent returns records for a specific event name, newest first.
func (j *SQLiteJournal) ListByEvent(ctx context.Context, eventName string, limit int) ([]*FailureRecord, error) {
	return j.query(ctx, `
		SELECT id, event_id, event_name, handler, error, occurred_at
		FROM failures
		WHERE event_name = ?
		ORDER BY occurred_at DESC
		LIMIT ?
	`, eventName, normalizeLimit(limit))
}

// query runs a SELECT over the failures table and scans the rows.
func (j *SQLiteJournal) query(ctx context.Context, stmt string, args ...any) ([]*FailureRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return nil, ErrJournalClosed
	}

	rows, err := j.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list failures: %w", err)
	}
	defer rows.Close()

	var records []*FailureRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failures: %w", err)
	}
	return records, nil
}

// Get retrieves a record by ID.
func (j *SQLiteJournal) Get(ctx context.Context, id string) (*FailureRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return nil, ErrJournalClosed
	}

	row := j.db.QueryRowContext(ctx, `
		SELECT id, event_id, event_name, handler, error, occurred_at
		FROM failures
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Count returns the number of stored records.
func (j *SQLiteJournal) Count(ctx context.Context) (int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return 0, ErrJournalClosed
	}

	var count int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM failures`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count failures: %w", err)
	}
	return count, nil
}

// Prune removes records older than the cutoff.
func (j *SQLiteJournal) Prune(ctx context.Context, before time.Time) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return 0, ErrJournalClosed
	}

	res, err := j.db.ExecContext(ctx, `
		DELETE FROM failures WHERE occurred_at < ?
	`, before.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("prune failures: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune failures: %w", err)
	}
	return int(n), nil
}

// Close closes the underlying database.
func (j *SQLiteJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true
	return j.db.Close()
}

// scanner abstracts *sql.Row and *sql.Rows for scanRecord.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*FailureRecord, error) {
	var rec FailureRecord
	var occurredAt string
	if err := s.Scan(&rec.ID, &rec.EventID, &rec.EventName, &rec.Handler, &rec.Error, &occurredAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan failure record: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, occurredAt)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp: %w", err)
	}
	rec.OccurredAt = ts
	return &rec, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return -1 // SQLite: no limit
	}
	return limit
}

// Compile-time check that SQLiteJournal implements Journal.
var _ Journal = (*SQLiteJournal)(nil)
