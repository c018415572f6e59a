package journal

import (
	"context"
	"sync"
	"time"
)

// MemoryJournal is an in-memory Journal implementation.
// Suitable for testing and single-instance deployments.
type MemoryJournal struct {
	mu      sync.RWMutex
	records []*FailureRecord // insertion order, oldest first
	byID    map[string]*FailureRecord
	cfg     Config
	closed  bool
}

// NewMemoryJournal creates a new in-memory journal.
func NewMemoryJournal(cfg Config) *MemoryJournal {
	if cfg.MaxRecords <= 0 {
		cfg.MaxRecords = DefaultConfig.MaxRecords
	}
	return &MemoryJournal{
		byID: make(map[string]*FailureRecord),
		cfg:  cfg,
	}
}

// Record persists a failure record, evicting the oldest when full.
func (j *MemoryJournal) Record(_ context.Context, rec *FailureRecord) error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return ErrJournalClosed
	}

	if len(j.records) >= j.cfg.MaxRecords {
		oldest := j.records[0]
		j.records = j.records[1:]
		delete(j.byID, oldest.ID)
	}
	j.records = append(j.records, rec)
	j.byID[rec.ID] = rec
	j.mu.Unlock()

	if j.cfg.OnRecord != nil {
		j.cfg.OnRecord(rec)
	}
	return nil
}

// List returns the most recent records, newest first.
func (j *MemoryJournal) List(_ context.Context, limit int) ([]*FailureRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return nil, ErrJournalClosed
	}
	return j.collect(limit, func(*FailureRecord) bool { return true }), nil
}

// ListByEvent returns records for a specific event name, newest first.
func (j *MemoryJournal) ListByEvent(_ context.Context, eventName string, limit int) ([]*FailureRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return nil, ErrJournalClosed
	}
	return j.collect(limit, func(r *FailureRecord) bool { return r.EventName == eventName }), nil
}

// collect walks records newest-first applying the filter. Callers hold the
// lock.
func (j *MemoryJournal) collect(limit int, keep func(*FailureRecord) bool) []*FailureRecord {
	out := make([]*FailureRecord, 0, max(limit, 0))
	for i := len(j.records) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		if keep(j.records[i]) {
			out = append(out, j.records[i])
		}
	}
	return out
}

// Get retrieves a record by ID.
func (j *MemoryJournal) Get(_ context.Context, id string) (*FailureRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return nil, ErrJournalClosed
	}
	rec, ok := j.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Count returns the number of stored records.
func (j *MemoryJournal) Count(_ context.Context) (int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return 0, ErrJournalClosed
	}
	return len(j.records), nil
}

// Prune removes records older than the cutoff.
func (j *MemoryJournal) Prune(_ context.Context, before time.Time) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return 0, ErrJournalClosed
	}

	kept := j.records[:0]
	pruned := 0
	for _, rec := range j.records {
		if rec.OccurredAt.Before(before) {
			delete(j.byID, rec.ID)
			pruned++
			continue
		}
		kept = append(kept, rec)
	}
	for i := len(kept); i < len(j.records); i++ {
		j.records[i] = nil
	}
	j.records = kept
	return pruned, nil
}

// Close marks the journal closed.
func (j *MemoryJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closed = true
	return nil
}

// Compile-time check that MemoryJournal implements Journal.
var _ Journal = (*MemoryJournal)(nil)
