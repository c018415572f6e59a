// Package journal provides durable records of handler failures.
//
// The dispatch loop never lets a handler failure unwind the queue; depending
// on an event's completion mode the failure either fails the producer's
// future or is re-dispatched as an unhandled-error event. A Journal is the
// third observation channel: every failure is written down, so that even
// fire-and-forget events leave a trace operators can inspect after the fact.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// FailureRecord captures one handler failure while processing one event.
type FailureRecord struct {
	// ID uniquely identifies this record.
	ID string `json:"id"`

	// EventID is the queue-assigned ID of the event being dispatched.
	EventID string `json:"event_id"`

	// EventName is the event's EventName().
	EventName string `json:"event_name"`

	// Handler is the concrete handler type that failed.
	Handler string `json:"handler"`

	// Error is the failure message.
	Error string `json:"error"`

	// OccurredAt is when the failure was recorded.
	OccurredAt time.Time `json:"occurred_at"`
}

// NewFailureRecord creates a FailureRecord from a handler error.
func NewFailureRecord(eventID, eventName, handler string, err error) *FailureRecord {
	return &FailureRecord{
		ID:         uuid.NewString(),
		EventID:    eventID,
		EventName:  eventName,
		Handler:    handler,
		Error:      err.Error(),
		OccurredAt: time.Now().UTC(),
	}
}

// Journal stores failure records. Implementations must be safe for use from
// the single dispatch goroutine concurrently with reader goroutines.
type Journal interface {
	// Record persists a failure record.
	Record(ctx context.Context, rec *FailureRecord) error

	// List returns the most recent records, newest first, up to limit.
	List(ctx context.Context, limit int) ([]*FailureRecord, error)

	// ListByEvent returns records for a specific event name, newest first.
	ListByEvent(ctx context.Context, eventName string, limit int) ([]*FailureRecord, error)

	// Get retrieves a record by ID.
	Get(ctx context.Context, id string) (*FailureRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Prune removes records that occurred before the cutoff, returning how
	// many were removed.
	Prune(ctx context.Context, before time.Time) (int, error)

	// Close releases the journal's resources.
	Close() error
}

// ErrNotFound is returned when a record cannot be found.
var ErrNotFound = errors.New("failure record not found")

// ErrJournalClosed is returned for operations on a closed journal.
var ErrJournalClosed = errors.New("journal is closed")

// Config configures journal behavior.
type Config struct {
	// MaxRecords limits stored records; the oldest are dropped first.
	// Default: 10000
	MaxRecords int

	// OnRecord is called after a record is persisted.
	OnRecord func(*FailureRecord)
}

// DefaultConfig provides reasonable defaults.
var DefaultConfig = Config{
	MaxRecords: 10000,
}
