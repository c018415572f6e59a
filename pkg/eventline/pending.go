package eventline

import (
	"fmt"

	"github.com/google/uuid"
)

// CompletionMode controls whether and how a producer observes handler
// failures for one enqueued event.
type CompletionMode int

const (
	// CompleteOrFail fails the returned future if any handler fails,
	// propagating the original error (or a joined aggregate when several
	// handlers fail).
	CompleteOrFail CompletionMode = iota

	// CompleteAlways always resolves the returned future successfully.
	// Handler failures are instead re-dispatched as an *UnhandledError
	// event.
	CompleteAlways

	// CompleteNone returns no future at all: fire-and-forget. Handler
	// failures are still re-dispatched as an *UnhandledError event.
	CompleteNone
)

// valid reports whether m is a defined mode.
func (m CompletionMode) valid() bool {
	return m >= CompleteOrFail && m <= CompleteNone
}

// String returns the mode name.
func (m CompletionMode) String() string {
	switch m {
	case CompleteOrFail:
		return "complete_or_fail"
	case CompleteAlways:
		return "complete_always"
	case CompleteNone:
		return "complete_none"
	default:
		return "unknown"
	}
}

// validateEvent checks producer-supplied input for Enqueue and Piggyback.
func validateEvent(evt Event, mode CompletionMode) error {
	if evt == nil {
		return ErrNilEvent
	}
	switch evt.(type) {
	case ShuttingDown, ShutDown:
		return ErrReservedEvent
	}
	if !mode.valid() {
		return fmt.Errorf("%w: %d", ErrInvalidCompletionMode, int(mode))
	}
	return nil
}

// pendingEvent couples an event with its completion signal on the way through
// the queue. Created at Enqueue or Piggyback time, consumed exactly once by
// the dispatch loop, settled after all handlers and piggybacks finish.
type pendingEvent struct {
	id     string
	event  Event
	mode   CompletionMode
	future *Future // nil in CompleteNone mode
}

func newPendingEvent(evt Event, mode CompletionMode) *pendingEvent {
	pe := &pendingEvent{
		id:    uuid.NewString(),
		event: evt,
		mode:  mode,
	}
	if mode != CompleteNone {
		pe.future = newFuture()
	}
	return pe
}

// settle resolves the completion signal, if any.
func (pe *pendingEvent) settle(err error) {
	if pe.future != nil {
		pe.future.resolve(err)
	}
}
