package eventline

import (
	"errors"
	"fmt"
)

// Sentinel errors for producer-facing calls. These surface synchronously at
// the call site.
var (
	// ErrNilEvent indicates Enqueue or Piggyback was called with a nil event.
	ErrNilEvent = errors.New("event cannot be nil")

	// ErrNilHandler indicates Subscribe was called with a nil handler.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrInvalidCompletionMode indicates an undefined CompletionMode value.
	ErrInvalidCompletionMode = errors.New("invalid completion mode")

	// ErrReservedEvent indicates an attempt to enqueue or piggyback one of
	// the queue-managed shutdown notices directly. Use BeginShutdown or
	// RequestShutdown instead.
	ErrReservedEvent = errors.New("shutdown notices are managed by the queue")
)

// Sentinel errors for lifecycle violations.
var (
	// ErrQueueShutDown indicates an operation on a queue whose dispatch
	// loop has already stopped.
	ErrQueueShutDown = errors.New("event queue has shut down")

	// ErrTerminalEvent indicates an attempt to piggyback onto the terminal
	// ShutDown event, which accepts no follow-up work.
	ErrTerminalEvent = errors.New("cannot piggyback onto the terminal shut-down event")
)

// HandlerError wraps an error returned (or a panic raised) by a subscriber
// handler while processing one event. Handler failures never abort the
// dispatch loop; they are accumulated and routed per the event's
// CompletionMode.
type HandlerError struct {
	// Event is the event being dispatched when the handler failed.
	Event Event

	// Handler is the concrete handler type name.
	Handler string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s failed on %s: %v", e.Handler, e.Event.EventName(), e.Err)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// joinErrors collapses an error list: nil for none, the error itself for one,
// errors.Join for several. A single failure is propagated unwrapped so the
// producer sees the original error.
func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.Join(errs...)
	}
}
