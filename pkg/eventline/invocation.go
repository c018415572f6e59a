package eventline

// Invocation is the context passed to a handler while it executes. It lets
// the handler piggyback follow-up events that are fully processed, with
// their own fresh handler snapshots, before the main queue advances past the
// event currently being handled.
//
// An Invocation is not safe for concurrent use. Only the handler currently
// executing on the dispatch goroutine may call its methods; the queue's
// single-worker invariant makes further synchronization unnecessary.
type Invocation struct {
	event    Event
	terminal bool
	children []*pendingEvent
}

func newInvocation(evt Event, terminal bool) *Invocation {
	return &Invocation{event: evt, terminal: terminal}
}

// Event returns the event being dispatched.
func (inv *Invocation) Event() Event {
	return inv.event
}

// Piggyback registers a child event to be fully processed before the dispatch
// loop advances. Draining is depth-first: an event piggybacked from within a
// piggybacked event's handler runs before its siblings. The returned future
// follows the same CompletionMode rules as Queue.Enqueue (nil for
// CompleteNone).
//
// Piggybacking onto the terminal ShutDown event fails with ErrTerminalEvent.
func (inv *Invocation) Piggyback(evt Event, mode CompletionMode) (*Future, error) {
	if inv.terminal {
		return nil, ErrTerminalEvent
	}
	if err := validateEvent(evt, mode); err != nil {
		return nil, err
	}
	pe := newPendingEvent(evt, mode)
	inv.children = append(inv.children, pe)
	return pe.future, nil
}

// drain hands off the piggybacked events in registration order and resets the
// list.
func (inv *Invocation) drain() []*pendingEvent {
	children := inv.children
	inv.children = nil
	return children
}
