package eventline

import (
	"context"
	"reflect"
	"sync"
)

// Event is an immutable occurrence dispatched through a Queue. Events are
// matched to subscriptions by their dynamic type (see Kind), so the interface
// itself stays minimal: a name for logs and journal records.
type Event interface {
	// EventName returns a short, stable name for the event, used in logs,
	// spans, and failure records.
	EventName() string
}

// Handler receives events matching a subscription.
//
// Handlers always run sequentially on the queue's single dispatch goroutine;
// no two handler invocations ever overlap, so handlers may mutate shared
// state (including subscribing or unsubscribing other handlers) without
// additional locking. A slow handler delays all others.
type Handler interface {
	// HandleEvent processes evt. The Invocation accepts piggybacked
	// follow-up events that are fully drained before the main queue
	// advances. A returned error never stops dispatch of the remaining
	// handlers; errors are routed per the event's CompletionMode.
	HandleEvent(ctx context.Context, inv *Invocation, evt Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, inv *Invocation, evt Event) error

// HandleEvent implements Handler.
func (f HandlerFunc) HandleEvent(ctx context.Context, inv *Invocation, evt Event) error {
	return f(ctx, inv, evt)
}

// Kind identifies the set of events a subscription accepts. An event matches
// a Kind when its dynamic type is assignable to the Kind's type, so a Kind
// built from an interface type matches every implementation. KindOf[Event]()
// matches all events.
type Kind struct {
	t reflect.Type
}

// KindOf returns the Kind for the static type E.
func KindOf[E Event]() Kind {
	return Kind{t: reflect.TypeFor[E]()}
}

// Matches reports whether evt is assignable to this kind.
func (k Kind) Matches(evt Event) bool {
	if k.t == nil || evt == nil {
		return false
	}
	return reflect.TypeOf(evt).AssignableTo(k.t)
}

// String returns the kind's type name.
func (k Kind) String() string {
	if k.t == nil {
		return "<none>"
	}
	return k.t.String()
}

// ShuttingDown is the phase-1 shutdown notice. The queue dispatches it
// exactly once, before it stops accepting new work, so subscribers can react
// to the impending shutdown and piggyback cleanup events that are still fully
// processed.
type ShuttingDown struct{}

// EventName implements Event.
func (ShuttingDown) EventName() string { return "eventline.shutting_down" }

// ShutDown is the phase-2 terminal notice. It is always the last event the
// queue processes; piggybacking onto it fails with ErrTerminalEvent.
type ShutDown struct{}

// EventName implements Event.
func (ShutDown) EventName() string { return "eventline.shut_down" }

// ShutDownRequest asks the queue to begin shutdown. Subscribers may Veto the
// request while it is being dispatched; an un-vetoed request triggers
// BeginShutdown after its handlers finish.
type ShutDownRequest struct {
	mu     sync.Mutex
	vetoed bool
}

// NewShutDownRequest returns a request that permits shutdown until vetoed.
func NewShutDownRequest() *ShutDownRequest {
	return &ShutDownRequest{}
}

// EventName implements Event.
func (*ShutDownRequest) EventName() string { return "eventline.shutdown_request" }

// Veto marks the request as rejected; the queue will not begin shutdown for
// this request.
func (r *ShutDownRequest) Veto() {
	r.mu.Lock()
	r.vetoed = true
	r.mu.Unlock()
}

// CanShutDown reports whether no subscriber has vetoed the request.
func (r *ShutDownRequest) CanShutDown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.vetoed
}

// UnhandledError wraps handler failures from some other event. When an
// event's CompletionMode hides failures from the producer (CompleteAlways,
// CompleteNone), the queue synthesizes an UnhandledError and dispatches it
// fire-and-forget, so subscribers can observe failures globally.
type UnhandledError struct {
	// Event is the event whose handlers failed.
	Event Event

	// Errs holds one *HandlerError per failing handler, in invocation order.
	Errs []error
}

// EventName implements Event.
func (*UnhandledError) EventName() string { return "eventline.unhandled_error" }

// Err returns the failures joined into a single error.
func (e *UnhandledError) Err() error {
	return joinErrors(e.Errs)
}
