package eventline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"weak"

	"github.com/veliand/eventline/pkg/eventline/journal"
	"github.com/veliand/eventline/pkg/eventline/observability"
)

// State reports the dispatch loop's lifecycle phase.
type State int32

const (
	// StateRunning accepts and dispatches events.
	StateRunning State = iota

	// StateDraining means ShuttingDown has been fully handled: producer
	// enqueues are no longer accepted and the terminal ShutDown event is
	// queued.
	StateDraining

	// StateStopped means ShutDown has been fully handled and the worker
	// has exited.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Scheduler starts the queue's dispatch worker. The default runs the worker
// on a new goroutine; supply a custom scheduler to run it on a managed pool.
// Do not use a scheduler tied to a UI thread: event handling would serialize
// behind UI work and vice versa.
type Scheduler func(task func())

// queueConfig holds construction options for a Queue.
type queueConfig struct {
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	spans     observability.SpanManager
	journal   journal.Journal
	scheduler Scheduler
	baseCtx   context.Context
}

func defaultQueueConfig() queueConfig {
	return queueConfig{
		metrics:   observability.NoopMetrics{},
		spans:     observability.NoopSpanManager{},
		scheduler: func(task func()) { go task() },
		baseCtx:   context.Background(),
	}
}

// Option configures a Queue at construction.
type Option func(*queueConfig)

// WithLogger enables structured logging for queue lifecycle and handler
// failures. Default: no logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *queueConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder. Default: no-op.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *queueConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing sets the span manager. Default: no-op.
func WithTracing(s observability.SpanManager) Option {
	return func(c *queueConfig) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithJournal persists every handler failure to j, regardless of the event's
// completion mode. Default: no journal.
func WithJournal(j journal.Journal) Option {
	return func(c *queueConfig) {
		c.journal = j
	}
}

// WithScheduler sets how the dispatch worker is started. Default: a new
// goroutine.
func WithScheduler(s Scheduler) Option {
	return func(c *queueConfig) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithBaseContext sets the context handlers observe. Default:
// context.Background(). The context does not cancel the queue; shutdown is
// cooperative via BeginShutdown.
func WithBaseContext(ctx context.Context) Option {
	return func(c *queueConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}

// Queue is a single-consumer, multi-producer event dispatcher. Producers
// enqueue events from any goroutine; one dedicated worker dispatches them in
// FIFO order, draining piggybacked events depth-first before advancing.
//
// Subscriptions hold only weak references: a subscriber kept alive by
// nothing but its registration is pruned once collected.
type Queue struct {
	cfg      queueConfig
	pending  *fifo
	registry *subscriberRegistry

	state        atomic.Int32
	shuttingDown atomic.Bool
	done         *Future
}

// New creates a queue and starts its dispatch worker.
func New(opts ...Option) *Queue {
	cfg := defaultQueueConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	q := &Queue{
		cfg:      cfg,
		pending:  newFifo(),
		registry: newSubscriberRegistry(),
		done:     newFuture(),
	}
	cfg.scheduler(q.run)
	return q
}

// Subscribe registers h for events assignable to kind. The registry holds
// only a weak reference to h; callers must keep the handler reachable for as
// long as it should receive events. Subscribing the same handler to the same
// kind twice is a no-op after the first call.
//
// Returns ErrQueueShutDown once the queue has fully stopped.
func Subscribe[T any, H interface {
	Handler
	*T
}](q *Queue, kind Kind, h H) error {
	if h == nil {
		return ErrNilHandler
	}
	if q.State() == StateStopped {
		return ErrQueueShutDown
	}

	ref := weak.Make((*T)(h))
	resolve := func() (Handler, bool) {
		p := ref.Value()
		if p == nil {
			return nil, false
		}
		return Handler(H(p)), true
	}
	q.registry.add(kind, Handler(h), resolve, fmt.Sprintf("%T", h))
	return nil
}

// Unsubscribe removes h's subscription for kind, if one exists. Removing a
// handler mid-dispatch does not retract it from an already-taken snapshot:
// it may run once more for the event currently being dispatched.
func Unsubscribe[T any, H interface {
	Handler
	*T
}](q *Queue, kind Kind, h H) {
	if h == nil {
		return
	}
	q.registry.remove(kind, Handler(h))
}

// Enqueue queues evt for dispatch and returns its completion future (nil for
// CompleteNone). Safe to call from any goroutine; never blocks.
//
// Once shutdown has begun accepting no more work, the event is dropped and an
// already-completed future (or nil) is returned instead of an error, so
// producers are never surprised by failures purely due to shutdown timing.
func (q *Queue) Enqueue(evt Event, mode CompletionMode) (*Future, error) {
	if err := validateEvent(evt, mode); err != nil {
		return nil, err
	}

	pe := newPendingEvent(evt, mode)
	if !q.pending.push(pe) {
		pe.settle(nil)
		return pe.future, nil
	}
	q.cfg.metrics.RecordQueueDepth(q.cfg.baseCtx, 1)
	return pe.future, nil
}

// BeginShutdown starts the two-phase shutdown. Idempotent and safe from any
// goroutine: only the first call enqueues the ShuttingDown notice. The queue
// keeps dispatching previously enqueued work, then ShuttingDown, then any
// cleanup its handlers piggyback, then the terminal ShutDown event, then the
// worker stops.
func (q *Queue) BeginShutdown() {
	if !q.shuttingDown.CompareAndSwap(false, true) {
		return
	}
	observability.LogShutdownBegun(q.cfg.logger)
	if q.pending.push(newPendingEvent(ShuttingDown{}, CompleteNone)) {
		q.cfg.metrics.RecordQueueDepth(q.cfg.baseCtx, 1)
	}
}

// RequestShutdown enqueues a cancellable *ShutDownRequest. Subscribers may
// Veto it while it is dispatched; an un-vetoed request triggers
// BeginShutdown. Reports whether the request was queued; requests are
// silently skipped once shutdown has already begun.
func (q *Queue) RequestShutdown() bool {
	if q.shuttingDown.Load() {
		return false
	}
	accepted := q.pending.push(newPendingEvent(NewShutDownRequest(), CompleteNone))
	if accepted {
		q.cfg.metrics.RecordQueueDepth(q.cfg.baseCtx, 1)
	}
	return accepted
}

// Done returns a future that resolves only when the worker has fully stopped,
// after the terminal ShutDown event is handled. Attach continuations to know
// when the queue is drained and inert.
func (q *Queue) Done() *Future {
	return q.done
}

// State returns the dispatch loop's current phase.
func (q *Queue) State() State {
	return State(q.state.Load())
}

// Len returns the number of events waiting in the main queue. Piggybacked
// events are not counted; they never enter the main queue.
func (q *Queue) Len() int {
	return q.pending.len()
}

// NumSubscriptions returns the number of live subscriptions, pruning any
// whose subscribers have been collected.
func (q *Queue) NumSubscriptions() int {
	return q.registry.size()
}
