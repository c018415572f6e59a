/*
Package eventline provides a single-consumer, multi-producer event queue with
weak-reference subscriptions, piggybacked follow-up events, and an orderly
two-phase shutdown.

# Overview

A Queue owns one dedicated dispatch worker. Producers enqueue events from any
goroutine; the worker processes them strictly one at a time, in FIFO order,
invoking every matching subscriber sequentially. Because all handler code runs
on that single worker, no two handler invocations ever overlap, and handlers
may mutate shared state (including subscribing or unsubscribing others)
without extra locking.

Subscriptions are held through weak references: registering a handler does not
keep it alive. A subscriber that becomes unreachable is pruned the next time
the registry is scanned.

# Basic Usage

Events are plain values implementing Event; subscriptions match by dynamic
type, so subscribing to an interface kind matches every implementation:

	type OrderPlaced struct{ ID string }

	func (OrderPlaced) EventName() string { return "order.placed" }

	type orderHandler struct{}

	func (*orderHandler) HandleEvent(ctx context.Context, inv *eventline.Invocation, evt eventline.Event) error {
	    order := evt.(OrderPlaced)
	    // Process the order...
	    return nil
	}

	func main() {
	    q := eventline.New()

	    h := &orderHandler{}
	    eventline.Subscribe(q, eventline.KindOf[OrderPlaced](), h)

	    future, _ := q.Enqueue(OrderPlaced{ID: "ord-1"}, eventline.CompleteOrFail)
	    if err := future.Wait(context.Background()); err != nil {
	        log.Fatal(err)
	    }

	    q.BeginShutdown()
	    q.Done().Wait(context.Background())
	}

# Piggybacking

A handler may register follow-up events on its Invocation. Piggybacked events
are fully processed, with their own fresh handler snapshots, before the main
queue advances past the current event. Draining is depth-first: follow-ups of
a follow-up run before its siblings.

# Completion Modes

Each enqueued event carries a CompletionMode deciding how the producer
observes handler failures: CompleteOrFail delivers them through the returned
future, CompleteAlways and CompleteNone hide them from the producer and
re-dispatch them as an *UnhandledError event instead. Subscribe to
*UnhandledError to observe failures globally, or attach a journal.Journal to
persist every failure.

# Shutdown

Shutdown is cooperative and travels through the queue itself. BeginShutdown
enqueues the ShuttingDown notice; once its handlers (and their piggybacks)
finish, the queue stops accepting producer work and processes the terminal
ShutDown event, after which Done resolves. RequestShutdown offers a
vetoable variant via *ShutDownRequest.
*/
package eventline
