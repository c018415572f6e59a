package eventline

import (
	"context"
	"fmt"
	"time"

	"github.com/veliand/eventline/pkg/eventline/journal"
	"github.com/veliand/eventline/pkg/eventline/observability"
)

// run is the dispatch loop: the queue's only consumer. It drains the main
// fifo one event at a time, dispatches each (including its piggybacks), and
// drives the two-phase shutdown. It exits only after fully handling the
// terminal ShutDown event.
func (q *Queue) run() {
	defer q.done.resolve(nil)

	for {
		pe, ok := q.pending.pop()
		if !ok {
			// The fifo closes only after ShutDown is handled below, so an
			// empty pop here means the loop's own bookkeeping broke.
			panic("eventline: pending queue closed before shutdown completed")
		}
		q.cfg.metrics.RecordQueueDepth(q.cfg.baseCtx, -1)

		q.dispatch(pe)

		switch evt := pe.event.(type) {
		case ShuttingDown:
			// Phase 1 complete: stop accepting producer work and queue the
			// structurally final event.
			q.shuttingDown.Store(true)
			q.pending.seal()
			q.state.Store(int32(StateDraining))
			q.pending.pushFinal(newPendingEvent(ShutDown{}, CompleteNone))
			q.cfg.metrics.RecordQueueDepth(q.cfg.baseCtx, 1)

		case ShutDown:
			q.state.Store(int32(StateStopped))
			q.pending.close()
			observability.LogQueueStopped(q.cfg.logger)
			return

		case *ShutDownRequest:
			if evt.CanShutDown() {
				q.BeginShutdown()
			}
		}
	}
}

// dispatch runs the per-event algorithm: snapshot handlers, invoke them
// sequentially, drain piggybacks depth-first, then settle the completion
// signal. Piggybacked and synthesized events recurse through this same
// function, so they observe identical semantics.
func (q *Queue) dispatch(pe *pendingEvent) {
	_, terminal := pe.event.(ShutDown)
	start := time.Now()

	ctx, span := q.cfg.spans.StartDispatchSpan(q.cfg.baseCtx, pe.event.EventName(), pe.id)

	handlers := q.registry.snapshot(pe.event)
	observability.LogDispatchStart(q.cfg.logger, pe.event.EventName(), pe.id, len(handlers))

	inv := newInvocation(pe.event, terminal)

	var failures []*HandlerError
	for _, h := range handlers {
		if err := q.invoke(ctx, h, inv, pe.event); err != nil {
			failures = append(failures, &HandlerError{
				Event:   pe.event,
				Handler: h.name,
				Err:     err,
			})
			observability.LogHandlerError(q.cfg.logger, pe.event.EventName(), h.name, err)
			q.record(pe, h.name, err)
		}
	}

	for _, child := range inv.drain() {
		q.dispatch(child)
	}

	q.settle(pe, failures)

	q.cfg.spans.EndSpanWithError(span, errorOf(failures))
	q.cfg.metrics.RecordDispatch(ctx, pe.event.EventName(), len(handlers), time.Since(start), len(failures))
	observability.LogDispatchComplete(q.cfg.logger, pe.event.EventName(), pe.id,
		float64(time.Since(start).Microseconds())/1000.0, len(failures))
}

// invoke runs one handler with panic recovery. Handlers execute strictly
// sequentially on this goroutine; the returned error is the handler's own
// failure and never aborts the loop.
func (q *Queue) invoke(ctx context.Context, h resolvedHandler, inv *Invocation, evt Event) (err error) {
	hctx, span := q.cfg.spans.StartHandlerSpan(ctx, h.name)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
		q.cfg.spans.EndSpanWithError(span, err)
		q.cfg.metrics.RecordHandler(ctx, evt.EventName(), h.name, time.Since(start), err)
	}()
	return h.handler.HandleEvent(hctx, inv, evt)
}

// settle resolves an event's completion per its mode. CompleteOrFail
// propagates failures through the future; the other modes hide them from the
// producer and instead synthesize an *UnhandledError event, dispatched
// fire-and-forget through the same algorithm before returning.
func (q *Queue) settle(pe *pendingEvent, failures []*HandlerError) {
	if len(failures) == 0 {
		pe.settle(nil)
		return
	}

	switch pe.mode {
	case CompleteOrFail:
		pe.settle(joinErrors(originalErrors(failures)))

	case CompleteAlways, CompleteNone:
		pe.settle(nil)
		wrapped := make([]error, len(failures))
		for i, f := range failures {
			wrapped[i] = f
		}
		unhandled := &UnhandledError{Event: pe.event, Errs: wrapped}
		q.dispatch(newPendingEvent(unhandled, CompleteNone))

	default:
		// Modes are validated at Enqueue and Piggyback; reaching this arm
		// means the dispatcher's own bookkeeping is broken.
		panic(fmt.Sprintf("eventline: unknown completion mode %d", int(pe.mode)))
	}
}

// record writes a handler failure to the journal, if one is configured.
// Journal errors are logged and dropped; persistence problems must not
// disturb dispatch.
func (q *Queue) record(pe *pendingEvent, handlerName string, err error) {
	if q.cfg.journal == nil {
		return
	}
	rec := journal.NewFailureRecord(pe.id, pe.event.EventName(), handlerName, err)
	if jerr := q.cfg.journal.Record(q.cfg.baseCtx, rec); jerr != nil {
		observability.LogJournalError(q.cfg.logger, pe.event.EventName(), jerr)
	}
}

// originalErrors extracts the raw handler errors so CompleteOrFail futures
// propagate what the handler actually returned.
func originalErrors(failures []*HandlerError) []error {
	errs := make([]error, len(failures))
	for i, f := range failures {
		errs[i] = f.Err
	}
	return errs
}

// errorOf summarizes failures for span status.
func errorOf(failures []*HandlerError) error {
	if len(failures) == 0 {
		return nil
	}
	wrapped := make([]error, len(failures))
	for i, f := range failures {
		wrapped[i] = f
	}
	return joinErrors(wrapped)
}
