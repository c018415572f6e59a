package eventline_test

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/veliand/eventline/pkg/eventline"
)

// note is the basic test event.
type note struct {
	tag string
}

func (note) EventName() string { return "test.note" }

// ping is a second event kind for non-matching cases.
type ping struct{}

func (ping) EventName() string { return "test.ping" }

// audited is an interface kind: any event implementing it matches
// KindOf[audited]().
type audited interface {
	eventline.Event
	Audited()
}

// auditedNote implements audited.
type auditedNote struct{}

func (auditedNote) EventName() string { return "test.audited_note" }
func (auditedNote) Audited()          {}

// recorder collects observation strings from handlers. Handlers run on the
// single dispatch goroutine, but tests read concurrently, so it locks.
type recorder struct {
	mu   sync.Mutex
	seen []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.seen = append(r.seen, s)
	r.mu.Unlock()
}

func (r *recorder) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen...)
}

// subscribe registers fn for kind and pins the handler until the test ends,
// so weak-reference pruning cannot race the test body.
func subscribe(t *testing.T, q *eventline.Queue, kind eventline.Kind, fn eventline.HandlerFunc) *eventline.HandlerFunc {
	t.Helper()
	h := &fn
	if err := eventline.Subscribe(q, kind, h); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	t.Cleanup(func() { runtime.KeepAlive(h) })
	return h
}

// drainOne enqueues a throwaway event and waits for it, guaranteeing all
// previously enqueued events have been dispatched.
func drainOne(t *testing.T, q *eventline.Queue) {
	t.Helper()
	f, err := q.Enqueue(ping{}, eventline.CompleteOrFail)
	if err != nil {
		t.Fatalf("enqueue barrier: %v", err)
	}
	waitFuture(t, f)
}

// waitFuture waits for f with a test-scoped deadline.
func waitFuture(t *testing.T, f *eventline.Future) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	select {
	case <-f.Done():
		return f.Err()
	case <-ctx.Done():
		t.Fatal("future did not resolve in time")
		return nil
	}
}

// stopQueue shuts the queue down and waits for the worker to exit.
func stopQueue(t *testing.T, q *eventline.Queue) {
	t.Helper()
	q.BeginShutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.Done().Wait(ctx); err != nil {
		t.Fatalf("queue did not stop: %v", err)
	}
}
