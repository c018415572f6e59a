package benchmarks

import (
	"context"
	"testing"

	"github.com/veliand/eventline/pkg/eventline"
)

type tick struct{}

func (tick) EventName() string { return "bench.tick" }

// newQueue builds a queue with n no-op subscribers for tick events and
// returns it with the strong handler references the registry needs.
func newQueue(n int) (*eventline.Queue, []*eventline.HandlerFunc) {
	q := eventline.New()
	handlers := make([]*eventline.HandlerFunc, n)
	for i := range handlers {
		h := eventline.HandlerFunc(func(context.Context, *eventline.Invocation, eventline.Event) error {
			return nil
		})
		handlers[i] = &h
		if err := eventline.Subscribe(q, eventline.KindOf[tick](), &h); err != nil {
			panic(err)
		}
	}
	return q, handlers
}

func stop(q *eventline.Queue) {
	q.BeginShutdown()
	_ = q.Done().Wait(context.Background())
}

// BenchmarkDispatch_1Handler measures enqueue-to-completion with one
// subscriber.
func BenchmarkDispatch_1Handler(b *testing.B) {
	q, handlers := newQueue(1)
	defer stop(q)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f, _ := q.Enqueue(tick{}, eventline.CompleteOrFail)
		<-f.Done()
	}
	b.StopTimer()
	_ = handlers
}

// BenchmarkDispatch_10Handlers measures enqueue-to-completion with ten
// subscribers.
func BenchmarkDispatch_10Handlers(b *testing.B) {
	q, handlers := newQueue(10)
	defer stop(q)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f, _ := q.Enqueue(tick{}, eventline.CompleteOrFail)
		<-f.Done()
	}
	b.StopTimer()
	_ = handlers
}

// BenchmarkDispatch_FireAndForget measures enqueue throughput without
// waiting per event.
func BenchmarkDispatch_FireAndForget(b *testing.B) {
	q, handlers := newQueue(1)
	defer stop(q)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = q.Enqueue(tick{}, eventline.CompleteNone)
	}
	b.StopTimer()
	_ = handlers
}

// BenchmarkDispatch_PiggybackChain measures a handler that piggybacks a
// follow-up event, doubling the work per enqueue.
func BenchmarkDispatch_PiggybackChain(b *testing.B) {
	q := eventline.New()
	defer stop(q)

	leaf := eventline.HandlerFunc(func(context.Context, *eventline.Invocation, eventline.Event) error {
		return nil
	})
	root := eventline.HandlerFunc(func(ctx context.Context, inv *eventline.Invocation, evt eventline.Event) error {
		if _, ok := evt.(tick); ok {
			_, err := inv.Piggyback(chained{}, eventline.CompleteNone)
			return err
		}
		return nil
	})
	if err := eventline.Subscribe(q, eventline.KindOf[tick](), &root); err != nil {
		b.Fatal(err)
	}
	if err := eventline.Subscribe(q, eventline.KindOf[chained](), &leaf); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f, _ := q.Enqueue(tick{}, eventline.CompleteOrFail)
		<-f.Done()
	}
	b.StopTimer()
	_, _ = root, leaf
}

type chained struct{}

func (chained) EventName() string { return "bench.chained" }

// BenchmarkSubscribe measures registration cost against a populated
// registry.
func BenchmarkSubscribe(b *testing.B) {
	q, handlers := newQueue(100)
	defer stop(q)

	hs := make([]*eventline.HandlerFunc, b.N)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h := eventline.HandlerFunc(func(context.Context, *eventline.Invocation, eventline.Event) error {
			return nil
		})
		hs[i] = &h
		if err := eventline.Subscribe(q, eventline.KindOf[tick](), &h); err != nil {
			b.Fatal(err)
		}
	}
	b.StopTimer()
	_, _ = handlers, hs
}
