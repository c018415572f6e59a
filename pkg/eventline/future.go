package eventline

import (
	"context"
	"sync"
)

// Future is the completion signal for one enqueued event. It resolves exactly
// once, after every matching handler and every piggybacked event has been
// fully processed.
type Future struct {
	once sync.Once
	done chan struct{}
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Completed returns a future that is already resolved with err. The queue
// uses this for events enqueued after shutdown has begun, so producers are
// never surprised by errors purely due to shutdown timing.
func Completed(err error) *Future {
	f := newFuture()
	f.resolve(err)
	return f
}

// resolve settles the future. Later calls are no-ops.
func (f *Future) resolve(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done returns a channel closed when the future resolves.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Err returns the resolution error, or nil if the future either succeeded or
// has not resolved yet. Wait on Done before reading Err to distinguish the
// two.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Wait blocks until the future resolves or ctx is done, returning the
// resolution error or the context error.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
