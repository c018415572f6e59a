package eventline

import "sync"

// fifoStatus is the explicit tri-state lifecycle of the pending-event queue.
// The status is the single source of truth for whether producer pushes are
// accepted; callers observe closure as a boolean, never by sniffing errors.
type fifoStatus int

const (
	// fifoOpen accepts pushes from any producer.
	fifoOpen fifoStatus = iota

	// fifoSealed rejects producer pushes. The dispatch loop may still
	// append the terminal ShutDown event with pushFinal.
	fifoSealed

	// fifoDone is terminal: nothing may be pushed and pop no longer blocks.
	fifoDone
)

// fifo is an unbounded multi-producer, single-consumer queue of pending
// events. Producers never block; the single consumer blocks in pop while the
// buffer is empty.
type fifo struct {
	mu       sync.Mutex
	nonEmpty *sync.Cond
	items    []*pendingEvent
	status   fifoStatus
}

func newFifo() *fifo {
	f := &fifo{}
	f.nonEmpty = sync.NewCond(&f.mu)
	return f
}

// push appends pe and reports whether the fifo accepted it. A sealed or done
// fifo rejects the push without error.
func (f *fifo) push(pe *pendingEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status != fifoOpen {
		return false
	}
	f.items = append(f.items, pe)
	f.nonEmpty.Signal()
	return true
}

// pushFinal appends pe regardless of sealing. Only the dispatch loop calls
// this, to place the terminal ShutDown event after the queue is sealed.
func (f *fifo) pushFinal(pe *pendingEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == fifoDone {
		return
	}
	f.items = append(f.items, pe)
	f.nonEmpty.Signal()
}

// pop blocks until an item is available or the fifo is done and drained. The
// second result is false only in the latter case.
func (f *fifo) pop() (*pendingEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.items) == 0 && f.status != fifoDone {
		f.nonEmpty.Wait()
	}
	if len(f.items) == 0 {
		return nil, false
	}
	pe := f.items[0]
	f.items[0] = nil
	f.items = f.items[1:]
	return pe, true
}

// seal stops accepting producer pushes. Items already queued remain and will
// be dispatched.
func (f *fifo) seal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == fifoOpen {
		f.status = fifoSealed
	}
}

// close marks the fifo done and wakes the consumer.
func (f *fifo) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = fifoDone
	f.nonEmpty.Broadcast()
}

// len returns the number of queued items.
func (f *fifo) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
