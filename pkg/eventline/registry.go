package eventline

import "sync"

// subscription associates a weak handle to a subscriber with the Kind it was
// registered for. The registry never holds a strong reference: resolve
// returns the strong handler only while a caller is using it.
type subscription struct {
	kind    Kind
	resolve func() (Handler, bool)
	name    string
}

// resolvedHandler pairs a live handler with its subscription metadata for the
// duration of one event's dispatch.
type resolvedHandler struct {
	handler Handler
	name    string
}

// subscriberRegistry tracks subscriptions in registration order. One mutex
// serializes add, remove, and snapshot; handler invocation happens outside
// the lock, so handlers are free to subscribe or unsubscribe others.
type subscriberRegistry struct {
	mu   sync.Mutex
	subs []*subscription
}

func newSubscriberRegistry() *subscriberRegistry {
	return &subscriberRegistry{}
}

// add registers a subscription unless an equivalent live one exists. Equality
// is reference identity on the resolved strong handle plus the registered
// kind. Dead entries found during the scan are compacted away. Reports
// whether the subscription was added.
func (r *subscriberRegistry) add(kind Kind, h Handler, resolve func() (Handler, bool), name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := r.subs[:0]
	duplicate := false
	for _, s := range r.subs {
		cur, ok := s.resolve()
		if !ok {
			continue // tombstone
		}
		if s.kind == kind && cur == h {
			duplicate = true
		}
		live = append(live, s)
	}
	clearTail(r.subs, len(live))
	r.subs = live

	if duplicate {
		return false
	}
	r.subs = append(r.subs, &subscription{kind: kind, resolve: resolve, name: name})
	return true
}

// remove drops the live subscription matching (kind, handler identity), if
// any. Reports whether one was removed.
func (r *subscriberRegistry) remove(kind Kind, h Handler) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := r.subs[:0]
	removed := false
	for _, s := range r.subs {
		cur, ok := s.resolve()
		if !ok {
			continue
		}
		if !removed && s.kind == kind && cur == h {
			removed = true
			continue
		}
		live = append(live, s)
	}
	clearTail(r.subs, len(live))
	r.subs = live
	return removed
}

// snapshot resolves the currently-live handlers whose kind matches evt, in
// registration order. The kind check runs first because it is cheap; dead
// weak handles discovered on matching entries are pruned in place. The
// snapshot is taken once per event, before any handler runs: handlers added
// mid-dispatch do not see the event, and handlers removed mid-dispatch may
// still run once more.
func (r *subscriberRegistry) snapshot(evt Event) []resolvedHandler {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := r.subs[:0]
	var matched []resolvedHandler
	for _, s := range r.subs {
		if !s.kind.Matches(evt) {
			live = append(live, s)
			continue
		}
		cur, ok := s.resolve()
		if !ok {
			continue
		}
		live = append(live, s)
		matched = append(matched, resolvedHandler{handler: cur, name: s.name})
	}
	clearTail(r.subs, len(live))
	r.subs = live
	return matched
}

// size returns the number of live subscriptions, compacting dead entries.
func (r *subscriberRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := r.subs[:0]
	for _, s := range r.subs {
		if _, ok := s.resolve(); ok {
			live = append(live, s)
		}
	}
	clearTail(r.subs, len(live))
	r.subs = live
	return len(r.subs)
}

// clearTail nils out compacted-away slots so the backing array does not pin
// subscription records.
func clearTail(subs []*subscription, from int) {
	for i := from; i < len(subs); i++ {
		subs[i] = nil
	}
}
