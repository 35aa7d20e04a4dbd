package store

// Listener is a callback notified synchronously on every
// state-changing write, receiving the new and previous state.
type Listener[T any] func(next, prev T)

// Initializer produces a store's first state value. It runs
// synchronously exactly once during New and receives the store's write
// and read operations plus the store itself, so the initial state can
// close over them (e.g. to build action methods).
type Initializer[T any] func(set func(Update[T]), get func() T, api *Store[T]) T

// Store owns one mutable state value and its listener registry.
// The state field is reassigned only by Set; it is never mutated in
// place.
type Store[T any] struct {
	value T

	// subs maps a registration token to its listener. Removal is O(1)
	// by token. order preserves insertion order for notification and
	// is compacted lazily as registrations are removed.
	subs      map[uint64]Listener[T]
	order     []uint64
	nextToken uint64
}

// New builds a store by running init synchronously. A panic raised by
// init propagates to the caller and no store is created.
func New[T any](init Initializer[T]) *Store[T] {
	s := &Store[T]{
		subs: make(map[uint64]Listener[T]),
	}
	s.value = init(s.Set, s.Get, s)
	return s
}

// NewValue builds a store seeded with a fixed initial value.
func NewValue[T any](initial T) *Store[T] {
	return New(func(func(Update[T]), func() T, *Store[T]) T {
		return initial
	})
}

// Get returns the current state. It has no side effects and never
// fails.
func (s *Store[T]) Get() T {
	return s.value
}

// Set applies an update to the state. If the update resolves to a
// value identical to the current state, Set is a no-op: no
// reassignment, no notification. Otherwise the state is reassigned and
// every listener registered at the start of the notification pass is
// invoked with (next, prev), in registration order.
//
// A listener that subscribes during the pass is not invoked for the
// write that caused its subscription. A listener that unsubscribes
// during the pass is not invoked for later iterations of the same
// pass. A listener that calls Set re-entrantly has the nested write
// fully processed, listeners included, before the outer pass resumes.
func (s *Store[T]) Set(u Update[T]) {
	next, changed := u.apply(s.value)
	if !changed {
		return
	}

	prev := s.value
	s.value = next
	s.notify(next, prev)
}

// Subscribe registers fn and returns its unsubscribe function. Each
// call is a distinct registration with its own removal token; calling
// the returned function more than once is safe and a no-op after the
// first call.
func (s *Store[T]) Subscribe(fn Listener[T]) func() {
	token := s.nextToken
	s.nextToken++
	s.subs[token] = fn
	s.order = append(s.order, token)

	return func() {
		if _, ok := s.subs[token]; !ok {
			return
		}
		delete(s.subs, token)
		s.compact()
	}
}

// notify invokes listeners over a snapshot of the registry taken at
// the start of the pass. Membership is re-checked per token so
// unsubscribes that happen mid-pass take effect immediately.
func (s *Store[T]) notify(next, prev T) {
	snapshot := make([]uint64, len(s.order))
	copy(snapshot, s.order)

	for _, token := range snapshot {
		fn, ok := s.subs[token]
		if !ok {
			continue
		}
		fn(next, prev)
	}
}

// compact drops stale tokens from the order slice once removals have
// left it more than twice the live registry size.
func (s *Store[T]) compact() {
	if len(s.order) <= 2*len(s.subs) {
		return
	}
	live := s.order[:0]
	for _, token := range s.order {
		if _, ok := s.subs[token]; ok {
			live = append(live, token)
		}
	}
	s.order = live
}
