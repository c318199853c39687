// Package observable provides a replay-latest subject used by the stores to
// publish state snapshots.
package observable

import "sync"

// Subject holds the latest value of type T and delivers it to subscribers.
// New subscribers immediately receive the current value. Deliveries happen
// in publish order. Subscriber callbacks must not call back into the owner
// of the subject; everything they need is in the delivered value.
type Subject[T any] struct {
	mu      sync.Mutex
	deliver sync.Mutex
	value   T
	nextID  int
	subs    map[int]func(T)
}

// New creates a subject seeded with an initial value.
func New[T any](initial T) *Subject[T] {
	return &Subject[T]{
		value: initial,
		subs:  make(map[int]func(T)),
	}
}

// Subscribe registers fn and invokes it with the current value before
// returning. The returned func removes the subscription and is safe to call
// more than once.
func (s *Subject[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	current := s.value
	s.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Publish stores v as the latest value and delivers it to every subscriber.
func (s *Subject[T]) Publish(v T) {
	s.Handoff(func() {}, v)
}

// Handoff acquires the delivery lock, runs release and then delivers v.
// Callers pass the unlock func of their own state mutex as release so that
// the order in which mutations are applied is the order subscribers see.
func (s *Subject[T]) Handoff(release func(), v T) {
	s.deliver.Lock()
	release()
	defer s.deliver.Unlock()

	s.mu.Lock()
	s.value = v
	subs := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Value returns the latest published value.
func (s *Subject[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Len returns the number of active subscribers.
func (s *Subject[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
