// Package kv provides a generic thread-safe key-value store whose entries
// can expire.
package kv

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// Store is a thread-safe generic key-value store. Entries older than the
// store's TTL are treated as missing and dropped on the next access.
type Store[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]entry[V]
	ttl  time.Duration
	now  func() time.Time
}

// New creates a store whose entries expire after ttl. A ttl of zero keeps
// entries until they are deleted.
func New[K comparable, V any](ttl time.Duration) *Store[K, V] {
	return &Store[K, V]{
		data: make(map[K]entry[V]),
		ttl:  ttl,
		now:  time.Now,
	}
}

// WithClock replaces the time source. It is meant for tests.
func (s *Store[K, V]) WithClock(now func() time.Time) *Store[K, V] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *Store[K, V]) expired(e entry[V]) bool {
	return !e.expires.IsZero() && !s.now().Before(e.expires)
}

// Get retrieves a live value by key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	e, ok := s.data[key]
	stale := ok && s.expired(e)
	s.mu.RUnlock()

	if stale {
		s.mu.Lock()
		if cur, ok := s.data[key]; ok && s.expired(cur) {
			delete(s.data, key)
		}
		s.mu.Unlock()
	}
	if !ok || stale {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores a value by key and restarts its TTL.
func (s *Store[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry[V]{value: value}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}
	s.data[key] = e
}

// Delete removes a key from the store.
func (s *Store[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Clear removes all entries from the store.
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[K]entry[V])
}

// Prune drops expired entries and returns how many were removed.
func (s *Store[K, V]) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, e := range s.data {
		if s.expired(e) {
			delete(s.data, k)
			n++
		}
	}
	return n
}

// Len returns the number of live entries.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.data {
		if !s.expired(e) {
			n++
		}
	}
	return n
}
