package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory is a Backend held entirely in memory. It can emulate a capacity
// limit and an unavailable store for tests and the "memory" driver.
type Memory struct {
	mu          sync.RWMutex
	data        map[string]Entry
	capacity    int64
	unavailable bool
	now         func() time.Time
}

var _ Backend = (*Memory)(nil)

// MemoryOption configures a Memory backend.
type MemoryOption func(*Memory)

// WithCapacity limits the total bytes (keys plus values) the backend accepts.
// Zero means unlimited.
func WithCapacity(n int64) MemoryOption {
	return func(m *Memory) { m.capacity = n }
}

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory creates an empty in-memory backend.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		data: make(map[string]Entry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetUnavailable toggles whether every call fails with ErrUnavailable.
func (m *Memory) SetUnavailable(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable = v
}

// SetCapacity changes the capacity limit. Zero means unlimited.
func (m *Memory) SetCapacity(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capacity = n
}

// Size returns the bytes currently stored.
func (m *Memory) Size() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size()
}

func (m *Memory) size() int64 {
	var total int64
	for _, e := range m.data {
		total += e.Size()
	}
	return total
}

func (m *Memory) Probe(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.unavailable {
		return ErrUnavailable
	}
	return nil
}

func (m *Memory) Get(_ context.Context, key string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.unavailable {
		return Entry{}, ErrUnavailable
	}

	e, ok := m.data[key]
	if !ok {
		return Entry{}, fmt.Errorf("memory get %q: %w", key, ErrNotFound)
	}
	e.Value = append([]byte(nil), e.Value...)
	return e, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return ErrUnavailable
	}

	next := Entry{Key: key, Value: append([]byte(nil), value...), UpdatedAt: m.now()}
	if m.capacity > 0 {
		projected := m.size() + next.Size()
		if old, ok := m.data[key]; ok {
			projected -= old.Size()
		}
		if projected > m.capacity {
			return fmt.Errorf("memory set %q: %w", key, ErrQuotaExceeded)
		}
	}

	m.data[key] = next
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return ErrUnavailable
	}
	delete(m.data, key)
	return nil
}

func (m *Memory) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.unavailable {
		return nil, ErrUnavailable
	}

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
