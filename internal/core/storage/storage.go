// Package storage defines the native key-value backend the local state layer
// persists into, and an in-memory implementation of it.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("key not found")
	// ErrUnavailable is returned when the backend cannot be used at all.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrQuotaExceeded is returned by Set when the backend's native capacity is exhausted.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Entry is a raw stored value.
type Entry struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// Size is the number of bytes the entry occupies, counting key and value.
func (e Entry) Size() int64 {
	return int64(len(e.Key) + len(e.Value))
}

// Backend is a flat string-keyed byte store. Implementations must be safe
// for concurrent use.
type Backend interface {
	// Probe reports ErrUnavailable when the backend cannot be written.
	Probe(ctx context.Context) error
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (Entry, error)
	// Set returns ErrQuotaExceeded when the native capacity would be exceeded.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys returns every key in sorted order.
	Keys(ctx context.Context) ([]string, error)
}
