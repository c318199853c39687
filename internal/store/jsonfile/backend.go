// Package jsonfile implements storage.Backend on a single JSON document.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/colonyops/storefront/internal/core/storage"
)

// DefaultFileName is the document created inside the data directory.
const DefaultFileName = "local_storage.json"

// File is the root JSON structure stored on disk.
type File struct {
	Entries map[string]fileEntry `json:"entries"`
}

type fileEntry struct {
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Backend implements storage.Backend using a JSON file for persistence.
// Every call reads the file so that separate processes sharing the file see
// each other's writes.
type Backend struct {
	path     string
	capacity int64
	now      func() time.Time
	mu       sync.RWMutex
}

var _ storage.Backend = (*Backend)(nil)

// New creates a JSON file backend at path. capacity limits the total bytes
// of keys and values; zero means unlimited.
func New(path string, capacity int64) *Backend {
	return &Backend{path: path, capacity: capacity, now: time.Now}
}

// Path returns the document location.
func (b *Backend) Path() string {
	return b.path
}

// Probe checks that the directory is writable and the document parses.
func (b *Backend) Probe(_ context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	if _, err := b.load(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return nil
}

func (b *Backend) Get(_ context.Context, key string) (storage.Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	file, err := b.load()
	if err != nil {
		return storage.Entry{}, err
	}

	e, ok := file.Entries[key]
	if !ok {
		return storage.Entry{}, fmt.Errorf("jsonfile get %q: %w", key, storage.ErrNotFound)
	}
	return storage.Entry{Key: key, Value: []byte(e.Value), UpdatedAt: e.UpdatedAt}, nil
}

func (b *Backend) Set(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	file, err := b.load()
	if err != nil {
		return err
	}

	if b.capacity > 0 {
		var used int64
		for k, e := range file.Entries {
			if k != key {
				used += int64(len(k) + len(e.Value))
			}
		}
		if used+int64(len(key)+len(value)) > b.capacity {
			return fmt.Errorf("jsonfile set %q: %w", key, storage.ErrQuotaExceeded)
		}
	}

	file.Entries[key] = fileEntry{Value: string(value), UpdatedAt: b.now()}
	return b.save(file)
}

func (b *Backend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	file, err := b.load()
	if err != nil {
		return err
	}
	if _, ok := file.Entries[key]; !ok {
		return nil
	}

	delete(file.Entries, key)
	return b.save(file)
}

func (b *Backend) Keys(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	file, err := b.load()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(file.Entries))
	for k := range file.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// load reads the document from disk.
// Returns an empty File if the document doesn't exist.
func (b *Backend) load() (File, error) {
	file := File{Entries: map[string]fileEntry{}}

	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil
		}
		return file, fmt.Errorf("read %s: %w", b.path, err)
	}

	if len(data) == 0 {
		return file, nil
	}

	if err := json.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("parse %s: %w", b.path, err)
	}
	if file.Entries == nil {
		file.Entries = map[string]fileEntry{}
	}

	return file, nil
}

// save writes the document to disk atomically.
func (b *Backend) save(file File) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, b.path)
}
