package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/colonyops/storefront/internal/core/storage"
	"github.com/colonyops/storefront/internal/data/db"
)

// LocalStorage implements storage.Backend on the local_storage table.
type LocalStorage struct {
	db       *db.DB
	capacity int64
	now      func() time.Time
}

var _ storage.Backend = (*LocalStorage)(nil)

// NewLocalStorage creates a SQLite-backed storage backend. capacity limits
// the total bytes of keys and values; zero means unlimited.
func NewLocalStorage(database *db.DB, capacity int64) *LocalStorage {
	return &LocalStorage{db: database, capacity: capacity, now: time.Now}
}

// SchemaVersion reports the applied and embedded migration versions.
func (s *LocalStorage) SchemaVersion(ctx context.Context) (applied, latest int, err error) {
	return s.db.SchemaVersion(ctx)
}

// Probe verifies the database accepts queries.
func (s *LocalStorage) Probe(ctx context.Context) error {
	if err := s.db.Conn().PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return nil
}

// Get returns the entry for key.
func (s *LocalStorage) Get(ctx context.Context, key string) (storage.Entry, error) {
	var (
		value     []byte
		updatedAt int64
	)
	err := s.db.Conn().QueryRowContext(ctx,
		"SELECT value, updated_at FROM local_storage WHERE key = ?", key,
	).Scan(&value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Entry{}, fmt.Errorf("local storage get %q: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return storage.Entry{}, fmt.Errorf("local storage get %q: %w", key, err)
	}

	return storage.Entry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Unix(0, updatedAt),
	}, nil
}

// Set upserts key. The capacity check and the write share one transaction.
func (s *LocalStorage) Set(ctx context.Context, key string, value []byte) error {
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if s.capacity > 0 {
			var used, old int64
			err := tx.QueryRowContext(ctx, `
				SELECT
					COALESCE(SUM(LENGTH(CAST(key AS BLOB)) + LENGTH(value)), 0),
					COALESCE(SUM(CASE WHEN key = ? THEN LENGTH(CAST(key AS BLOB)) + LENGTH(value) ELSE 0 END), 0)
				FROM local_storage`, key,
			).Scan(&used, &old)
			if err != nil {
				return fmt.Errorf("measure usage: %w", err)
			}
			if used-old+int64(len(key)+len(value)) > s.capacity {
				return storage.ErrQuotaExceeded
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, s.now().UnixNano(),
		)
		return err
	})
	if err != nil {
		switch {
		case IsFullError(err):
			err = storage.ErrQuotaExceeded
		case IsBusyError(err):
			// locked by another process past the busy timeout
			err = fmt.Errorf("%w: %w", storage.ErrUnavailable, err)
		}
		return fmt.Errorf("local storage set %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Conn().ExecContext(ctx, "DELETE FROM local_storage WHERE key = ?", key); err != nil {
		return fmt.Errorf("local storage delete %q: %w", key, err)
	}
	return nil
}

// Keys returns every key in sorted order.
func (s *LocalStorage) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.Conn().QueryContext(ctx, "SELECT key FROM local_storage ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("local storage keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("local storage keys scan: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
