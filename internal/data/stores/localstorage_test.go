package stores

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/storefront/internal/core/storage"
	"github.com/colonyops/storefront/internal/data/db"
)

func newTestLocalStorage(t *testing.T, capacity int64) *LocalStorage {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return NewLocalStorage(database, capacity)
}

func TestLocalStorage_SetAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestLocalStorage(t, 0)

	before := time.Now()
	require.NoError(t, store.Set(ctx, "elfateh_cart", []byte(`[]`)))

	entry, err := store.Get(ctx, "elfateh_cart")
	require.NoError(t, err)
	assert.Equal(t, "elfateh_cart", entry.Key)
	assert.Equal(t, `[]`, string(entry.Value))
	assert.False(t, entry.UpdatedAt.Before(before.Add(-time.Second)))
}

func TestLocalStorage_GetNotFound(t *testing.T) {
	store := newTestLocalStorage(t, 0)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLocalStorage_Overwrite(t *testing.T) {
	ctx := context.Background()
	store := newTestLocalStorage(t, 0)

	require.NoError(t, store.Set(ctx, "k", []byte("first")))
	require.NoError(t, store.Set(ctx, "k", []byte("second")))

	entry, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", string(entry.Value))
}

func TestLocalStorage_DeleteAndKeys(t *testing.T) {
	ctx := context.Background()
	store := newTestLocalStorage(t, 0)

	for _, k := range []string{"b", "a", "c"} {
		require.NoError(t, store.Set(ctx, k, []byte(k)))
	}
	require.NoError(t, store.Delete(ctx, "b"))
	require.NoError(t, store.Delete(ctx, "never-existed"))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, keys)
}

func TestLocalStorage_Capacity(t *testing.T) {
	ctx := context.Background()
	store := newTestLocalStorage(t, 32)

	require.NoError(t, store.Set(ctx, "key", []byte(strings.Repeat("x", 20))))
	require.NoError(t, store.Set(ctx, "key", []byte(strings.Repeat("y", 28))), "overwrite replaces the old size")

	err := store.Set(ctx, "other", []byte("z"))
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)

	_, err = store.Get(ctx, "other")
	assert.ErrorIs(t, err, storage.ErrNotFound, "rejected write must not be stored")
}

func TestLocalStorage_Probe(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	store := NewLocalStorage(database, 0)

	require.NoError(t, store.Probe(ctx))

	require.NoError(t, database.Close())
	assert.ErrorIs(t, store.Probe(ctx), storage.ErrUnavailable)
}
