package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/storefront/internal/core/storage"
)

func newTestBackend(t *testing.T, capacity int64) *Backend {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "nested", DefaultFileName), capacity)
}

func TestBackend_SetGetPersists(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t, 0)

	require.NoError(t, b.Probe(ctx))
	require.NoError(t, b.Set(ctx, "elfateh_wishlist", []byte(`[{"id":"1"}]`)))

	reopened := New(b.Path(), 0)
	e, err := reopened.Get(ctx, "elfateh_wishlist")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, string(e.Value))
	assert.False(t, e.UpdatedAt.IsZero())

	_, err = os.Stat(b.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestBackend_GetMissing(t *testing.T) {
	_, err := newTestBackend(t, 0).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBackend_DeleteAndKeys(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t, 0)

	for _, k := range []string{"z", "m", "a"} {
		require.NoError(t, b.Set(ctx, k, []byte(k)))
	}
	require.NoError(t, b.Delete(ctx, "m"))
	require.NoError(t, b.Delete(ctx, "absent"))

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "z"}, keys)
}

func TestBackend_Capacity(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t, 8)

	require.NoError(t, b.Set(ctx, "k", []byte("123456")))
	assert.ErrorIs(t, b.Set(ctx, "j", []byte("12")), storage.ErrQuotaExceeded)
	assert.NoError(t, b.Set(ctx, "k", []byte("1234567")))
}

func TestBackend_ProbeCorruptDocument(t *testing.T) {
	b := newTestBackend(t, 0)
	require.NoError(t, os.MkdirAll(filepath.Dir(b.Path()), 0o755))
	require.NoError(t, os.WriteFile(b.Path(), []byte("{not json"), 0o644))

	assert.ErrorIs(t, b.Probe(context.Background()), storage.ErrUnavailable)
}
