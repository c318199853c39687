package kvstore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/storefront/internal/core/result"
)

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newFixture(t, Options{})

	require.True(t, src.store.Set(ctx, "prefs", map[string]string{"theme": "dark"}).Success)
	require.NoError(t, src.store.WriteRaw(ctx, "cart", []map[string]int{{"quantity": 2}}))

	doc, err := src.store.Export(ctx)
	require.NoError(t, err)

	var backup Backup
	require.NoError(t, json.Unmarshal([]byte(doc), &backup))
	assert.NotEmpty(t, backup.ExportID)
	assert.Equal(t, 2, backup.TotalItems)
	assert.Len(t, backup.Items, 2)
	assert.Positive(t, backup.TotalSize)

	dst := newFixture(t, Options{})
	res := dst.store.Import(ctx, doc, ImportOptions{})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 2, res.ImportedCount)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "Imported 2 items successfully", res.Message)

	var prefs map[string]string
	require.True(t, dst.store.Get(ctx, "prefs", &prefs).Success)
	assert.Equal(t, "dark", prefs["theme"])

	var cart []map[string]int
	found, err := dst.store.ReadRaw(ctx, "cart", &cart)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, cart[0]["quantity"])
}

func TestImport_Invalid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	for _, doc := range []string{"", "{", `{"items": 3}`, `{"exportDate": "x"}`} {
		res := f.store.Import(ctx, doc, ImportOptions{})
		assert.False(t, res.Success, doc)
		assert.Equal(t, result.CodeInvalidInput, res.Code, doc)
	}
}

func TestImport_SkipsBadEntries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	doc := `{"items":[
		{"key":"a","value":1},
		{"key":"","value":2},
		{"key":"c"},
		"nonsense",
		{"key":"d","value":{"x":true}}
	]}`
	res := f.store.Import(ctx, doc, ImportOptions{})
	require.True(t, res.Success)
	assert.Equal(t, 2, res.ImportedCount)
	assert.Len(t, res.Errors, 3)
}

func TestImport_ClearExisting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	require.True(t, f.store.Set(ctx, "stale", 1).Success)

	res := f.store.Import(ctx, `{"items":[{"key":"fresh","value":2}]}`, ImportOptions{ClearExisting: true})
	require.True(t, res.Success)

	keys, err := f.store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, keys)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	st, err := f.store.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.TotalItems)
	assert.Nil(t, st.OldestItem)

	start := f.clock.Now()
	require.True(t, f.store.Set(ctx, "a", 1).Success)
	f.clock.Advance(time.Hour)
	require.True(t, f.store.Set(ctx, "b", 22).Success)

	st, err = f.store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalItems)
	require.NotNil(t, st.OldestItem)
	require.NotNil(t, st.NewestItem)
	assert.True(t, st.OldestItem.Equal(start))
	assert.True(t, st.NewestItem.Equal(start.Add(time.Hour)))
	assert.Equal(t, st.Info.Used, st.TotalSize)
	assert.Positive(t, st.AverageItemSize)
}
