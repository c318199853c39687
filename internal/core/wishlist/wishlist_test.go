package wishlist

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/storefront/internal/core/diagnostics"
	"github.com/colonyops/storefront/internal/core/i18n"
	"github.com/colonyops/storefront/internal/core/kvstore"
	"github.com/colonyops/storefront/internal/core/product"
	"github.com/colonyops/storefront/internal/core/result"
	"github.com/colonyops/storefront/internal/core/storage"
)

type fixture struct {
	backend  *storage.Memory
	kv       *kvstore.Store
	recorder *diagnostics.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := storage.NewMemory()
	return newFixtureWith(t, backend)
}

func newFixtureWith(t *testing.T, backend *storage.Memory) *fixture {
	t.Helper()
	return &fixture{
		backend:  backend,
		kv:       kvstore.New(context.Background(), backend, kvstore.Options{}),
		recorder: diagnostics.NewRecorder(zerolog.Nop(), 0),
	}
}

func (f *fixture) open(t *testing.T, opts Options) *Store {
	t.Helper()
	return New(context.Background(), f.kv, opts,
		WithReporter(f.recorder),
		WithPrinter(i18n.MustNew("en")),
		WithClock(func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }),
	)
}

func prod(id string) product.Product {
	return product.Product{ID: id, Name: "Item " + id, Price: 10}
}

func ids(items []product.Product) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.ID
	}
	return out
}

func TestAdd_RejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).open(t, Options{})

	res := s.Add(ctx, prod("p1"))
	require.True(t, res.Success)
	assert.Equal(t, "Added Item p1 to the wishlist", res.Message)

	res = s.Add(ctx, prod("p1"))
	assert.Equal(t, result.CodeAlreadyPresent, res.Code)
	assert.Equal(t, 1, s.Count())

	res = s.Add(ctx, product.Product{Name: "no id"})
	assert.Equal(t, result.CodeInvalidProduct, res.Code)
}

func TestAdd_Full(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).open(t, Options{MaxItems: 3})

	for i := range 3 {
		require.True(t, s.Add(ctx, prod(fmt.Sprint(i))).Success)
	}

	res := s.Add(ctx, prod("extra"))
	assert.Equal(t, result.CodeWishlistFull, res.Code)
	assert.ErrorIs(t, res.Err(), result.ErrCollectionFull)

	// duplicates are reported before the cap
	assert.Equal(t, result.CodeAlreadyPresent, s.Add(ctx, prod("0")).Code)
	assert.Equal(t, 3, s.Count())
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).open(t, Options{})

	assert.Equal(t, result.CodeNotFound, s.Remove(ctx, "p1").Code)

	require.True(t, s.Add(ctx, prod("p1")).Success)
	require.True(t, s.Add(ctx, prod("p2")).Success)
	require.True(t, s.Remove(ctx, "p1").Success)
	assert.False(t, s.Contains("p1"))
	assert.True(t, s.Contains("p2"))
}

func TestMoveToCart_OnlyRemoves(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).open(t, Options{})
	require.True(t, s.Add(ctx, prod("p1")).Success)

	res := s.MoveToCart(ctx, prod("p1"))
	require.True(t, res.Success)
	assert.Equal(t, "Moved Item p1 from the wishlist to the cart", res.Message)
	assert.True(t, s.IsEmpty())

	assert.Equal(t, result.CodeNotFound, s.MoveToCart(ctx, prod("p1")).Code)
	assert.Equal(t, result.CodeInvalidProduct, s.MoveToCart(ctx, product.Product{}).Code)
}

func TestSearchAndFilters(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).open(t, Options{})

	items := []product.Product{
		{ID: "1", Name: "Steel Pot", Brand: "Tefal", Category: "kitchen", Price: 5},
		{ID: "2", Name: "Towel", Description: "Soft COTTON towel", Brand: "Home", Category: "bath", Price: 3},
		{ID: "3", Name: "STRASSE mug", Brand: "tefal", Category: "kitchen", Price: 2},
		{ID: "4", Name: "Lamp", Price: 9},
	}
	for _, p := range items {
		require.True(t, s.Add(ctx, p).Success)
	}

	assert.Equal(t, []string{"2"}, ids(s.Search("cotton")))
	assert.Equal(t, []string{"1", "3"}, ids(s.Search("TEFAL")))
	assert.Equal(t, []string{"3"}, ids(s.Search("strasse")))
	assert.Empty(t, s.Search("sofa"))
	assert.Len(t, s.Search(""), 4)

	assert.Equal(t, []string{"1", "3"}, ids(s.ByCategory("kitchen")))
	assert.Empty(t, s.ByCategory("Kitchen"))
	assert.Equal(t, []string{"1"}, ids(s.ByBrand("Tefal")))
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.open(t, Options{})

	for _, id := range []string{"a", "b", "c"} {
		require.True(t, s.Add(ctx, prod(id)).Success)
	}

	doc, err := s.Export()
	require.NoError(t, err)

	var backup Backup
	require.NoError(t, json.Unmarshal([]byte(doc), &backup))
	assert.Equal(t, 3, backup.ItemCount)
	assert.True(t, backup.ExportDate.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))

	want := ids(s.Items())
	require.True(t, s.Clear(ctx).Success)
	require.True(t, s.IsEmpty())

	res := s.Import(ctx, doc)
	require.True(t, res.Success)
	assert.Equal(t, 3, res.ImportedCount)
	assert.Equal(t, "Imported 3 products successfully", res.Message)

	got := ids(s.Items())
	sort.Strings(got)
	sort.Strings(want)
	assert.Equal(t, want, got)

	res = s.Import(ctx, doc)
	require.True(t, res.Success)
	assert.Zero(t, res.ImportedCount)
	assert.Empty(t, res.Errors)
}

func TestImport_Errors(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).open(t, Options{MaxItems: 2})

	res := s.Import(ctx, `{"itemCount": 1}`)
	assert.Equal(t, result.CodeInvalidInput, res.Code)
	res = s.Import(ctx, `nope`)
	assert.Equal(t, result.CodeInvalidInput, res.Code)

	res = s.Import(ctx, `{"items":[
		{"_id":"x1","name":"One","price":1},
		{"name":"no id"},
		7,
		{"_id":"x2","name":"Two","price":2},
		{"_id":"x3","name":"Three","price":3}
	]}`)
	require.True(t, res.Success)
	assert.Equal(t, 2, res.ImportedCount)
	assert.Len(t, res.Errors, 3)
	assert.Equal(t, 2, s.Count())
}

func TestLoad_FiltersEntries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.backend.Set(ctx, "elfateh_wishlist", []byte(`[
		{"_id":"ok","name":"Fine","price":4},
		{"_id":"noname","price":4},
		{"_id":"free","name":"Zero","price":0},
		{"name":"no id","price":4},
		"junk",
		{"_id":"ok","name":"Dup","price":4}
	]`)))

	s := f.open(t, Options{})
	assert.Equal(t, []string{"ok"}, ids(s.Items()))
	assert.Equal(t, 5, f.recorder.Total(diagnostics.KindDropped))
}

func TestLegacyMerge(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	require.NoError(t, backend.Set(ctx, "favorites", []byte(`[{"id":1,"name":"Numeric","price":3},{"_id":"b","name":"B","price":1}]`)))
	require.NoError(t, backend.Set(ctx, "elfateh_wishlist", []byte(`[{"id":"b","name":"B","price":1}]`)))

	f := newFixtureWith(t, backend)
	s := f.open(t, Options{})

	assert.Equal(t, []string{"b", "1"}, ids(s.Items()))
	_, err := backend.Get(ctx, "elfateh_favorites")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, 1, f.recorder.Total(diagnostics.KindMigrated))
}

func TestPersist_QuotaTruncates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.open(t, Options{})

	for i := 1; i <= 24; i++ {
		require.True(t, s.Add(ctx, prod(fmt.Sprintf("w%02d", i))).Success)
	}
	f.backend.SetCapacity(f.backend.Size() + 5)

	require.True(t, s.Add(ctx, prod("w25")).Success)
	items := s.Items()
	require.Len(t, items, DefaultQuotaKeep)
	assert.Equal(t, "w06", items[0].ID)
	assert.Equal(t, 5, f.recorder.Total(diagnostics.KindTruncated))

	reloaded := f.open(t, Options{})
	assert.Equal(t, ids(items), ids(reloaded.Items()))
}

func TestSubscribe_FreshCopies(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).open(t, Options{})

	var last []product.Product
	calls := 0
	unsub := s.Subscribe(func(items []product.Product) {
		calls++
		last = items
	})
	defer unsub()

	require.True(t, s.Add(ctx, prod("p1")).Success)
	assert.Equal(t, 2, calls)
	require.Len(t, last, 1)

	last[0].Name = "changed"
	p, ok := s.Get("p1")
	require.True(t, ok)
	assert.Equal(t, "Item p1", p.Name)
}
