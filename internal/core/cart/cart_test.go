package cart

import (
	"context"
	"fmt"
	"sync"
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
	)
}

func prod(id string, price float64) product.Product {
	return product.Product{ID: id, Name: "Product " + id, Price: price}
}

func TestScenario(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).open(t, Options{})

	res := s.Add(ctx, prod("p1", 100), 2)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Added Product p1 to the cart", res.Message)
	assert.Equal(t, 2, s.TotalItems())
	assert.InDelta(t, 200.0, s.TotalPrice(), 0.0001)

	require.True(t, s.UpdateQuantity(ctx, "p1", 5).Success)
	assert.Equal(t, 5, s.TotalItems())

	require.True(t, s.Remove(ctx, "p1").Success)
	assert.Empty(t, s.Lines())
	assert.Equal(t, 0, s.TotalItems())
	assert.True(t, s.IsEmpty())
}

func TestAdd_Accumulates(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).open(t, Options{})

	require.True(t, s.Add(ctx, prod("p1", 10), 2).Success)
	res := s.Add(ctx, prod("p1", 10), 3)
	require.True(t, res.Success)
	assert.Equal(t, "Updated the quantity for Product p1", res.Message)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, 5, s.Quantity("p1"))
	assert.True(t, s.Contains("p1"))
	assert.False(t, s.Contains("p2"))
}

func TestAdd_Validation(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).open(t, Options{})

	tests := []struct {
		name string
		p    product.Product
		qty  int
		code result.Code
	}{
		{"missing id", product.Product{Name: "x", Price: 1}, 1, result.CodeInvalidProduct},
		{"blank id", product.Product{ID: "  ", Price: 1}, 1, result.CodeInvalidProduct},
		{"zero quantity", prod("p1", 1), 0, result.CodeInvalidQuantity},
		{"negative quantity", prod("p1", 1), -3, result.CodeInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Add(ctx, tt.p, tt.qty)
			assert.False(t, res.Success)
			assert.Equal(t, tt.code, res.Code)
			assert.ErrorIs(t, res.Err(), result.ErrInvalidInput)
		})
	}
	assert.True(t, s.IsEmpty())
}

func TestAdd_CartFull(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).open(t, Options{})

	for i := range DefaultMaxLines {
		require.True(t, s.Add(ctx, prod(fmt.Sprintf("p%03d", i), 1), 1).Success)
	}

	res := s.Add(ctx, prod("overflow", 1), 1)
	assert.Equal(t, result.CodeCartFull, res.Code)
	assert.ErrorIs(t, res.Err(), result.ErrCollectionFull)
	assert.Equal(t, DefaultMaxLines, s.Len())

	res = s.Add(ctx, prod("p000", 1), 1)
	assert.Equal(t, result.CodeCartFull, res.Code)
	assert.Equal(t, 1, s.Quantity("p000"))
}

func TestRemove_NotFound(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).open(t, Options{})

	res := s.Remove(ctx, "nope")
	assert.Equal(t, result.CodeNotFound, res.Code)

	require.True(t, s.Add(ctx, prod("p1", 1), 1).Success)
	res = s.Remove(ctx, "nope")
	assert.Equal(t, result.CodeNotFound, res.Code)
	assert.Equal(t, 1, s.Len())

	res = s.UpdateQuantity(ctx, "nope", 4)
	assert.Equal(t, result.CodeNotFound, res.Code)
}

func TestUpdateQuantity_ZeroRemoves(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).open(t, Options{})

	require.True(t, s.Add(ctx, prod("p1", 1), 3).Success)
	require.True(t, s.Add(ctx, prod("p2", 1), 1).Success)

	res := s.UpdateQuantity(ctx, "p1", 0)
	require.True(t, res.Success)
	assert.Equal(t, "Removed Product p1 from the cart", res.Message)
	assert.False(t, s.Contains("p1"))

	assert.Equal(t, result.CodeNotFound, s.UpdateQuantity(ctx, "p1", -1).Code)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.open(t, Options{})

	require.True(t, s.Add(ctx, prod("p1", 1), 1).Success)
	require.True(t, s.Clear(ctx).Success)
	assert.True(t, s.IsEmpty())

	var raw []any
	found, err := f.kv.ReadRaw(ctx, DefaultKey, &raw)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, raw)
}

func TestPersistence_Reload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.open(t, Options{})

	require.True(t, s.Add(ctx, prod("p1", 5), 2).Success)
	require.True(t, s.Add(ctx, prod("p2", 7), 1).Success)

	reloaded := f.open(t, Options{})
	assert.Equal(t, s.Lines(), reloaded.Lines())
	assert.Zero(t, f.recorder.Total(diagnostics.KindDropped))
}

func TestLoad_DropsMalformedLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	raw := []byte(`[
		{"product":{"_id":"a1","name":"ok","price":3},"quantity":2},
		{"product":{"name":"no id"},"quantity":1},
		{"product":{"_id":"a2"},"quantity":0},
		{"product":{"_id":"a3"},"quantity":"2"},
		{"product":{"_id":"a4"}},
		{"quantity":1},
		42,
		{"product":{"_id":"a1","name":"dup"},"quantity":1}
	]`)
	require.NoError(t, f.backend.Set(ctx, "elfateh_cart", raw))

	s := f.open(t, Options{})
	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "a1", lines[0].Product.ID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 7, f.recorder.Total(diagnostics.KindDropped))
}

func TestLoad_NotAList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.backend.Set(ctx, "elfateh_cart", []byte(`{"oops":true}`)))

	s := f.open(t, Options{})
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 1, f.recorder.Total(diagnostics.KindDropped))
}

func TestLegacyMerge(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	require.NoError(t, backend.Set(ctx, "shopping_cart", []byte(`[
		{"product":{"_id":"p1","name":"One","price":2},"quantity":2},
		{"product":{"_id":"p2","name":"Two","price":4}}
	]`)))
	require.NoError(t, backend.Set(ctx, "elfateh_cart", []byte(`[{"product":{"id":"p1","name":"One","price":2},"quantity":1}]`)))

	f := &fixture{
		backend:  backend,
		kv:       kvstore.New(ctx, backend, kvstore.Options{}),
		recorder: diagnostics.NewRecorder(zerolog.Nop(), 0),
	}
	s := f.open(t, Options{})

	assert.Equal(t, 3, s.Quantity("p1"))
	assert.Equal(t, 1, s.Quantity("p2"))

	keys, err := f.kv.Keys(ctx, "*cart")
	require.NoError(t, err)
	assert.Equal(t, []string{"cart"}, keys)

	reloaded := f.open(t, Options{})
	assert.Equal(t, 3, reloaded.Quantity("p1"))
}

func TestLoad_RejectsFractionalQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	raw := []byte(`[
		{"product":{"_id":"a1","name":"whole","price":3},"quantity":2},
		{"product":{"_id":"a2","name":"half","price":3},"quantity":2.5},
		{"product":{"_id":"a3","name":"tiny","price":3},"quantity":1.0001},
		{"product":{"_id":"a4","name":"half only","price":3},"quantity":0.5}
	]`)
	require.NoError(t, f.backend.Set(ctx, "elfateh_cart", raw))

	s := f.open(t, Options{})
	require.Len(t, s.Lines(), 1)
	assert.Equal(t, 2, s.Quantity("a1"))
	assert.False(t, s.Contains("a2"))
	assert.False(t, s.Contains("a3"))
	assert.False(t, s.Contains("a4"))

	var fractional int
	for _, e := range f.recorder.Events() {
		if e.Kind == diagnostics.KindDropped && e.Detail == "fractional quantity" {
			fractional += e.Count
		}
	}
	assert.Equal(t, 3, fractional)
}

func TestLegacyMerge_SurvivesRetention(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	backend := storage.NewMemory(storage.WithClock(clock))
	require.NoError(t, backend.Set(ctx, "cart", []byte(`[{"product":{"_id":"p1","name":"One","price":2},"quantity":2}]`)))

	openKV := func() *kvstore.Store {
		return kvstore.New(ctx, backend, kvstore.Options{}, kvstore.WithClock(clockFunc(clock)))
	}
	f := &fixture{backend: backend, kv: openKV(), recorder: diagnostics.NewRecorder(zerolog.Nop(), 0)}
	require.Equal(t, 2, f.open(t, Options{}).Quantity("p1"))

	now = now.Add(kvstore.DefaultRetention + 24*time.Hour)
	f.kv = openKV()
	n, err := f.kv.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Equal(t, 2, f.open(t, Options{}).Quantity("p1"))
}

type clockFunc func() time.Time

func (c clockFunc) Now() time.Time { return c() }

func TestPersist_QuotaTruncatesToRecentLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.open(t, Options{})

	for i := 1; i <= 14; i++ {
		require.True(t, s.Add(ctx, prod(fmt.Sprintf("p%02d", i), 1), 1).Success)
	}
	f.backend.SetCapacity(f.backend.Size() + 10)

	res := s.Add(ctx, prod("p15", 1), 1)
	require.True(t, res.Success)

	lines := s.Lines()
	require.Len(t, lines, DefaultQuotaKeep)
	assert.Equal(t, "p06", lines[0].Product.ID)
	assert.Equal(t, "p15", lines[9].Product.ID)
	assert.Equal(t, 5, f.recorder.Total(diagnostics.KindTruncated))

	reloaded := f.open(t, Options{})
	assert.Equal(t, 10, reloaded.Len())
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).open(t, Options{})

	var got [][]Line
	unsub := s.Subscribe(func(lines []Line) { got = append(got, lines) })

	require.True(t, s.Add(ctx, prod("p1", 1), 1).Success)
	require.True(t, s.Add(ctx, prod("p1", 1), 1).Success)
	require.False(t, s.Remove(ctx, "missing").Success)

	require.Len(t, got, 3)
	assert.Empty(t, got[0])
	assert.Equal(t, 1, got[1][0].Quantity)
	assert.Equal(t, 2, got[2][0].Quantity)

	got[2][0].Quantity = 99
	got[2][0].Product.Name = "mutated"
	assert.Equal(t, 2, s.Quantity("p1"))
	assert.Equal(t, "Product p1", s.Lines()[0].Product.Name)

	unsub()
	require.True(t, s.Clear(ctx).Success)
	assert.Len(t, got, 3)
}

func TestSubscribe_OrderUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).open(t, Options{})

	var (
		mu     sync.Mutex
		totals []int
	)
	s.Subscribe(func(lines []Line) {
		mu.Lock()
		defer mu.Unlock()
		totals = append(totals, Summarize(lines).Items)
	})

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(ctx, prod("p1", 1), 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Quantity("p1"))
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, totals, 51)
	for i, v := range totals {
		assert.Equal(t, i, v)
	}
}

func TestSummary_SaleAware(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).open(t, Options{})

	sale := product.Product{ID: "s1", Name: "Sale", Price: 100, PriceAfterDiscount: 80}
	list := product.Product{ID: "l1", Name: "List", Price: 50, OriginalPrice: 60}
	require.True(t, s.Add(ctx, sale, 2).Success)
	require.True(t, s.Add(ctx, list, 1).Success)

	sum := s.Summary()
	assert.Equal(t, 2, sum.Lines)
	assert.Equal(t, 3, sum.Items)
	assert.InDelta(t, 260.0, sum.Subtotal, 0.0001)
	assert.InDelta(t, 50.0, sum.Savings, 0.0001)
	assert.InDelta(t, 210.0, sum.Total, 0.0001)
	assert.InDelta(t, sum.Total, s.TotalPrice(), 0.0001)
}

func TestTotalPrice_OnSaleChargesLowerPrice(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).open(t, Options{})

	p := product.Product{ID: "os1", Name: "Flagged", Price: 75, OriginalPrice: 100, IsOnSale: true}
	require.True(t, s.Add(ctx, p, 2).Success)

	assert.InDelta(t, 150.0, s.TotalPrice(), 0.0001)
	sum := s.Summary()
	assert.InDelta(t, 200.0, sum.Subtotal, 0.0001)
	assert.InDelta(t, 50.0, sum.Savings, 0.0001)
}
