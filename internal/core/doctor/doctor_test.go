package doctor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/storefront/internal/core/config"
	"github.com/colonyops/storefront/internal/core/diagnostics"
	"github.com/colonyops/storefront/internal/core/kvstore"
	"github.com/colonyops/storefront/internal/core/storage"
)

type staticCheck struct {
	name  string
	items []CheckItem
}

func (c staticCheck) Name() string { return c.name }

func (c staticCheck) Run(context.Context) Result {
	return Result{Name: c.name, Items: append([]CheckItem(nil), c.items...)}
}

func itemByLabel(t *testing.T, r Result, label string) CheckItem {
	t.Helper()
	for _, it := range r.Items {
		if it.Label == label {
			return it
		}
	}
	require.Failf(t, "missing item", "no item labelled %q in %s", label, r.Name)
	return CheckItem{}
}

func TestRunAll_SummaryAndFixable(t *testing.T) {
	checks := []Check{
		staticCheck{name: "a", items: []CheckItem{
			{Label: "one", Status: StatusPass},
			{Label: "two", Status: StatusWarn, Fixable: true},
		}},
		staticCheck{name: "b", items: []CheckItem{
			{Label: "three", Status: StatusFail},
			{Label: "four", Status: StatusPass, Fixable: true},
		}},
	}

	results := RunAll(context.Background(), checks)
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[1].Name)

	tally := Count(results)
	assert.Equal(t, Tally{Passed: 2, Warned: 1, Failed: 1, Fixable: 1}, tally)
	assert.False(t, tally.Healthy())

	raw, err := json.Marshal(results[0].Items[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"two","status":"warn","fixable":true}`, string(raw))
}

func newKV(t *testing.T, backend storage.Backend, opts kvstore.Options) *kvstore.Store {
	t.Helper()
	opts.SkipStartup = true
	return kvstore.New(context.Background(), backend, opts)
}

func TestStorageCheck_Healthy(t *testing.T) {
	kv := newKV(t, storage.NewMemory(), kvstore.Options{})

	r := NewStorageCheck(kv, false).Run(context.Background())

	assert.Equal(t, "Storage", r.Name)
	for _, it := range r.Items {
		assert.Equal(t, StatusPass, it.Status, it.Label)
	}
}

func TestStorageCheck_Unavailable(t *testing.T) {
	backend := storage.NewMemory()
	backend.SetUnavailable(true)
	kv := newKV(t, backend, kvstore.Options{})

	r := NewStorageCheck(kv, false).Run(context.Background())

	require.Len(t, r.Items, 1)
	assert.Equal(t, StatusFail, r.Items[0].Status)
}

func TestStorageCheck_UsageLevels(t *testing.T) {
	ctx := context.Background()
	kv := newKV(t, storage.NewMemory(), kvstore.Options{MaxSize: 100, WarningThreshold: 50})

	require.NoError(t, kv.WriteRaw(ctx, "a", strings.Repeat("x", 60)))
	r := NewStorageCheck(kv, false).Run(ctx)
	assert.Equal(t, StatusWarn, itemByLabel(t, r, "usage").Status)

	require.NoError(t, kv.WriteRaw(ctx, "b", strings.Repeat("x", 60)))
	r = NewStorageCheck(kv, false).Run(ctx)
	usage := itemByLabel(t, r, "usage")
	assert.Equal(t, StatusFail, usage.Status)
	assert.Contains(t, usage.Detail, "quota exceeded")
}

func TestStorageCheck_ExpiredAndLegacy(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	backend := storage.NewMemory()
	require.NoError(t, backend.Set(ctx, "favorites", []byte(`[{"id":"1","name":"Mug","price":4}]`)))
	require.NoError(t, backend.Set(ctx, "elfateh_old", []byte(`{"data":1,"metadata":{"created":"2025-01-01T00:00:00Z","lastModified":"2025-01-01T00:00:00Z","size":1,"version":"1.0"}}`)))

	kv := kvstore.New(ctx, backend, kvstore.Options{SkipStartup: true}, kvstore.WithClock(fixedClock(now)))

	t.Run("report", func(t *testing.T) {
		r := NewStorageCheck(kv, false).Run(ctx)
		expired := itemByLabel(t, r, "expired items")
		assert.Equal(t, StatusWarn, expired.Status)
		assert.True(t, expired.Fixable)

		legacy := itemByLabel(t, r, "legacy keys")
		assert.Equal(t, StatusWarn, legacy.Status)
		assert.Equal(t, "favorites", legacy.Detail)
		assert.Equal(t, 2, Count([]Result{r}).Fixable)
	})

	t.Run("autofix", func(t *testing.T) {
		r := NewStorageCheck(kv, true).Run(ctx)
		assert.Equal(t, StatusPass, itemByLabel(t, r, "expired items").Status)
		assert.Equal(t, StatusPass, itemByLabel(t, r, "legacy keys").Status)

		_, err := backend.Get(ctx, "favorites")
		require.ErrorIs(t, err, storage.ErrNotFound)
		_, err = backend.Get(ctx, "elfateh_favorites")
		require.NoError(t, err)
	})
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

type schemaFunc func() (int, int, error)

func (f schemaFunc) SchemaVersion(context.Context) (int, int, error) { return f() }

func TestSchemaCheck(t *testing.T) {
	tests := []struct {
		name    string
		applied int
		latest  int
		err     error
		want    Status
	}{
		{name: "current", applied: 2, latest: 2, want: StatusPass},
		{name: "behind", applied: 1, latest: 2, want: StatusWarn},
		{name: "ahead", applied: 3, latest: 2, want: StatusWarn},
		{name: "error", err: os.ErrPermission, want: StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := schemaFunc(func() (int, int, error) { return tt.applied, tt.latest, tt.err })
			r := NewSchemaCheck(src).Run(context.Background())
			assert.Equal(t, tt.want, itemByLabel(t, r, "schema").Status)
		})
	}
}

func TestDiagnosticsCheck(t *testing.T) {
	rec := diagnostics.NewRecorder(zerolog.Nop(), 0)
	check := NewDiagnosticsCheck(rec)

	r := check.Run(context.Background())
	require.Len(t, r.Items, 1)
	assert.Equal(t, StatusPass, r.Items[0].Status)

	rec.Report(diagnostics.Event{Kind: diagnostics.KindDropped, Source: "cart", Count: 3})
	rec.Report(diagnostics.Event{Kind: diagnostics.KindMigrated, Source: "favorites"})

	r = check.Run(context.Background())
	require.Len(t, r.Items, 2)
	dropped := itemByLabel(t, r, "dropped")
	assert.Equal(t, StatusWarn, dropped.Status)
	assert.True(t, strings.HasPrefix(dropped.Detail, "3"))
	assert.Equal(t, StatusPass, itemByLabel(t, r, "migrated").Status)
}

func TestConfigCheck(t *testing.T) {
	t.Run("defaults in writable dir", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.DataDir = t.TempDir()

		r := NewConfigCheck(&cfg, "").Run(context.Background())
		assert.Equal(t, StatusPass, itemByLabel(t, r, "config").Status)
		assert.Equal(t, StatusPass, itemByLabel(t, r, "data_dir").Status)
		assert.Len(t, r.Items, 2)

		entries, err := os.ReadDir(cfg.DataDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("missing data dir", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.DataDir = filepath.Join(t.TempDir(), "nope")

		r := NewConfigCheck(&cfg, "").Run(context.Background())
		assert.Equal(t, StatusWarn, itemByLabel(t, r, "data_dir").Status)
	})

	t.Run("data dir is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		cfg := config.DefaultConfig()
		cfg.DataDir = path

		r := NewConfigCheck(&cfg, "").Run(context.Background())
		assert.Equal(t, StatusFail, itemByLabel(t, r, "config").Status)
		assert.Equal(t, StatusFail, itemByLabel(t, r, "data_dir").Status)
	})

	t.Run("warnings", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.DataDir = t.TempDir()
		cfg.Storage.Driver = config.DriverMemory
		cfg.Storage.SweepInterval = 0

		r := NewConfigCheck(&cfg, "").Run(context.Background())
		assert.Equal(t, StatusWarn, itemByLabel(t, r, "Storage.driver").Status)
		assert.Equal(t, StatusWarn, itemByLabel(t, r, "Storage.sweep_interval").Status)
	})
}
