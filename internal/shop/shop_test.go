package shop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/storefront/internal/core/config"
	"github.com/colonyops/storefront/internal/core/notify"
	"github.com/colonyops/storefront/internal/core/product"
	"github.com/colonyops/storefront/internal/core/storage"
)

type idleTimer struct{}

func (idleTimer) Stop() bool { return true }

// idleScheduler never fires, so notifications stay until removed.
type idleScheduler struct{}

func (idleScheduler) AfterFunc(time.Duration, func()) notify.Timer { return idleTimer{} }

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Profile = config.ProfileTest
	cfg.Locale = "en"
	cfg.DataDir = t.TempDir()
	cfg.Storage.Driver = driver
	return &cfg
}

func openApp(t *testing.T, cfg *config.Config, opts ...Option) *App {
	t.Helper()
	opts = append([]Option{WithScheduler(idleScheduler{})}, opts...)
	app, err := Open(context.Background(), cfg, opts...)
	require.NoError(t, err)
	return app
}

func mug() product.Product {
	return product.Product{ID: "mug-1", Name: "Mug", Price: 12}
}

func TestOpen_PersistsAcrossRuns(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverJSONFile} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			cfg := testConfig(t, driver)

			app := openApp(t, cfg)
			require.True(t, app.Cart.Add(ctx, mug(), 2).Success)
			require.True(t, app.Wishlist.Add(ctx, product.Product{ID: "lamp", Name: "Lamp", Price: 40}).Success)
			app.Notifications.Info(ctx, "hello", "world", notify.Persistent())
			require.NoError(t, app.Close())

			app = openApp(t, cfg)
			t.Cleanup(func() { _ = app.Close() })

			assert.Equal(t, 2, app.Cart.Quantity("mug-1"))
			assert.True(t, app.Wishlist.Contains("lamp"))
			require.Len(t, app.Notifications.Items(), 1)
			assert.Equal(t, "hello", app.Notifications.Items()[0].Title)
		})
	}
}

func TestOpen_MemoryDriverDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.DriverMemory)

	app := openApp(t, cfg)
	require.True(t, app.Cart.Add(ctx, mug(), 1).Success)
	require.NoError(t, app.Close())

	app = openApp(t, cfg)
	t.Cleanup(func() { _ = app.Close() })
	assert.True(t, app.Cart.IsEmpty())
}

func TestOpen_NotificationsNotPersisted(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.DriverMemory)
	cfg.Notifications.Persist = false
	backend := storage.NewMemory()

	app := openApp(t, cfg, WithBackend(backend))
	app.Notifications.Info(ctx, "a", "b", notify.Persistent())
	require.NoError(t, app.Close())

	_, err := backend.Get(ctx, cfg.Storage.Prefix+notify.DefaultKey)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOpen_MergesLegacyKeys(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	require.NoError(t, backend.Set(ctx, "shopping_cart", []byte(`[{"product":{"_id":"7","name":"Pan","price":30},"quantity":3}]`)))
	require.NoError(t, backend.Set(ctx, "favorites", []byte(`[{"_id":9,"name":"Broom","price":8}]`)))

	app := openApp(t, testConfig(t, config.DriverMemory), WithBackend(backend))
	t.Cleanup(func() { _ = app.Close() })

	assert.Equal(t, 3, app.Cart.Quantity("7"))
	assert.True(t, app.Wishlist.Contains("9"))

	keys, err := backend.Keys(ctx)
	require.NoError(t, err)
	assert.NotContains(t, keys, "shopping_cart")
	assert.NotContains(t, keys, "favorites")
}

func TestOpen_UnknownLocale(t *testing.T) {
	cfg := testConfig(t, config.DriverMemory)
	cfg.Locale = "xx"

	_, err := Open(context.Background(), cfg)
	require.Error(t, err)
}

func TestDoctorService(t *testing.T) {
	app := openApp(t, testConfig(t, config.DriverMemory))
	t.Cleanup(func() { _ = app.Close() })

	results := app.Doctor.RunChecks(context.Background(), "", false)
	require.Len(t, results, 3)
	assert.Equal(t, "Configuration", results[0].Name)
	assert.Equal(t, "Storage", results[1].Name)
	assert.Equal(t, "Data Integrity", results[2].Name)
}
