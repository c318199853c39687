// Package shop wires the storage layer into a single container consumed by
// the commands and the TUI.
package shop

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/storefront/internal/catalog"
	"github.com/colonyops/storefront/internal/core/cart"
	"github.com/colonyops/storefront/internal/core/config"
	"github.com/colonyops/storefront/internal/core/diagnostics"
	"github.com/colonyops/storefront/internal/core/i18n"
	"github.com/colonyops/storefront/internal/core/kvstore"
	"github.com/colonyops/storefront/internal/core/logging"
	"github.com/colonyops/storefront/internal/core/notify"
	"github.com/colonyops/storefront/internal/core/storage"
	"github.com/colonyops/storefront/internal/core/wishlist"
	"github.com/colonyops/storefront/internal/shop/sweep"
)

// App is the central entry point for all storefront operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Config      *config.Config
	Printer     *i18n.Printer
	Diagnostics *diagnostics.Recorder

	Backend       storage.Backend
	KV            *kvstore.Store
	Cart          *cart.Store
	Wishlist      *wishlist.Store
	Notifications *notify.Queue
	Transfer      *Transfer
	Doctor        *DoctorService
	Catalog       catalog.Source

	logger  zerolog.Logger
	release func() error
}

// Option overrides a dependency built by Open.
type Option func(*openOptions)

type openOptions struct {
	backend   storage.Backend
	catalog   catalog.Source
	scheduler notify.Scheduler
}

// WithBackend uses b instead of the backend selected by the config.
func WithBackend(b storage.Backend) Option {
	return func(o *openOptions) { o.backend = b }
}

// WithCatalog uses src instead of an HTTP client for the configured API.
func WithCatalog(src catalog.Source) Option {
	return func(o *openOptions) { o.catalog = src }
}

// WithScheduler sets the timer source for notifications.
func WithScheduler(s notify.Scheduler) Option {
	return func(o *openOptions) { o.scheduler = s }
}

// Open builds every store from cfg. Startup maintenance and legacy merges
// run before Open returns.
func Open(ctx context.Context, cfg *config.Config, options ...Option) (*App, error) {
	var o openOptions
	for _, opt := range options {
		opt(&o)
	}

	printer, err := i18n.New(cfg.Locale)
	if err != nil {
		return nil, err
	}

	logger := logging.Component("shop")
	recorder := diagnostics.NewRecorder(logging.Component("diagnostics"), 0)

	backend, release := o.backend, func() error { return nil }
	if backend == nil {
		backend, release, err = openBackend(cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	kv := kvstore.New(ctx, backend,
		kvstore.Options{
			Prefix:           cfg.Storage.Prefix,
			MaxSize:          cfg.Storage.MaxSize,
			WarningThreshold: cfg.Storage.WarningThreshold,
			Retention:        cfg.Storage.Retention,
			LegacyKeys:       cfg.Storage.LegacyKeys,
			Collections:      []string{cart.DefaultKey, wishlist.DefaultKey, notify.DefaultKey},
		},
		kvstore.WithLogger(logging.Component("kvstore")),
		kvstore.WithReporter(recorder),
		kvstore.WithPrinter(printer),
	)

	cartStore := cart.New(ctx, kv,
		cart.Options{
			MaxLines:   cfg.Cart.MaxLines,
			QuotaKeep:  cfg.Cart.QuotaKeep,
			LegacyKeys: cfg.Cart.LegacyKeys,
		},
		cart.WithLogger(logging.Collection("cart", cart.DefaultKey)),
		cart.WithReporter(recorder),
		cart.WithPrinter(printer),
	)

	wishlistStore := wishlist.New(ctx, kv,
		wishlist.Options{
			MaxItems:   cfg.Wishlist.MaxItems,
			QuotaKeep:  cfg.Wishlist.QuotaKeep,
			LegacyKeys: cfg.Wishlist.LegacyKeys,
		},
		wishlist.WithLogger(logging.Collection("wishlist", wishlist.DefaultKey)),
		wishlist.WithReporter(recorder),
		wishlist.WithPrinter(printer),
	)

	var persister notify.Persister
	if cfg.Notifications.Persist {
		persister = kv
	}
	queueOpts := []notify.Option{
		notify.WithLogger(logging.Collection("notify", notify.DefaultKey)),
		notify.WithPrinter(printer),
	}
	if o.scheduler != nil {
		queueOpts = append(queueOpts, notify.WithScheduler(o.scheduler))
	}
	queue := notify.NewQueue(ctx, persister,
		notify.Options{
			MaxItems:        cfg.Notifications.MaxItems,
			DefaultDuration: cfg.Notifications.DefaultDuration,
		},
		queueOpts...,
	)

	src := o.catalog
	if src == nil {
		client, err := catalog.NewClient(catalog.Options{
			BaseURL:   cfg.Catalog.BaseURL,
			Timeout:   cfg.Catalog.Timeout,
			UserAgent: cfg.Catalog.UserAgent,
			CacheTTL:  cfg.Catalog.CacheTTL,
			Logger:    logging.Component("catalog"),
		})
		if err != nil {
			queue.Close()
			_ = release()
			return nil, fmt.Errorf("catalog client: %w", err)
		}
		src = client
	}

	return &App{
		Config:        cfg,
		Printer:       printer,
		Diagnostics:   recorder,
		Backend:       backend,
		KV:            kv,
		Cart:          cartStore,
		Wishlist:      wishlistStore,
		Notifications: queue,
		Transfer:      NewTransfer(cartStore, wishlistStore, printer, logging.Component("transfer")),
		Doctor:        NewDoctorService(kv, backend, recorder, cfg),
		Catalog:       src,
		logger:        logger,
		release:       release,
	}, nil
}

// StartSweep purges expired storage items every configured interval until
// ctx is cancelled.
func (a *App) StartSweep(ctx context.Context) {
	go sweep.Start(ctx, a.KV, a.Config.Storage.SweepInterval, a.logger)
}

// Reload re-reads the collections after the store changed underneath them,
// as storage clear and import do.
func (a *App) Reload(ctx context.Context) {
	a.Cart.Reload(ctx)
	a.Wishlist.Reload(ctx)
	a.Notifications.Reload(ctx)
}

// Close stops notification timers and releases the backend.
func (a *App) Close() error {
	a.Notifications.Close()
	if err := a.release(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}
