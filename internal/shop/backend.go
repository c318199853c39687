package shop

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/colonyops/storefront/internal/core/config"
	"github.com/colonyops/storefront/internal/core/storage"
	"github.com/colonyops/storefront/internal/data/db"
	"github.com/colonyops/storefront/internal/data/stores"
	"github.com/colonyops/storefront/internal/store/jsonfile"
)

// openBackend builds the native storage backend selected by the config and
// returns a function that releases it.
func openBackend(cfg *config.Config, logger zerolog.Logger) (storage.Backend, func() error, error) {
	nop := func() error { return nil }
	capacity := cfg.Storage.NativeCapacity

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return storage.NewMemory(storage.WithCapacity(capacity)), nop, nil

	case config.DriverJSONFile:
		return jsonfile.New(cfg.StoragePath(), capacity), nop, nil

	case config.DriverSQLite, "":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nop, fmt.Errorf("create data dir: %w", err)
		}

		opts := db.OpenOptions{
			MaxOpenConns: cfg.Storage.Database.MaxOpenConns,
			MaxIdleConns: cfg.Storage.Database.MaxIdleConns,
			BusyTimeout:  cfg.Storage.Database.BusyTimeoutMS,
		}
		database, err := db.Open(cfg.DataDir, opts)
		if err != nil && stores.IsCorruptionError(err) {
			logger.Warn().Err(err).Msg("database corrupted, moving it aside")
			if rerr := stores.RecoverFromCorruption(cfg.DataDir); rerr != nil {
				return nil, nop, fmt.Errorf("recover database: %w", rerr)
			}
			database, err = db.Open(cfg.DataDir, opts)
		}
		if err != nil {
			return nil, nop, fmt.Errorf("open database: %w", err)
		}
		return stores.NewLocalStorage(database, capacity), database.Close, nil

	default:
		return nil, nop, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
