package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.DataDir = "/data"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty data dir", func(c *Config) { c.DataDir = " " }, "data_dir"},
		{"unsupported locale", func(c *Config) { c.Locale = "fr" }, "locale"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "redis" }, "storage.driver"},
		{"empty prefix", func(c *Config) { c.Storage.Prefix = "" }, "storage.prefix"},
		{"zero max size", func(c *Config) { c.Storage.MaxSize = 0 }, "storage.max_size"},
		{"threshold above 100", func(c *Config) { c.Storage.WarningThreshold = 120 }, "storage.warning_threshold"},
		{"zero retention", func(c *Config) { c.Storage.Retention = 0 }, "storage.retention"},
		{"namespaced legacy key", func(c *Config) { c.Storage.LegacyKeys = []string{"elfateh_cart"} }, "storage.legacy_keys[0]"},
		{"no connections", func(c *Config) { c.Storage.Database.MaxOpenConns = 0 }, "storage.database.max_open_conns"},
		{"quota keep above cap", func(c *Config) { c.Cart.QuotaKeep = 500 }, "cart.quota_keep"},
		{"zero wishlist cap", func(c *Config) { c.Wishlist.MaxItems = 0 }, "wishlist.max_items"},
		{"zero notification duration", func(c *Config) { c.Notifications.DefaultDuration = 0 }, "notifications.default_duration"},
		{"catalog scheme", func(c *Config) { c.Catalog.BaseURL = "ftp://x" }, "catalog.base_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateDeep(t *testing.T) {
	dir := t.TempDir()

	cfg := validConfig()
	cfg.DataDir = dir
	assert.NoError(t, cfg.ValidateDeep(filepath.Join(dir, "missing.yaml")))

	assert.Error(t, cfg.ValidateDeep(dir), "config path is a directory")

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	cfg.DataDir = file
	assert.Error(t, cfg.ValidateDeep(""))
}

func TestWarnings(t *testing.T) {
	cfg := validConfig()
	assert.Empty(t, cfg.Warnings())

	cfg.Storage.Driver = DriverMemory
	cfg.Storage.NativeCapacity = 1024
	cfg.Storage.SweepInterval = 0

	items := map[string]bool{}
	for _, w := range cfg.Warnings() {
		items[w.Item] = true
	}
	assert.Equal(t, map[string]bool{"driver": true, "native_capacity": true, "sweep_interval": true}, items)
}
