// Package config handles configuration loading and validation for storefront.
package config

import (
	"path/filepath"
	"time"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverJSONFile = "jsonfile"
	DriverMemory   = "memory"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "STOREFRONT_"

// Config holds the application configuration.
type Config struct {
	Profile       string              `yaml:"profile"        env:"PROFILE"`
	Locale        string              `yaml:"locale"         env:"LOCALE"`
	LogLevel      string              `yaml:"log_level"      env:"LOG_LEVEL"`
	Storage       StorageConfig       `yaml:"storage"        envPrefix:"STORAGE_"`
	Cart          CartConfig          `yaml:"cart"           envPrefix:"CART_"`
	Wishlist      WishlistConfig      `yaml:"wishlist"       envPrefix:"WISHLIST_"`
	Notifications NotificationsConfig `yaml:"notifications"  envPrefix:"NOTIFICATIONS_"`
	Catalog       CatalogConfig       `yaml:"catalog"        envPrefix:"CATALOG_"`
	DataDir       string              `yaml:"-"` // set by caller, not from config file
}

// StorageConfig configures the key-value store and its backend.
type StorageConfig struct {
	Driver           string         `yaml:"driver"            env:"DRIVER"`
	Path             string         `yaml:"path"              env:"PATH"` // jsonfile location; defaults under DataDir
	Prefix           string         `yaml:"prefix"            env:"PREFIX"`
	MaxSize          int64          `yaml:"max_size"          env:"MAX_SIZE"`
	WarningThreshold float64        `yaml:"warning_threshold" env:"WARNING_THRESHOLD"`
	Retention        time.Duration  `yaml:"retention"         env:"RETENTION"`
	NativeCapacity   int64          `yaml:"native_capacity"   env:"NATIVE_CAPACITY"`
	LegacyKeys       []string       `yaml:"legacy_keys"       env:"LEGACY_KEYS" envSeparator:","`
	SweepInterval    time.Duration  `yaml:"sweep_interval"    env:"SWEEP_INTERVAL"`
	Database         DatabaseConfig `yaml:"database"          envPrefix:"DATABASE_"`
}

// DatabaseConfig tunes the SQLite connection pool.
type DatabaseConfig struct {
	MaxOpenConns  int `yaml:"max_open_conns"  env:"MAX_OPEN_CONNS"`
	MaxIdleConns  int `yaml:"max_idle_conns"  env:"MAX_IDLE_CONNS"`
	BusyTimeoutMS int `yaml:"busy_timeout_ms" env:"BUSY_TIMEOUT_MS"`
}

type CartConfig struct {
	MaxLines   int      `yaml:"max_lines"   env:"MAX_LINES"`
	QuotaKeep  int      `yaml:"quota_keep"  env:"QUOTA_KEEP"`
	LegacyKeys []string `yaml:"legacy_keys" env:"LEGACY_KEYS" envSeparator:","`
}

type WishlistConfig struct {
	MaxItems   int      `yaml:"max_items"   env:"MAX_ITEMS"`
	QuotaKeep  int      `yaml:"quota_keep"  env:"QUOTA_KEEP"`
	LegacyKeys []string `yaml:"legacy_keys" env:"LEGACY_KEYS" envSeparator:","`
}

type NotificationsConfig struct {
	MaxItems        int           `yaml:"max_items"        env:"MAX_ITEMS"`
	DefaultDuration time.Duration `yaml:"default_duration" env:"DEFAULT_DURATION"`
	Persist         bool          `yaml:"persist"          env:"PERSIST"`
}

// CatalogConfig points at the remote product API.
type CatalogConfig struct {
	BaseURL   string        `yaml:"base_url"   env:"BASE_URL"`
	Timeout   time.Duration `yaml:"timeout"    env:"TIMEOUT"`
	UserAgent string        `yaml:"user_agent" env:"USER_AGENT"`
	CacheTTL  time.Duration `yaml:"cache_ttl"  env:"CACHE_TTL"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Profile:  ProfileProduction,
		Locale:   "ar",
		LogLevel: "info",
		Storage: StorageConfig{
			Driver:           DriverSQLite,
			Prefix:           "elfateh_",
			MaxSize:          5 * 1024 * 1024,
			WarningThreshold: 80,
			Retention:        30 * 24 * time.Hour,
			NativeCapacity:   10 * 1024 * 1024,
			LegacyKeys:       []string{"cart", "wishlist", "favorites", "user_cart", "user_wishlist", "shopping_cart"},
			SweepInterval:    time.Hour,
			Database: DatabaseConfig{
				MaxOpenConns:  4,
				MaxIdleConns:  2,
				BusyTimeoutMS: 5000,
			},
		},
		Cart: CartConfig{
			MaxLines:   100,
			QuotaKeep:  10,
			LegacyKeys: []string{"shopping_cart", "user_cart"},
		},
		Wishlist: WishlistConfig{
			MaxItems:   200,
			QuotaKeep:  20,
			LegacyKeys: []string{"favorites", "user_wishlist"},
		},
		Notifications: NotificationsConfig{
			MaxItems:        10,
			DefaultDuration: 5 * time.Second,
			Persist:         true,
		},
		Catalog: CatalogConfig{
			BaseURL:   "http://localhost:3000/api",
			Timeout:   10 * time.Second,
			UserAgent: "storefront",
			CacheTTL:  5 * time.Minute,
		},
	}
}

// StoragePath returns the JSON file used by the jsonfile driver.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(c.DataDir, "local_storage.json")
}

// LogFile returns the default log file location.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "storefront.log")
}

// BusyTimeout returns the SQLite busy timeout.
func (c *Config) BusyTimeout() time.Duration {
	return time.Duration(c.Storage.Database.BusyTimeoutMS) * time.Millisecond
}
