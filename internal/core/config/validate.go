package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/storefront/internal/core/i18n"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, notBlank),
		criterio.Run("locale", c.Locale, supportedLocale),
		criterio.Run("log_level", c.LogLevel, validLogLevel),
		c.validateStorage(),
		c.validateCollections(),
		criterio.Run("catalog.base_url", c.Catalog.BaseURL, validBaseURL),
	)
}

// ValidateDeep runs Validate plus file system checks for the config file
// and data directory.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Storage.Driver == DriverMemory && c.Profile != ProfileTest {
		warnings = append(warnings, ValidationWarning{
			Category: "Storage",
			Item:     "driver",
			Message:  "memory driver does not persist data between runs",
		})
	}
	if c.Storage.NativeCapacity > 0 && c.Storage.NativeCapacity < c.Storage.MaxSize {
		warnings = append(warnings, ValidationWarning{
			Category: "Storage",
			Item:     "native_capacity",
			Message:  "native capacity is below max_size; collection writes may be truncated before the quota is reached",
		})
	}
	if c.Storage.SweepInterval == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Storage",
			Item:     "sweep_interval",
			Message:  "expired items are only purged at startup",
		})
	}

	return warnings
}

func (c *Config) validateStorage() error {
	s := c.Storage
	var errs criterio.FieldErrorsBuilder

	switch s.Driver {
	case DriverSQLite, DriverJSONFile, DriverMemory:
	default:
		errs = errs.Append("storage.driver", fmt.Errorf("must be one of %s, %s, %s", DriverSQLite, DriverJSONFile, DriverMemory))
	}
	if strings.TrimSpace(s.Prefix) == "" {
		errs = errs.Append("storage.prefix", fmt.Errorf("cannot be empty"))
	}
	if s.MaxSize <= 0 {
		errs = errs.Append("storage.max_size", fmt.Errorf("must be positive"))
	}
	if s.WarningThreshold <= 0 || s.WarningThreshold > 100 {
		errs = errs.Append("storage.warning_threshold", fmt.Errorf("must be between 0 and 100"))
	}
	if s.Retention <= 0 {
		errs = errs.Append("storage.retention", fmt.Errorf("must be positive"))
	}
	if s.NativeCapacity < 0 {
		errs = errs.Append("storage.native_capacity", fmt.Errorf("cannot be negative"))
	}
	if s.SweepInterval < 0 {
		errs = errs.Append("storage.sweep_interval", fmt.Errorf("cannot be negative"))
	}
	for i, k := range s.LegacyKeys {
		if strings.HasPrefix(k, s.Prefix) {
			errs = errs.Append(fmt.Sprintf("storage.legacy_keys[%d]", i), fmt.Errorf("%q is already namespaced", k))
		}
	}
	if s.Database.MaxOpenConns < 1 {
		errs = errs.Append("storage.database.max_open_conns", fmt.Errorf("must be at least 1"))
	}
	if s.Database.MaxIdleConns < 0 {
		errs = errs.Append("storage.database.max_idle_conns", fmt.Errorf("cannot be negative"))
	}
	if s.Database.BusyTimeoutMS < 0 {
		errs = errs.Append("storage.database.busy_timeout_ms", fmt.Errorf("cannot be negative"))
	}

	return errs.ToError()
}

func (c *Config) validateCollections() error {
	var errs criterio.FieldErrorsBuilder

	if c.Cart.MaxLines < 1 {
		errs = errs.Append("cart.max_lines", fmt.Errorf("must be at least 1"))
	}
	if c.Cart.QuotaKeep < 1 || c.Cart.QuotaKeep > c.Cart.MaxLines {
		errs = errs.Append("cart.quota_keep", fmt.Errorf("must be between 1 and max_lines"))
	}
	if c.Wishlist.MaxItems < 1 {
		errs = errs.Append("wishlist.max_items", fmt.Errorf("must be at least 1"))
	}
	if c.Wishlist.QuotaKeep < 1 || c.Wishlist.QuotaKeep > c.Wishlist.MaxItems {
		errs = errs.Append("wishlist.quota_keep", fmt.Errorf("must be between 1 and max_items"))
	}
	if c.Notifications.MaxItems < 1 {
		errs = errs.Append("notifications.max_items", fmt.Errorf("must be at least 1"))
	}
	if c.Notifications.DefaultDuration <= 0 {
		errs = errs.Append("notifications.default_duration", fmt.Errorf("must be positive"))
	}

	return errs.ToError()
}

func notBlank(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func supportedLocale(locale string) error {
	if !i18n.Supported(locale) {
		return fmt.Errorf("unsupported locale %q (have %s)", locale, strings.Join(i18n.Locales(), ", "))
	}
	return nil
}

func validLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
		return nil
	}
	return fmt.Errorf("invalid log level %q", level)
}

func validBaseURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist accepts a missing path or an existing directory.
func isDirectoryOrNotExist(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
