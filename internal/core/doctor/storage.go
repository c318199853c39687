package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/colonyops/storefront/internal/core/kvstore"
)

// StorageCheck reports availability, quota usage, expired items and legacy
// keys that were never migrated. With autofix it purges and migrates.
type StorageCheck struct {
	kv      *kvstore.Store
	autofix bool
}

// NewStorageCheck creates a new storage check.
func NewStorageCheck(kv *kvstore.Store, autofix bool) *StorageCheck {
	return &StorageCheck{kv: kv, autofix: autofix}
}

func (c *StorageCheck) Name() string {
	return "Storage"
}

func (c *StorageCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	health := c.kv.CheckHealth(ctx)
	if health.Status == kvstore.HealthUnavailable {
		result.add("backend", StatusFail, "storage is not available")
		return result
	}
	result.add("backend", StatusPass, "prefix "+c.kv.Prefix())

	usage := fmt.Sprintf("%d of %d bytes (%.1f%%)", health.Info.Used, health.Info.Available, health.Info.Percentage)
	switch health.Status {
	case kvstore.HealthCritical:
		result.add("usage", StatusFail, usage+", quota exceeded")
	case kvstore.HealthWarning:
		result.add("usage", StatusWarn, usage)
	default:
		result.add("usage", StatusPass, usage)
	}

	c.expired(ctx, &result)
	c.legacy(ctx, &result)
	return result
}

func (c *StorageCheck) expired(ctx context.Context, result *Result) {
	n, err := c.kv.CountExpired(ctx)
	switch {
	case err != nil:
		result.add("expired items", StatusFail, err.Error())
		return
	case n == 0:
		result.add("expired items", StatusPass, "none")
		return
	}

	if !c.autofix {
		result.addFixable("expired items", StatusWarn, fmt.Sprintf("%d past retention", n))
		return
	}
	purged, err := c.kv.PurgeExpired(ctx)
	if err != nil {
		result.addFixable("expired items", StatusFail, fmt.Sprintf("purge failed: %v", err))
		return
	}
	result.add("expired items", StatusPass, fmt.Sprintf("purged %d", purged))
}

func (c *StorageCheck) legacy(ctx context.Context, result *Result) {
	pending, err := c.kv.PendingLegacy(ctx)
	switch {
	case err != nil:
		result.add("legacy keys", StatusFail, err.Error())
		return
	case len(pending) == 0:
		result.add("legacy keys", StatusPass, "none")
		return
	}

	if c.autofix {
		c.kv.MigrateLegacy(ctx)
		if pending, err = c.kv.PendingLegacy(ctx); err == nil && len(pending) == 0 {
			result.add("legacy keys", StatusPass, "migrated")
			return
		}
	}
	// Keys that survive a migration attempt hold unparseable values or
	// collide with an existing namespaced key.
	result.addFixable("legacy keys", StatusWarn, strings.Join(pending, ", "))
}
