package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/colonyops/storefront/internal/core/diagnostics"
	"github.com/colonyops/storefront/internal/core/storage"
)

// HealthStatus is the outcome of CheckHealth.
type HealthStatus string

const (
	HealthOK          HealthStatus = "ok"
	HealthWarning     HealthStatus = "warning"
	HealthCritical    HealthStatus = "critical"
	HealthUnavailable HealthStatus = "unavailable"
)

// Health is returned by CheckHealth.
type Health struct {
	Status HealthStatus `json:"status"`
	Info   Info         `json:"info"`
}

func (s *Store) startup(ctx context.Context) {
	if err := s.backend.Probe(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("storage unavailable, skipping startup maintenance")
		return
	}

	s.MigrateLegacy(ctx)
	if _, err := s.PurgeExpired(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("purge expired items")
	}
	s.CheckHealth(ctx)
}

// MigrateLegacy moves the configured legacy keys into the namespace as
// enveloped values and deletes the originals. A key whose value does not
// parse is left in place, as is one whose namespaced target already exists.
// Returns the number of keys migrated.
func (s *Store) MigrateLegacy(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	migrated := 0
	for _, key := range s.opts.LegacyKeys {
		entry, err := s.backend.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				s.logger.Warn().Err(err).Str("key", key).Msg("read legacy key")
			}
			continue
		}

		var value any
		if err := json.Unmarshal(entry.Value, &value); err != nil || value == nil {
			s.reporter.Report(diagnostics.Event{
				Kind:   diagnostics.KindMigrationFailed,
				Source: key,
				Detail: "value is not valid json",
			})
			continue
		}

		if _, err := s.backend.Get(ctx, s.fullKey(key)); err == nil {
			s.reporter.Report(diagnostics.Event{
				Kind:   diagnostics.KindMigrationFailed,
				Source: key,
				Detail: "namespaced key already exists",
			})
			continue
		}

		if res := s.set(ctx, key, json.RawMessage(entry.Value)); !res.Success {
			s.reporter.Report(diagnostics.Event{
				Kind:   diagnostics.KindMigrationFailed,
				Source: key,
				Detail: res.Message,
			})
			continue
		}
		if err := s.backend.Delete(ctx, key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("delete legacy key")
		}

		s.reporter.Report(diagnostics.Event{Kind: diagnostics.KindMigrated, Source: key})
		migrated++
	}
	return migrated
}

// PurgeExpired deletes enveloped items whose last modification is older than
// the retention period. Raw values and collection keys are never purged, even
// when a migration or import left the collection enveloped.
func (s *Store) PurgeExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.allItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("list items: %w", err)
	}

	cutoff := s.now().Add(-s.opts.Retention)
	purged := 0
	for _, it := range items {
		if !s.expired(it, cutoff) {
			continue
		}
		if err := s.backend.Delete(ctx, s.fullKey(it.Key)); err != nil {
			return purged, fmt.Errorf("delete %s: %w", it.Key, err)
		}
		purged++
	}

	if purged > 0 {
		s.reporter.Report(diagnostics.Event{
			Kind:   diagnostics.KindPurged,
			Source: s.opts.Prefix,
			Count:  purged,
			Detail: "older than " + s.opts.Retention.String(),
		})
	}
	return purged, nil
}

// CheckHealth logs a warning once usage crosses the warning threshold and
// an error once the quota is exceeded.
func (s *Store) CheckHealth(ctx context.Context) Health {
	if err := s.backend.Probe(ctx); err != nil {
		s.logger.Error().Err(err).Msg("storage unavailable")
		return Health{Status: HealthUnavailable}
	}

	info := s.StorageInfo(ctx)
	h := Health{Status: HealthOK, Info: info}
	switch {
	case info.QuotaExceeded:
		h.Status = HealthCritical
		s.logger.Error().Int64("used", info.Used).Int64("max", info.Available).Msg("storage quota exceeded")
	case info.Percentage > s.opts.WarningThreshold:
		h.Status = HealthWarning
		s.logger.Warn().Float64("percentage", info.Percentage).Msg("storage usage above warning threshold")
	}
	return h
}

// MigratePrefix moves every key under oldPrefix into the current namespace,
// keeping the stored bytes unchanged. Keys that already exist in the
// current namespace are not overwritten. Returns the number of keys moved.
func (s *Store) MigratePrefix(ctx context.Context, oldPrefix string) (int, error) {
	if oldPrefix == "" || oldPrefix == s.opts.Prefix {
		return 0, fmt.Errorf("invalid source prefix %q", oldPrefix)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.backend.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("list keys: %w", err)
	}

	moved := 0
	for _, k := range keys {
		if !strings.HasPrefix(k, oldPrefix) {
			continue
		}
		if s.owns(k) && len(s.opts.Prefix) >= len(oldPrefix) {
			continue
		}
		target := s.fullKey(strings.TrimPrefix(k, oldPrefix))
		if _, err := s.backend.Get(ctx, target); err == nil {
			s.reporter.Report(diagnostics.Event{
				Kind:   diagnostics.KindMigrationFailed,
				Source: k,
				Detail: "target key already exists",
			})
			continue
		}

		entry, err := s.backend.Get(ctx, k)
		if err != nil {
			continue
		}
		if err := s.backend.Set(ctx, target, entry.Value); err != nil {
			return moved, fmt.Errorf("write %s: %w", target, err)
		}
		if err := s.backend.Delete(ctx, k); err != nil {
			return moved, fmt.Errorf("delete %s: %w", k, err)
		}
		moved++
	}

	if moved > 0 {
		s.reporter.Report(diagnostics.Event{
			Kind:   diagnostics.KindMigrated,
			Source: oldPrefix,
			Count:  moved,
		})
	}
	return moved, nil
}

// PendingLegacy returns the configured legacy keys that are still present
// outside the namespace.
func (s *Store) PendingLegacy(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []string
	for _, key := range s.opts.LegacyKeys {
		_, err := s.backend.Get(ctx, key)
		switch {
		case err == nil:
			pending = append(pending, key)
		case !errors.Is(err, storage.ErrNotFound):
			return pending, fmt.Errorf("read %s: %w", key, err)
		}
	}
	return pending, nil
}

// CountExpired returns how many enveloped items PurgeExpired would delete.
func (s *Store) CountExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.allItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("list items: %w", err)
	}

	cutoff := s.now().Add(-s.opts.Retention)
	n := 0
	for _, it := range items {
		if s.expired(it, cutoff) {
			n++
		}
	}
	return n, nil
}

func (s *Store) expired(it Item, cutoff time.Time) bool {
	if it.Metadata == nil || !it.LastModified.Before(cutoff) {
		return false
	}
	return !slices.Contains(s.opts.Collections, it.Key)
}
