package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/colonyops/storefront/internal/core/i18n"
	"github.com/colonyops/storefront/internal/core/result"
	"github.com/colonyops/storefront/internal/core/storage"
)

// Set stores value under key wrapped in an envelope. The write is refused
// when usage already exceeds the quota or the new value would push it over.
func (s *Store) Set(ctx context.Context, key string, value any) result.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(ctx, key, value)
}

func (s *Store) set(ctx context.Context, key string, value any) result.Result {
	if err := s.backend.Probe(ctx); err != nil {
		return result.Fail(result.CodeStorageUnavailable, s.printer.T(i18n.StorageUnavailable))
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("encode value")
		return result.Fail(result.CodeInvalidInput, s.printer.T(i18n.StorageInvalid))
	}

	info, err := s.info(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("compute storage usage")
		return result.Fail(result.CodeInternal, s.printer.T(i18n.StorageSaveFailed))
	}
	if info.QuotaExceeded {
		return result.Fail(result.CodeQuotaExceeded, s.printer.T(i18n.StorageFull))
	}

	full := s.fullKey(key)
	now := s.now()
	meta := Metadata{
		Created:      now,
		LastModified: now,
		Size:         int64(len(data)),
		Version:      EnvelopeVersion,
	}

	var oldSize int64
	if existing, err := s.backend.Get(ctx, full); err == nil {
		oldSize = int64(len(existing.Value))
		if env, ok := decodeEnvelope(existing.Value); ok && !env.Metadata.Created.IsZero() {
			meta.Created = env.Metadata.Created
		}
	}

	encoded, err := json.Marshal(envelope{Data: data, Metadata: &meta})
	if err != nil {
		return result.Fail(result.CodeInternal, s.printer.T(i18n.StorageSaveFailed))
	}

	if info.Used-oldSize+int64(len(encoded)) > s.opts.MaxSize {
		return result.Fail(result.CodeQuotaExceeded, s.printer.T(i18n.StorageInsufficient))
	}

	if err := s.backend.Set(ctx, full, encoded); err != nil {
		switch {
		case errors.Is(err, storage.ErrQuotaExceeded):
			return result.Fail(result.CodeQuotaExceeded, s.printer.T(i18n.StorageFull))
		case errors.Is(err, storage.ErrUnavailable):
			return result.Fail(result.CodeStorageUnavailable, s.printer.T(i18n.StorageUnavailable))
		default:
			s.logger.Error().Ctx(ctx).Err(err).Str("key", key).Msg("write item")
			return result.Fail(result.CodeInternal, s.printer.T(i18n.StorageSaveFailed))
		}
	}

	return result.OK(s.printer.T(i18n.StorageSaved))
}

// Get decodes the value stored under key into dest and records the access
// time. It fails when the key is absent or the stored value is not a valid
// envelope or does not decode into dest.
func (s *Store) Get(ctx context.Context, key string, dest any) result.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Probe(ctx); err != nil {
		return result.Fail(result.CodeStorageUnavailable, s.printer.T(i18n.StorageUnavailable))
	}

	full := s.fullKey(key)
	entry, err := s.backend.Get(ctx, full)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return result.Fail(result.CodeNotFound, s.printer.T(i18n.StorageNotFound))
		}
		s.logger.Error().Ctx(ctx).Err(err).Str("key", key).Msg("read item")
		return result.Fail(result.CodeInternal, s.printer.T(i18n.StorageLoadFailed))
	}

	env, ok := decodeEnvelope(entry.Value)
	if !ok || len(env.Data) == 0 || string(env.Data) == "null" {
		return result.Fail(result.CodeInvalidInput, s.printer.T(i18n.StorageInvalid))
	}
	if dest != nil {
		if err := json.Unmarshal(env.Data, dest); err != nil {
			return result.Fail(result.CodeInvalidInput, s.printer.T(i18n.StorageInvalid))
		}
	}

	accessed := s.now()
	env.Metadata.LastAccessed = &accessed
	if encoded, err := json.Marshal(env); err == nil {
		if err := s.backend.Set(ctx, full, encoded); err != nil {
			s.logger.Debug().Err(err).Str("key", key).Msg("record access time")
		}
	}

	return result.OK(s.printer.T(i18n.StorageLoaded))
}

// Remove deletes key. Removing an absent key succeeds.
func (s *Store) Remove(ctx context.Context, key string) result.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Probe(ctx); err != nil {
		return result.Fail(result.CodeStorageUnavailable, s.printer.T(i18n.StorageUnavailable))
	}
	if err := s.backend.Delete(ctx, s.fullKey(key)); err != nil {
		s.logger.Error().Ctx(ctx).Err(err).Str("key", key).Msg("remove item")
		return result.Fail(result.CodeInternal, s.printer.T(i18n.StorageRemoveFailed))
	}
	return result.OK(s.printer.T(i18n.StorageRemoved))
}

// ClearAll removes every namespaced key and reports how many were removed.
// Keys outside the namespace are left alone.
func (s *Store) ClearAll(ctx context.Context) result.ClearResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearAll(ctx)
}

func (s *Store) clearAll(ctx context.Context) result.ClearResult {
	if err := s.backend.Probe(ctx); err != nil {
		return result.ClearResult{Result: result.Fail(result.CodeStorageUnavailable, s.printer.T(i18n.StorageUnavailable))}
	}

	keys, err := s.namespacedKeys(ctx)
	if err != nil {
		s.logger.Error().Ctx(ctx).Err(err).Msg("list keys")
		return result.ClearResult{Result: result.Fail(result.CodeInternal, s.printer.T(i18n.StorageClearFailed))}
	}

	cleared := 0
	for _, k := range keys {
		if err := s.backend.Delete(ctx, k); err != nil {
			s.logger.Error().Ctx(ctx).Err(err).Str("key", k).Msg("clear item")
			return result.ClearResult{
				Result:       result.Fail(result.CodeInternal, s.printer.T(i18n.StorageClearFailed)),
				ClearedCount: cleared,
			}
		}
		cleared++
	}

	return result.ClearResult{
		Result:       result.OK(s.printer.T(i18n.StorageCleared, cleared)),
		ClearedCount: cleared,
	}
}

// StorageInfo reports usage of the namespace against the quota. An
// unavailable backend reports zero usage.
func (s *Store) StorageInfo(ctx context.Context) Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := s.info(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("compute storage usage")
		return Info{Available: s.opts.MaxSize}
	}
	return info
}

// info sums the stored byte length of every namespaced value.
func (s *Store) info(ctx context.Context) (Info, error) {
	keys, err := s.namespacedKeys(ctx)
	if err != nil {
		return Info{}, err
	}

	var used int64
	for _, k := range keys {
		entry, err := s.backend.Get(ctx, k)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return Info{}, err
		}
		used += int64(len(entry.Value))
	}

	return Info{
		Used:          used,
		Available:     s.opts.MaxSize,
		Percentage:    float64(used) / float64(s.opts.MaxSize) * 100,
		QuotaExceeded: used > s.opts.MaxSize,
	}, nil
}

// AllItems lists every namespaced item, newest first. Values that are not
// valid JSON are skipped.
func (s *Store) AllItems(ctx context.Context) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.allItems(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("list items")
		return nil
	}
	return items
}

func (s *Store) allItems(ctx context.Context) ([]Item, error) {
	keys, err := s.namespacedKeys(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(keys))
	for _, k := range keys {
		entry, err := s.backend.Get(ctx, k)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, err
		}

		item := Item{
			Key:          k[len(s.opts.Prefix):],
			Size:         int64(len(entry.Value)),
			LastModified: entry.UpdatedAt.UTC(),
		}
		if env, ok := decodeEnvelope(entry.Value); ok {
			item.Value = env.Data
			item.Metadata = env.Metadata
			if !env.Metadata.LastModified.IsZero() {
				item.LastModified = env.Metadata.LastModified
			}
		} else {
			if !json.Valid(entry.Value) {
				s.logger.Warn().Str("key", k).Msg("skip item with invalid json")
				continue
			}
			item.Value = json.RawMessage(entry.Value)
		}
		if item.LastModified.IsZero() {
			item.LastModified = s.now()
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].LastModified.After(items[j].LastModified)
	})
	return items, nil
}
