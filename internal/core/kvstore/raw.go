package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/colonyops/storefront/internal/core/storage"
)

// ReadRaw decodes the JSON stored under the namespaced key into dest.
// Enveloped values are unwrapped so collections written by Set, Import or
// legacy migration load the same way as raw ones, and the unwrapped data is
// written back raw so the key leaves retention's reach. found is false when
// the key is absent.
func (s *Store) ReadRaw(ctx context.Context, key string, dest any) (found bool, err error) {
	entry, err := s.backend.Get(ctx, s.fullKey(key))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	data := entry.Value
	env, wrapped := decodeEnvelope(data)
	if wrapped {
		data = env.Data
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}

	if wrapped {
		if err := s.backend.Set(ctx, s.fullKey(key), data); err != nil {
			s.logger.Warn().Ctx(ctx).Err(err).Str("key", key).Msg("normalize enveloped collection")
		}
	}
	return true, nil
}

// WriteRaw stores value as plain JSON under the namespaced key. Only the
// backend's native capacity applies; the quota enforced by Set does not.
// Errors wrap storage.ErrQuotaExceeded or storage.ErrUnavailable.
func (s *Store) WriteRaw(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, s.fullKey(key), data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// DeleteRaw removes the namespaced key.
func (s *Store) DeleteRaw(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, s.fullKey(key)); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys returns the unprefixed namespaced keys matching pattern. Patterns use
// doublestar syntax; an empty pattern matches everything.
func (s *Store) Keys(ctx context.Context, pattern string) ([]string, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid key pattern %q", pattern)
	}

	keys, err := s.namespacedKeys(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		name := k[len(s.opts.Prefix):]
		if pattern != "" {
			ok, err := doublestar.Match(pattern, name)
			if err != nil {
				return nil, fmt.Errorf("match %q: %w", pattern, err)
			}
			if !ok {
				continue
			}
		}
		out = append(out, name)
	}
	return out, nil
}
