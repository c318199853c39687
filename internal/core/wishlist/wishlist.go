// Package wishlist implements the saved-for-later list: an observable set
// of product snapshots, unique by id, persisted as a raw JSON array.
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/storefront/internal/core/diagnostics"
	"github.com/colonyops/storefront/internal/core/i18n"
	"github.com/colonyops/storefront/internal/core/product"
	"github.com/colonyops/storefront/internal/core/result"
	"github.com/colonyops/storefront/internal/core/storage"
	"github.com/colonyops/storefront/pkg/observable"
)

const (
	DefaultKey       = "wishlist"
	DefaultMaxItems  = 200
	DefaultQuotaKeep = 20
)

// DefaultLegacyKeys are merged into the wishlist on startup and then removed.
var DefaultLegacyKeys = []string{"favorites", "user_wishlist"}

// Persister is the subset of the key-value store the wishlist writes through.
type Persister interface {
	ReadRaw(ctx context.Context, key string, dest any) (bool, error)
	WriteRaw(ctx context.Context, key string, value any) error
	DeleteRaw(ctx context.Context, key string) error
}

type Options struct {
	Key        string
	MaxItems   int
	QuotaKeep  int
	LegacyKeys []string
}

func (o Options) withDefaults() Options {
	if o.Key == "" {
		o.Key = DefaultKey
	}
	if o.MaxItems <= 0 {
		o.MaxItems = DefaultMaxItems
	}
	if o.QuotaKeep <= 0 {
		o.QuotaKeep = DefaultQuotaKeep
	}
	if o.LegacyKeys == nil {
		o.LegacyKeys = DefaultLegacyKeys
	}
	return o
}

type Option func(*Store)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithReporter(r diagnostics.Reporter) Option {
	return func(s *Store) { s.reporter = r }
}

func WithPrinter(p *i18n.Printer) Option {
	return func(s *Store) { s.printer = p }
}

// WithClock sets the time source used for export dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the wishlist. It is safe for concurrent use.
type Store struct {
	kv       Persister
	opts     Options
	logger   zerolog.Logger
	reporter diagnostics.Reporter
	printer  *i18n.Printer
	now      func() time.Time

	mu      sync.Mutex
	items   []product.Product
	subject *observable.Subject[[]product.Product]
}

// New loads the persisted wishlist, dropping entries without an id, a name
// or a non-zero price, and merges any legacy wishlists into it.
func New(ctx context.Context, kv Persister, opts Options, options ...Option) *Store {
	s := &Store{
		kv:       kv,
		opts:     opts.withDefaults(),
		logger:   zerolog.Nop(),
		reporter: diagnostics.Nop{},
		now:      time.Now,
		subject:  observable.New[[]product.Product](nil),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.printer == nil {
		s.printer = i18n.MustNew(i18n.DefaultLocale)
	}

	s.items = s.load(ctx)
	if s.mergeLegacy(ctx) > 0 {
		s.persist(ctx)
	}
	s.subject.Publish(s.snapshot())
	return s
}

func loadable(p product.Product) bool {
	return p.Validate() == nil && strings.TrimSpace(p.Name) != "" && p.Price != 0
}

func (s *Store) load(ctx context.Context) []product.Product {
	var raw []json.RawMessage
	found, err := s.kv.ReadRaw(ctx, s.opts.Key, &raw)
	if err != nil {
		s.logger.Warn().Err(err).Msg("wishlist data unreadable, starting empty")
		s.reporter.Report(diagnostics.Event{Kind: diagnostics.KindDropped, Source: s.opts.Key, Detail: "not a list"})
		return nil
	}
	if !found {
		return nil
	}

	items := make([]product.Product, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	dropped := 0
	for _, r := range raw {
		var p product.Product
		if err := json.Unmarshal(r, &p); err != nil || !loadable(p) || seen[p.ID] {
			dropped++
			continue
		}
		seen[p.ID] = true
		items = append(items, p)
	}

	if dropped > 0 {
		s.reporter.Report(diagnostics.Event{
			Kind:   diagnostics.KindDropped,
			Source: s.opts.Key,
			Count:  dropped,
			Detail: "malformed wishlist entries",
		})
	}
	return items
}

func (s *Store) mergeLegacy(ctx context.Context) int {
	merged := 0
	for _, key := range s.opts.LegacyKeys {
		var raw []json.RawMessage
		found, err := s.kv.ReadRaw(ctx, key, &raw)
		if err != nil {
			s.reporter.Report(diagnostics.Event{Kind: diagnostics.KindMigrationFailed, Source: key, Detail: err.Error()})
			continue
		}
		if !found || len(raw) == 0 {
			continue
		}

		for _, r := range raw {
			var p product.Product
			if err := json.Unmarshal(r, &p); err != nil || p.Validate() != nil || s.index(p.ID) >= 0 {
				continue
			}
			if s.add(p).Success {
				merged++
			}
		}

		if err := s.kv.DeleteRaw(ctx, key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("delete legacy wishlist")
			continue
		}
		s.reporter.Report(diagnostics.Event{Kind: diagnostics.KindMigrated, Source: key, Count: len(raw)})
	}
	return merged
}

// persist writes the items, keeping the most recent QuotaKeep entries and
// retrying once when the backend is full. Callers hold mu.
func (s *Store) persist(ctx context.Context) {
	if s.items == nil {
		s.items = []product.Product{}
	}
	err := s.kv.WriteRaw(ctx, s.opts.Key, s.items)
	if err == nil {
		return
	}
	if !errors.Is(err, storage.ErrQuotaExceeded) {
		s.logger.Error().Ctx(ctx).Err(err).Msg("save wishlist")
		return
	}
	if len(s.items) <= s.opts.QuotaKeep {
		s.logger.Warn().Ctx(ctx).Err(err).Msg("save wishlist: quota exceeded")
		return
	}

	removed := len(s.items) - s.opts.QuotaKeep
	s.items = append([]product.Product(nil), s.items[removed:]...)
	s.reporter.Report(diagnostics.Event{
		Kind:   diagnostics.KindTruncated,
		Source: s.opts.Key,
		Count:  removed,
		Detail: fmt.Sprintf("kept last %d entries", s.opts.QuotaKeep),
	})

	if err := s.kv.WriteRaw(ctx, s.opts.Key, s.items); err != nil {
		s.logger.Error().Ctx(ctx).Err(err).Msg("save wishlist after truncation")
	}
}

func (s *Store) commit(ctx context.Context) {
	s.persist(ctx)
	s.subject.Handoff(s.mu.Unlock, s.snapshot())
}

func (s *Store) snapshot() []product.Product {
	out := make([]product.Product, len(s.items))
	for i, p := range s.items {
		out[i] = p.Clone()
	}
	return out
}

func (s *Store) index(id string) int {
	for i, p := range s.items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// add applies Add to the in-memory items. Callers hold mu.
func (s *Store) add(p product.Product) result.Result {
	if err := p.Validate(); err != nil {
		return result.Fail(result.CodeInvalidProduct, s.printer.T(i18n.WishlistInvalidProduct))
	}
	if s.index(p.ID) >= 0 {
		return result.Fail(result.CodeAlreadyPresent, s.printer.T(i18n.WishlistAlreadyPresent))
	}
	if len(s.items) >= s.opts.MaxItems {
		return result.Fail(result.CodeWishlistFull, s.printer.T(i18n.WishlistFull))
	}

	s.items = append(s.items, p.Clone())
	return result.OK(s.printer.T(i18n.WishlistAdded, p.Name))
}
