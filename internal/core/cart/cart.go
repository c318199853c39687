// Package cart implements the shopping cart: an observable list of product
// lines persisted as a raw JSON array in the key-value store.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/storefront/internal/core/diagnostics"
	"github.com/colonyops/storefront/internal/core/i18n"
	"github.com/colonyops/storefront/internal/core/product"
	"github.com/colonyops/storefront/internal/core/storage"
	"github.com/colonyops/storefront/pkg/observable"
)

const (
	DefaultKey       = "cart"
	DefaultMaxLines  = 100
	DefaultQuotaKeep = 10
)

// DefaultLegacyKeys are merged into the cart on startup and then removed.
var DefaultLegacyKeys = []string{"shopping_cart", "user_cart"}

// Persister is the subset of the key-value store the cart writes through.
type Persister interface {
	ReadRaw(ctx context.Context, key string, dest any) (bool, error)
	WriteRaw(ctx context.Context, key string, value any) error
	DeleteRaw(ctx context.Context, key string) error
}

// Line is one product and its quantity.
type Line struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal is the line total at the effective unit price.
func (l Line) Subtotal() float64 {
	return l.Product.EffectivePrice() * float64(l.Quantity)
}

// Options configures a Store. Zero values are replaced with defaults.
type Options struct {
	Key        string
	MaxLines   int
	QuotaKeep  int
	LegacyKeys []string
}

func (o Options) withDefaults() Options {
	if o.Key == "" {
		o.Key = DefaultKey
	}
	if o.MaxLines <= 0 {
		o.MaxLines = DefaultMaxLines
	}
	if o.QuotaKeep <= 0 {
		o.QuotaKeep = DefaultQuotaKeep
	}
	if o.LegacyKeys == nil {
		o.LegacyKeys = DefaultLegacyKeys
	}
	return o
}

// Option configures optional collaborators.
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

// Store is the cart. It is safe for concurrent use; subscribers observe
// mutations in the order they were applied.
type Store struct {
	kv       Persister
	opts     Options
	logger   zerolog.Logger
	reporter diagnostics.Reporter
	printer  *i18n.Printer

	mu      sync.Mutex
	lines   []Line
	subject *observable.Subject[[]Line]
}

// New loads the persisted cart, dropping malformed lines, and merges any
// legacy carts into it.
func New(ctx context.Context, kv Persister, opts Options, options ...Option) *Store {
	s := &Store{
		kv:       kv,
		opts:     opts.withDefaults(),
		logger:   zerolog.Nop(),
		reporter: diagnostics.Nop{},
		subject:  observable.New[[]Line](nil),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.printer == nil {
		s.printer = i18n.MustNew(i18n.DefaultLocale)
	}

	s.lines = s.load(ctx)
	if s.mergeLegacy(ctx) > 0 {
		s.persist(ctx)
	}
	s.subject.Publish(s.snapshot())
	return s
}

type storedLine struct {
	Product  json.RawMessage `json:"product"`
	Quantity *float64        `json:"quantity"`
}

// decodeLines keeps the entries that carry a product id and a positive
// whole-number quantity. It returns the kept lines, the number of malformed
// entries and the number of entries rejected for a fractional quantity.
func decodeLines(raw []json.RawMessage, defaultQty bool) (lines []Line, dropped, fractional int) {
	lines = make([]Line, 0, len(raw))
	for _, r := range raw {
		var sl storedLine
		if err := json.Unmarshal(r, &sl); err != nil || len(sl.Product) == 0 {
			dropped++
			continue
		}
		p, err := product.Decode(sl.Product)
		if err != nil {
			dropped++
			continue
		}

		qty := 0.0
		if sl.Quantity != nil {
			qty = *sl.Quantity
		}
		if qty == 0 && defaultQty {
			qty = 1
		}
		if qty > 0 && qty != math.Trunc(qty) {
			fractional++
			continue
		}
		if qty < 1 || qty > math.MaxInt32 {
			dropped++
			continue
		}
		lines = append(lines, Line{Product: p, Quantity: int(qty)})
	}
	return lines, dropped, fractional
}

// reportDecode records the entries decodeLines rejected from key.
func (s *Store) reportDecode(key string, dropped, fractional int, detail string) {
	if dropped > 0 {
		s.reporter.Report(diagnostics.Event{Kind: diagnostics.KindDropped, Source: key, Count: dropped, Detail: detail})
	}
	if fractional > 0 {
		s.reporter.Report(diagnostics.Event{Kind: diagnostics.KindDropped, Source: key, Count: fractional, Detail: "fractional quantity"})
	}
}

func (s *Store) load(ctx context.Context) []Line {
	var raw []json.RawMessage
	found, err := s.kv.ReadRaw(ctx, s.opts.Key, &raw)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cart data unreadable, starting empty")
		s.reporter.Report(diagnostics.Event{Kind: diagnostics.KindDropped, Source: s.opts.Key, Detail: "not a list"})
		return nil
	}
	if !found {
		return nil
	}

	lines, dropped, fractional := decodeLines(raw, false)

	seen := make(map[string]bool, len(lines))
	out := lines[:0]
	for _, l := range lines {
		if seen[l.Product.ID] {
			dropped++
			continue
		}
		seen[l.Product.ID] = true
		out = append(out, l)
	}

	s.reportDecode(s.opts.Key, dropped, fractional, "malformed cart lines")
	return out
}

// mergeLegacy adds the lines of every legacy cart through the normal add
// rules and deletes the legacy key. Returns the number of lines merged.
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

		lines, dropped, fractional := decodeLines(raw, true)
		for _, l := range lines {
			if s.add(l.Product, l.Quantity).Success {
				merged++
			} else {
				dropped++
			}
		}
		s.reportDecode(key, dropped, fractional, "legacy cart lines")

		if err := s.kv.DeleteRaw(ctx, key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("delete legacy cart")
			continue
		}
		s.reporter.Report(diagnostics.Event{Kind: diagnostics.KindMigrated, Source: key, Count: len(lines)})
	}
	return merged
}

// persist writes the lines. On a quota failure the oldest lines are
// dropped, keeping QuotaKeep, and the write is retried once. Callers hold mu.
func (s *Store) persist(ctx context.Context) {
	if s.lines == nil {
		s.lines = []Line{}
	}
	err := s.kv.WriteRaw(ctx, s.opts.Key, s.lines)
	if err == nil {
		return
	}
	if !errors.Is(err, storage.ErrQuotaExceeded) {
		s.logger.Error().Ctx(ctx).Err(err).Msg("save cart")
		return
	}
	if len(s.lines) <= s.opts.QuotaKeep {
		s.logger.Warn().Ctx(ctx).Err(err).Msg("save cart: quota exceeded")
		return
	}

	removed := len(s.lines) - s.opts.QuotaKeep
	s.lines = append([]Line(nil), s.lines[removed:]...)
	s.reporter.Report(diagnostics.Event{
		Kind:   diagnostics.KindTruncated,
		Source: s.opts.Key,
		Count:  removed,
		Detail: fmt.Sprintf("kept last %d lines", s.opts.QuotaKeep),
	})

	if err := s.kv.WriteRaw(ctx, s.opts.Key, s.lines); err != nil {
		s.logger.Error().Ctx(ctx).Err(err).Msg("save cart after truncation")
	}
}

// commit persists, then hands the new snapshot to subscribers and releases mu.
func (s *Store) commit(ctx context.Context) {
	s.persist(ctx)
	s.subject.Handoff(s.mu.Unlock, s.snapshot())
}

func (s *Store) snapshot() []Line {
	out := make([]Line, len(s.lines))
	for i, l := range s.lines {
		out[i] = Line{Product: l.Product.Clone(), Quantity: l.Quantity}
	}
	return out
}

func (s *Store) index(id string) int {
	for i, l := range s.lines {
		if l.Product.ID == id {
			return i
		}
	}
	return -1
}
