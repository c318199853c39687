// Package kvstore implements the namespaced key-value store the cart,
// wishlist and notification queue persist through. Values written with Set
// are wrapped in a {data, metadata} envelope; the collection stores write raw
// JSON through WriteRaw under the same namespace.
package kvstore

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/storefront/internal/core/diagnostics"
	"github.com/colonyops/storefront/internal/core/i18n"
	"github.com/colonyops/storefront/internal/core/storage"
)

const (
	DefaultPrefix           = "elfateh_"
	DefaultMaxSize          = 5 * 1024 * 1024
	DefaultWarningThreshold = 80.0
	DefaultRetention        = 30 * 24 * time.Hour

	// EnvelopeVersion is written into every envelope's metadata.
	EnvelopeVersion = "1.0"
)

// DefaultLegacyKeys are the pre-namespace keys migrated on startup.
var DefaultLegacyKeys = []string{"cart", "wishlist", "favorites", "user_cart", "user_wishlist", "shopping_cart"}

// DefaultCollections are the raw collection keys PurgeExpired never touches.
var DefaultCollections = []string{"cart", "wishlist", "notifications"}

// Options configures a Store. Zero values are replaced with defaults.
type Options struct {
	Prefix           string
	MaxSize          int64
	WarningThreshold float64 // percent
	Retention        time.Duration
	LegacyKeys       []string
	// Collections are unprefixed keys owned by the collection stores. They
	// hold live user state and are exempt from retention.
	Collections []string
	// SkipStartup disables legacy migration, purge and health checks in New.
	SkipStartup bool
}

func (o Options) withDefaults() Options {
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultMaxSize
	}
	if o.WarningThreshold <= 0 {
		o.WarningThreshold = DefaultWarningThreshold
	}
	if o.Retention <= 0 {
		o.Retention = DefaultRetention
	}
	if o.LegacyKeys == nil {
		o.LegacyKeys = DefaultLegacyKeys
	}
	if o.Collections == nil {
		o.Collections = DefaultCollections
	}
	return o
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Option configures optional Store collaborators.
type Option func(*Store)

// WithLogger sets the logger used for warnings and health checks.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the time source for metadata and purging.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithReporter sets the diagnostics hook for migrated and purged records.
func WithReporter(r diagnostics.Reporter) Option {
	return func(s *Store) { s.reporter = r }
}

// WithPrinter sets the printer used for result messages.
func WithPrinter(p *i18n.Printer) Option {
	return func(s *Store) { s.printer = p }
}

// Metadata is stored alongside every enveloped value.
type Metadata struct {
	Created      time.Time  `json:"created"`
	LastModified time.Time  `json:"lastModified"`
	LastAccessed *time.Time `json:"lastAccessed,omitempty"`
	Size         int64      `json:"size"`
	Version      string     `json:"version"`
}

type envelope struct {
	Data     json.RawMessage `json:"data"`
	Metadata *Metadata       `json:"metadata"`
}

// Item is a namespaced entry as listed by AllItems. Metadata is nil for raw
// values written by the collection stores.
type Item struct {
	Key          string          `json:"key"`
	Value        json.RawMessage `json:"value"`
	Size         int64           `json:"size"`
	LastModified time.Time       `json:"lastModified"`
	Metadata     *Metadata       `json:"metadata,omitempty"`
}

// Info reports usage against the configured quota.
type Info struct {
	Used          int64   `json:"used"`
	Available     int64   `json:"available"`
	Percentage    float64 `json:"percentage"`
	QuotaExceeded bool    `json:"quotaExceeded"`
}

// Store is the namespaced key-value store. It is safe for concurrent use.
type Store struct {
	backend  storage.Backend
	opts     Options
	logger   zerolog.Logger
	clock    Clock
	reporter diagnostics.Reporter
	printer  *i18n.Printer

	mu sync.Mutex
}

// New creates a Store over backend and runs the startup steps: legacy key
// migration, expired item purge and a health check. Startup problems are
// logged and reported, never returned.
func New(ctx context.Context, backend storage.Backend, opts Options, options ...Option) *Store {
	s := &Store{
		backend:  backend,
		opts:     opts.withDefaults(),
		logger:   zerolog.Nop(),
		clock:    systemClock{},
		reporter: diagnostics.Nop{},
	}
	for _, opt := range options {
		opt(s)
	}
	if s.printer == nil {
		s.printer = i18n.MustNew(i18n.DefaultLocale)
	}

	if !opts.SkipStartup {
		s.startup(ctx)
	}
	return s
}

// Prefix returns the namespace prefix.
func (s *Store) Prefix() string {
	return s.opts.Prefix
}

// Options returns the effective options.
func (s *Store) Options() Options {
	return s.opts
}

// Available reports whether the backend can currently be used.
func (s *Store) Available(ctx context.Context) bool {
	return s.backend.Probe(ctx) == nil
}

func (s *Store) fullKey(key string) string {
	return s.opts.Prefix + key
}

func (s *Store) owns(fullKey string) bool {
	return strings.HasPrefix(fullKey, s.opts.Prefix)
}

func (s *Store) now() time.Time {
	return s.clock.Now().UTC()
}

// namespacedKeys returns the full keys under the prefix.
func (s *Store) namespacedKeys(ctx context.Context) ([]string, error) {
	keys, err := s.backend.Keys(ctx)
	if err != nil {
		return nil, err
	}
	out := keys[:0:0]
	for _, k := range keys {
		if s.owns(k) {
			out = append(out, k)
		}
	}
	return out, nil
}

// decodeEnvelope returns the envelope stored in value, or ok=false when
// value is not an envelope.
func decodeEnvelope(value []byte) (envelope, bool) {
	trimmed := strings.TrimSpace(string(value))
	if !strings.HasPrefix(trimmed, "{") {
		return envelope{}, false
	}

	var env envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return envelope{}, false
	}
	if env.Metadata == nil {
		return envelope{}, false
	}
	return env, true
}
