// Package diagnostics records data that the stores had to drop, repair or
// migrate so that silent data loss becomes observable.
package diagnostics

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Kind classifies a diagnostic event.
type Kind string

const (
	// KindDropped is reported when a persisted record is malformed and discarded on load.
	KindDropped Kind = "dropped"
	// KindTruncated is reported when a collection is shortened to fit the storage quota.
	KindTruncated Kind = "truncated"
	// KindMigrated is reported when a legacy key is moved into the namespace.
	KindMigrated Kind = "migrated"
	// KindMigrationFailed is reported when a legacy key could not be migrated.
	KindMigrationFailed Kind = "migration_failed"
	// KindPurged is reported when expired items are removed.
	KindPurged Kind = "purged"
)

// Event describes a single diagnostic occurrence.
type Event struct {
	Kind   Kind
	Source string // store or key the event originated from
	Count  int
	Detail string
}

// Reporter receives diagnostic events from the stores.
type Reporter interface {
	Report(e Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Report(Event) {}

// Recorder logs every event and keeps running totals per kind and source.
type Recorder struct {
	logger zerolog.Logger

	mu     sync.Mutex
	totals map[Kind]int
	events []Event
	limit  int
}

// NewRecorder creates a Recorder that logs through logger and keeps the
// last limit events for inspection. A limit of zero keeps 100.
func NewRecorder(logger zerolog.Logger, limit int) *Recorder {
	if limit <= 0 {
		limit = 100
	}
	return &Recorder{
		logger: logger,
		totals: make(map[Kind]int),
		limit:  limit,
	}
}

// Report implements Reporter.
func (r *Recorder) Report(e Event) {
	if e.Count == 0 {
		e.Count = 1
	}

	lvl := zerolog.WarnLevel
	if e.Kind == KindMigrated || e.Kind == KindPurged {
		lvl = zerolog.InfoLevel
	}
	r.logger.WithLevel(lvl).
		Str("kind", string(e.Kind)).
		Str("source", e.Source).
		Int("count", e.Count).
		Str("detail", e.Detail).
		Msg("storage diagnostic")

	r.mu.Lock()
	defer r.mu.Unlock()
	r.totals[e.Kind] += e.Count
	r.events = append(r.events, e)
	if len(r.events) > r.limit {
		r.events = r.events[len(r.events)-r.limit:]
	}
}

// Total returns the accumulated count for kind.
func (r *Recorder) Total(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totals[kind]
}

// Totals returns a copy of all accumulated counts.
func (r *Recorder) Totals() map[Kind]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[Kind]int, len(r.totals))
	for k, v := range r.totals {
		out[k] = v
	}
	return out
}

// Events returns the retained events, oldest first.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the kinds that have been reported, sorted.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, 0, len(r.totals))
	for k := range r.totals {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
