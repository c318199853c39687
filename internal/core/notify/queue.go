package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/storefront/internal/core/i18n"
	"github.com/colonyops/storefront/pkg/observable"
	"github.com/colonyops/storefront/pkg/randid"
)

const (
	DefaultKey          = "notifications"
	DefaultMaxItems     = 10
	DefaultDuration     = 5 * time.Second
	DefaultRecentWindow = 24 * time.Hour

	SuccessResultDuration = 3 * time.Second
	ErrorResultDuration   = 5 * time.Second
)

// Persister stores the queue between runs. *kvstore.Store satisfies it.
type Persister interface {
	ReadRaw(ctx context.Context, key string, dest any) (bool, error)
	WriteRaw(ctx context.Context, key string, value any) error
}

type Options struct {
	Key             string
	MaxItems        int
	DefaultDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.Key == "" {
		o.Key = DefaultKey
	}
	if o.MaxItems <= 0 {
		o.MaxItems = DefaultMaxItems
	}
	if o.DefaultDuration <= 0 {
		o.DefaultDuration = DefaultDuration
	}
	return o
}

type Option func(*Queue)

func WithLogger(l zerolog.Logger) Option {
	return func(q *Queue) { q.logger = l }
}

// WithScheduler replaces time.AfterFunc for auto-removal.
func WithScheduler(s Scheduler) Option {
	return func(q *Queue) { q.sched = s }
}

func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// WithPrinter sets the printer used for preset titles.
func WithPrinter(p *i18n.Printer) Option {
	return func(q *Queue) { q.printer = p }
}

// ShowOptions overrides per-notification defaults.
type ShowOptions struct {
	// Duration defaults to the queue's DefaultDuration.
	Duration time.Duration
	// AutoClose defaults to true.
	AutoClose *bool
}

// Queue is the notification queue. It is safe for concurrent use.
type Queue struct {
	kv      Persister
	opts    Options
	logger  zerolog.Logger
	sched   Scheduler
	now     func() time.Time
	printer *i18n.Printer

	mu      sync.Mutex
	items   []Notification
	timers  map[string]Timer
	subject *observable.Subject[[]Notification]
}

// NewQueue restores persisted notifications. Auto-closing notifications
// that have already expired are dropped and the rest are re-armed for their
// remaining time. kv may be nil for a queue that is never persisted.
func NewQueue(ctx context.Context, kv Persister, opts Options, options ...Option) *Queue {
	q := &Queue{
		kv:      kv,
		opts:    opts.withDefaults(),
		logger:  zerolog.Nop(),
		sched:   realScheduler{},
		now:     time.Now,
		timers:  make(map[string]Timer),
		subject: observable.New[[]Notification](nil),
	}
	for _, opt := range options {
		opt(q)
	}
	if q.printer == nil {
		q.printer = i18n.MustNew(i18n.DefaultLocale)
	}

	q.mu.Lock()
	q.restore(ctx)
	q.subject.Handoff(q.mu.Unlock, q.snapshot())
	return q
}

// Reload replaces the in-memory queue with what is persisted, cancelling
// the timers of the replaced entries. Call it after the backing store was
// cleared or imported behind the queue's back.
func (q *Queue) Reload(ctx context.Context) {
	q.mu.Lock()
	for id := range q.timers {
		q.disarm(id)
	}
	q.restore(ctx)
	q.subject.Handoff(q.mu.Unlock, q.snapshot())
}

// restore loads the persisted entries and re-arms the auto-closing ones for
// their remaining time. Callers hold mu.
func (q *Queue) restore(ctx context.Context) {
	q.items = q.load(ctx)
	for _, n := range q.items {
		if n.AutoClose {
			q.arm(n.ID, n.ExpiresAt().Sub(q.now()))
		}
	}
}

type storedNotification struct {
	Notification
	AutoClose *bool `json:"autoClose"`
}

func (q *Queue) load(ctx context.Context) []Notification {
	if q.kv == nil {
		return nil
	}

	var raw []json.RawMessage
	found, err := q.kv.ReadRaw(ctx, q.opts.Key, &raw)
	if err != nil {
		q.logger.Warn().Err(err).Msg("notifications unreadable, starting empty")
		return nil
	}
	if !found {
		return nil
	}

	now := q.now()
	items := make([]Notification, 0, len(raw))
	for _, r := range raw {
		var sn storedNotification
		if err := json.Unmarshal(r, &sn); err != nil || sn.ID == "" || !sn.Type.Valid() {
			continue
		}
		n := sn.Notification
		n.AutoClose = sn.AutoClose == nil || *sn.AutoClose
		if n.DurationMS <= 0 {
			n.DurationMS = q.opts.DefaultDuration.Milliseconds()
		}
		if n.AutoClose && !n.ExpiresAt().After(now) {
			continue
		}
		items = append(items, n)
		if len(items) == q.opts.MaxItems {
			break
		}
	}
	return items
}

// persist writes the queue. Failures are logged only. Callers hold mu.
func (q *Queue) persist(ctx context.Context) {
	if q.kv == nil {
		return
	}
	items := q.items
	if items == nil {
		items = []Notification{}
	}
	if err := q.kv.WriteRaw(ctx, q.opts.Key, items); err != nil {
		q.logger.Error().Ctx(ctx).Err(err).Msg("save notifications")
	}
}

func (q *Queue) commit(ctx context.Context) {
	q.persist(ctx)
	q.subject.Handoff(q.mu.Unlock, q.snapshot())
}

func (q *Queue) snapshot() []Notification {
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

// arm schedules removal of id after d. Callers hold mu.
func (q *Queue) arm(id string, d time.Duration) {
	if d < 0 {
		d = 0
	}
	q.timers[id] = q.sched.AfterFunc(d, func() {
		q.expire(id)
	})
}

func (q *Queue) expire(id string) {
	q.mu.Lock()
	delete(q.timers, id)
	q.mu.Unlock()
	q.Remove(context.Background(), id)
}

// disarm cancels the pending removal of id. Callers hold mu.
func (q *Queue) disarm(id string) {
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
}

func (q *Queue) newID() string {
	return randid.Timed(q.now(), 8)
}

// Show inserts a notification at the front of the queue and returns its id.
// The oldest entries beyond MaxItems are discarded.
func (q *Queue) Show(ctx context.Context, typ Type, title, message string, opts ShowOptions) string {
	d := opts.Duration
	if d <= 0 {
		d = q.opts.DefaultDuration
	}
	autoClose := opts.AutoClose == nil || *opts.AutoClose

	n := Notification{
		ID:         q.newID(),
		Type:       typ,
		Title:      title,
		Message:    message,
		DurationMS: d.Milliseconds(),
		Timestamp:  q.now(),
		AutoClose:  autoClose,
	}

	q.mu.Lock()
	q.items = append([]Notification{n}, q.items...)
	if len(q.items) > q.opts.MaxItems {
		for _, dropped := range q.items[q.opts.MaxItems:] {
			q.disarm(dropped.ID)
		}
		q.items = q.items[:q.opts.MaxItems:q.opts.MaxItems]
	}
	if autoClose {
		q.arm(n.ID, d)
	}
	q.commit(ctx)
	return n.ID
}

// Remove deletes the notification and cancels its timer. Removing an absent
// id does nothing.
func (q *Queue) Remove(ctx context.Context, id string) bool {
	q.mu.Lock()
	q.disarm(id)
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i:i], q.items[i+1:]...)
			q.commit(ctx)
			return true
		}
	}
	q.mu.Unlock()
	return false
}

// MarkAsRead flags id as read. It reports false when id is absent.
func (q *Queue) MarkAsRead(ctx context.Context, id string) bool {
	q.mu.Lock()
	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i].Read = true
			q.commit(ctx)
			return true
		}
	}
	q.mu.Unlock()
	return false
}

// MarkAllAsRead flags every notification as read.
func (q *Queue) MarkAllAsRead(ctx context.Context) {
	q.mu.Lock()
	for i := range q.items {
		q.items[i].Read = true
	}
	q.commit(ctx)
}

// ClearAll removes every notification and cancels every pending timer.
func (q *Queue) ClearAll(ctx context.Context) {
	q.mu.Lock()
	for id := range q.timers {
		q.disarm(id)
	}
	q.items = nil
	q.commit(ctx)
}

// Close cancels pending timers without touching the queue contents, so
// that persisted notifications are re-armed by the next NewQueue.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for id := range q.timers {
		q.disarm(id)
	}
}

// Items returns a copy of the queue, newest first.
func (q *Queue) Items() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshot()
}

// Get returns the notification with id.
func (q *Queue) Get(id string) (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, n := range q.items {
		if n.ID == id {
			return n, true
		}
	}
	return Notification{}, false
}

func (q *Queue) UnreadCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	count := 0
	for _, n := range q.items {
		if !n.Read {
			count++
		}
	}
	return count
}

func (q *Queue) ByType(t Type) []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, 0)
	for _, n := range q.items {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// Recent returns notifications newer than window. A zero window uses
// DefaultRecentWindow.
func (q *Queue) Recent(window time.Duration) []Notification {
	if window <= 0 {
		window = DefaultRecentWindow
	}
	cutoff := q.now().Add(-window)

	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, 0)
	for _, n := range q.items {
		if n.Timestamp.After(cutoff) {
			out = append(out, n)
		}
	}
	return out
}

// Subscribe calls fn with the current queue and again after every
// mutation. fn must not call back into the Queue.
func (q *Queue) Subscribe(fn func([]Notification)) (unsubscribe func()) {
	return q.subject.Subscribe(fn)
}
