package tui

import (
	"time"

	"github.com/colonyops/storefront/internal/core/notify"
)

const (
	defaultToastTTL   = 5 * time.Second
	defaultMaxToasts  = 4
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 48
)

type toast struct {
	notification notify.Notification
	remaining    time.Duration
}

// ToastController tracks which queued notifications have been shown as
// toasts and counts down the ones on screen.
type ToastController struct {
	toasts  []toast
	seen    map[string]struct{}
	ticking bool
}

func NewToastController() *ToastController {
	return &ToastController{seen: make(map[string]struct{})}
}

// Seed marks notifications as already shown so that entries restored from
// a previous run do not pop up on start.
func (c *ToastController) Seed(items []notify.Notification) {
	for _, n := range items {
		c.seen[n.ID] = struct{}{}
	}
}

// Sync pushes every notification in items not seen before, oldest first,
// and forgets ids no longer queued. Returns the number pushed.
func (c *ToastController) Sync(items []notify.Notification) int {
	live := make(map[string]struct{}, len(items))
	pushed := 0
	for i := len(items) - 1; i >= 0; i-- {
		n := items[i]
		live[n.ID] = struct{}{}
		if _, ok := c.seen[n.ID]; ok {
			continue
		}
		c.seen[n.ID] = struct{}{}
		c.Push(n)
		pushed++
	}
	for id := range c.seen {
		if _, ok := live[id]; !ok {
			delete(c.seen, id)
		}
	}
	return pushed
}

// Push adds a notification to the toast stack, evicting the oldest toast
// past defaultMaxToasts.
func (c *ToastController) Push(n notify.Notification) {
	ttl := defaultToastTTL
	if d := n.Duration(); n.AutoClose && d > 0 && d < ttl {
		ttl = d
	}
	c.toasts = append(c.toasts, toast{notification: n, remaining: ttl})
	if len(c.toasts) > defaultMaxToasts {
		c.toasts = c.toasts[len(c.toasts)-defaultMaxToasts:]
	}
}

// Tick decrements the remaining TTL on all toasts by d and removes expired
// ones.
func (c *ToastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// Dismiss removes the newest toast.
func (c *ToastController) Dismiss() {
	if len(c.toasts) > 0 {
		c.toasts = c.toasts[:len(c.toasts)-1]
	}
}

func (c *ToastController) HasToasts() bool {
	return len(c.toasts) > 0
}

func (c *ToastController) Toasts() []toast {
	return c.toasts
}

func (c *ToastController) Ticking() bool {
	return c.ticking
}

func (c *ToastController) SetTicking(v bool) {
	c.ticking = v
}
