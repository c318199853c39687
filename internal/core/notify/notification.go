// Package notify implements the notification queue: a capped, newest-first
// list of transient user-facing messages that remove themselves after a
// duration.
package notify

import (
	"time"
)

// Type is the kind of a notification.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Types lists every notification type.
var Types = []Type{TypeSuccess, TypeError, TypeWarning, TypeInfo}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	switch t {
	case TypeSuccess, TypeError, TypeWarning, TypeInfo:
		return true
	}
	return false
}

// Icon returns the glyph shown next to a notification of type t.
func Icon(t Type) string {
	switch t {
	case TypeSuccess:
		return "✓"
	case TypeError:
		return "✗"
	case TypeWarning:
		return "⚠"
	case TypeInfo:
		return "ℹ"
	default:
		return "•"
	}
}

// Notification is a single message in the queue.
type Notification struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	DurationMS int64     `json:"duration"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
	AutoClose  bool      `json:"autoClose"`
}

// Duration is how long the notification stays before it is removed.
func (n Notification) Duration() time.Duration {
	return time.Duration(n.DurationMS) * time.Millisecond
}

// ExpiresAt is when an auto-closing notification is removed.
func (n Notification) ExpiresAt() time.Time {
	return n.Timestamp.Add(n.Duration())
}

// Timer is a pending auto-removal.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d. The real scheduler uses time.AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
