package tui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

type changeKind uint32

const (
	changeCart changeKind = 1 << iota
	changeWishlist
	changeNotifications
)

func (k changeKind) has(flag changeKind) bool { return k&flag != 0 }

// storesChangedMsg carries the set of stores that changed since the last
// delivery.
type storesChangedMsg changeKind

// changeFeed coalesces store notifications into single messages so that a
// burst of mutations triggers one refresh per store.
type changeFeed struct {
	pending atomic.Uint32
	signal  chan struct{}
	done    chan struct{}
	closed  atomic.Bool
}

func newChangeFeed() *changeFeed {
	return &changeFeed{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// mark records a change. Safe to call from any goroutine; never blocks.
func (f *changeFeed) mark(k changeKind) {
	f.pending.Or(uint32(k))
	select {
	case f.signal <- struct{}{}:
	default:
	}
}

// wait returns a command that blocks until the next change.
func (f *changeFeed) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-f.signal:
			return storesChangedMsg(f.pending.Swap(0))
		case <-f.done:
			return nil
		}
	}
}

func (f *changeFeed) close() {
	if f.closed.CompareAndSwap(false, true) {
		close(f.done)
	}
}
