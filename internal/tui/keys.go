package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	NextTab    key.Binding
	PrevTab    key.Binding
	Up         key.Binding
	Down       key.Binding
	Increase   key.Binding
	Decrease   key.Binding
	Remove     key.Binding
	Clear      key.Binding
	MoveToCart key.Binding
	Filter     key.Binding
	MarkRead   key.Binding
	MarkAll    key.Binding
	Refresh    key.Binding
	Dismiss    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextTab:    key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next view")),
		PrevTab:    key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "prev view")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Increase:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "qty up")),
		Decrease:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "qty down")),
		Remove:     key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove")),
		Clear:      key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear all")),
		MoveToCart: key.NewBinding(key.WithKeys("m", "enter"), key.WithHelp("m", "move to cart")),
		Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		MarkRead:   key.NewBinding(key.WithKeys("r", "enter"), key.WithHelp("r", "mark read")),
		MarkAll:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "mark all read")),
		Refresh:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		Dismiss:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss toast")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// tabKeys adapts keyMap to help.KeyMap for the active tab.
type tabKeys struct {
	keys keyMap
	tab  tab
}

func (t tabKeys) ShortHelp() []key.Binding {
	k := t.keys
	switch t.tab {
	case tabCart:
		return []key.Binding{k.Increase, k.Decrease, k.Remove, k.Clear, k.NextTab, k.Help, k.Quit}
	case tabWishlist:
		return []key.Binding{k.MoveToCart, k.Remove, k.Filter, k.Clear, k.NextTab, k.Help, k.Quit}
	case tabNotifications:
		return []key.Binding{k.MarkRead, k.MarkAll, k.Remove, k.Clear, k.NextTab, k.Help, k.Quit}
	default:
		return []key.Binding{k.Up, k.Down, k.Refresh, k.NextTab, k.Help, k.Quit}
	}
}

func (t tabKeys) FullHelp() [][]key.Binding {
	k := t.keys
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab},
		t.ShortHelp(),
		{k.Dismiss, k.Refresh, k.Help, k.Quit},
	}
}
