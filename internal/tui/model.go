// Package tui implements the interactive storefront browser: cart,
// wishlist, notifications and raw storage tabs backed by the live stores.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/colonyops/storefront/internal/core/cart"
	"github.com/colonyops/storefront/internal/core/kvstore"
	"github.com/colonyops/storefront/internal/core/logging"
	"github.com/colonyops/storefront/internal/core/notify"
	"github.com/colonyops/storefront/internal/core/product"
	"github.com/colonyops/storefront/internal/core/result"
	"github.com/colonyops/storefront/internal/core/styles"
	"github.com/colonyops/storefront/internal/shop"
)

type tab int

const (
	tabCart tab = iota
	tabWishlist
	tabNotifications
	tabStorage
	tabCount
)

func (t tab) String() string {
	switch t {
	case tabCart:
		return styles.IconCart + " Cart"
	case tabWishlist:
		return styles.IconHeart + " Wishlist"
	case tabNotifications:
		return styles.IconBell + " Notifications"
	default:
		return styles.IconDatabase + " Storage"
	}
}

type actionDoneMsg struct {
	res result.Result
}

type storageLoadedMsg struct {
	items []kvstore.Item
	info  kvstore.Info
}

// Opts configures the model.
type Opts struct {
	// Warnings are shown once as notifications when the TUI starts.
	Warnings []string
	Version  string
}

// Model is the root bubbletea model.
type Model struct {
	app    *shop.App
	ctx    context.Context
	opts   Opts
	logger zerolog.Logger

	keys     keyMap
	help     help.Model
	showHelp bool
	tab      tab
	width    int
	height   int
	status   string

	cart          *CartView
	wishlist      *WishlistView
	notifications *NotificationsView
	storage       *StorageView

	toasts    *ToastController
	toastView *ToastView
	modal     Modal

	feed   *changeFeed
	unsubs []func()
}

// New creates the model and subscribes it to the stores in app. Call Close
// once the program exits.
func New(ctx context.Context, app *shop.App, opts Opts) *Model {
	toasts := NewToastController()
	m := &Model{
		app:           app,
		ctx:           ctx,
		opts:          opts,
		logger:        logging.Component("tui"),
		keys:          defaultKeyMap(),
		help:          help.New(),
		cart:          NewCartView(),
		wishlist:      NewWishlistView(app.Wishlist.Search, app.Cart.Contains),
		notifications: NewNotificationsView(),
		storage:       NewStorageView(),
		toasts:        toasts,
		toastView:     NewToastView(toasts),
		feed:          newChangeFeed(),
	}

	m.cart.SetLines(app.Cart.Lines())
	m.wishlist.SetItems(app.Wishlist.Items())
	items := app.Notifications.Items()
	m.notifications.SetItems(items)
	toasts.Seed(items)

	m.unsubs = []func(){
		app.Cart.Subscribe(func([]cart.Line) { m.feed.mark(changeCart) }),
		app.Wishlist.Subscribe(func([]product.Product) { m.feed.mark(changeWishlist) }),
		app.Notifications.Subscribe(func([]notify.Notification) { m.feed.mark(changeNotifications) }),
	}
	return m
}

// Close releases the store subscriptions.
func (m *Model) Close() {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
	m.feed.close()
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.feed.wait()}
	for _, w := range m.opts.Warnings {
		cmds = append(cmds, m.warn(w))
	}
	return tea.Batch(cmds...)
}

func (m *Model) warn(msg string) tea.Cmd {
	return func() tea.Msg {
		m.app.Notifications.Warning(m.ctx, "storefront", msg)
		return nil
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case storesChangedMsg:
		return m, tea.Batch(m.applyChanges(changeKind(msg)), m.feed.wait())

	case storageLoadedMsg:
		m.storage.SetItems(msg.items, msg.info)
		return m, nil

	case actionDoneMsg:
		m.status = msg.res.Message
		if !msg.res.Success {
			m.logger.Debug().Str("code", string(msg.res.Code)).Msg(msg.res.Message)
		}
		return m, nil

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if !m.toasts.HasToasts() {
			m.toasts.SetTicking(false)
			return m, nil
		}
		return m, scheduleToastTick()

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) applyChanges(k changeKind) tea.Cmd {
	var cmds []tea.Cmd
	if k.has(changeCart) {
		m.cart.SetLines(m.app.Cart.Lines())
	}
	if k.has(changeWishlist) || k.has(changeCart) {
		// the cart marker in the wishlist depends on both
		m.wishlist.SetItems(m.app.Wishlist.Items())
	}
	if k.has(changeNotifications) {
		items := m.app.Notifications.Items()
		m.notifications.SetItems(items)
		if m.toasts.Sync(items) > 0 && !m.toasts.Ticking() {
			m.toasts.SetTicking(true)
			cmds = append(cmds, scheduleToastTick())
		}
	}
	if m.tab == tabStorage {
		cmds = append(cmds, m.loadStorage())
	}
	return tea.Batch(cmds...)
}

func (m *Model) loadStorage() tea.Cmd {
	return func() tea.Msg {
		return storageLoadedMsg{
			items: m.app.KV.AllItems(m.ctx),
			info:  m.app.KV.StorageInfo(m.ctx),
		}
	}
}

// run executes op off the UI goroutine and surfaces its result through
// show, which queues a notification.
func (m *Model) run(op func(ctx context.Context) result.Result, show func(context.Context, result.Result) string) tea.Cmd {
	return func() tea.Msg {
		res := op(m.ctx)
		show(m.ctx, res)
		return actionDoneMsg{res: res}
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.modal.Visible() {
		return m.modal.HandleKey(msg)
	}

	if m.tab == tabWishlist && m.wishlist.IsFiltering() {
		switch msg.String() {
		case "esc":
			m.wishlist.CancelFilter()
			return nil
		case "enter":
			m.wishlist.ConfirmFilter()
			return nil
		}
		return m.wishlist.UpdateFilter(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.resize()
		return nil
	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.Dismiss()
		return nil
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab((m.tab + 1) % tabCount)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab((m.tab + tabCount - 1) % tabCount)
	}

	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] < '1'+byte(tabCount) {
		return m.switchTab(tab(s[0] - '1'))
	}

	switch m.tab {
	case tabCart:
		return m.handleCartKey(msg)
	case tabWishlist:
		return m.handleWishlistKey(msg)
	case tabNotifications:
		return m.handleNotificationsKey(msg)
	default:
		return m.handleStorageKey(msg)
	}
}

func (m *Model) switchTab(t tab) tea.Cmd {
	m.tab = t
	m.status = ""
	if t == tabStorage {
		return m.loadStorage()
	}
	return nil
}

func (m *Model) handleCartKey(msg tea.KeyMsg) tea.Cmd {
	show := m.app.Notifications.ShowCartResult
	line, ok := m.cart.Selected()

	switch {
	case key.Matches(msg, m.keys.Up):
		m.cart.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.cart.MoveDown()
	case !ok:
		return nil
	case key.Matches(msg, m.keys.Increase):
		return m.run(func(ctx context.Context) result.Result {
			return m.app.Cart.UpdateQuantity(ctx, line.Product.ID, line.Quantity+1)
		}, show)
	case key.Matches(msg, m.keys.Decrease):
		return m.run(func(ctx context.Context) result.Result {
			return m.app.Cart.UpdateQuantity(ctx, line.Product.ID, line.Quantity-1)
		}, show)
	case key.Matches(msg, m.keys.Remove):
		return m.run(func(ctx context.Context) result.Result {
			return m.app.Cart.Remove(ctx, line.Product.ID)
		}, show)
	case key.Matches(msg, m.keys.Clear):
		m.modal = NewModal("Empty the cart?",
			fmt.Sprintf("%d lines will be removed.", m.app.Cart.Len()),
			m.run(m.app.Cart.Clear, show))
	}
	return nil
}

func (m *Model) handleWishlistKey(msg tea.KeyMsg) tea.Cmd {
	show := m.app.Notifications.ShowWishlistResult
	p, ok := m.wishlist.Selected()

	switch {
	case key.Matches(msg, m.keys.Up):
		m.wishlist.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.wishlist.MoveDown()
	case key.Matches(msg, m.keys.Filter):
		return m.wishlist.StartFilter()
	case msg.String() == "esc":
		m.wishlist.CancelFilter()
	case !ok:
		return nil
	case key.Matches(msg, m.keys.MoveToCart):
		return m.run(func(ctx context.Context) result.Result {
			return m.app.Transfer.MoveToCart(ctx, p.ID, 1)
		}, show)
	case key.Matches(msg, m.keys.Remove):
		return m.run(func(ctx context.Context) result.Result {
			return m.app.Wishlist.Remove(ctx, p.ID)
		}, show)
	case key.Matches(msg, m.keys.Clear):
		m.modal = NewModal("Empty the wishlist?",
			fmt.Sprintf("%d products will be removed.", m.app.Wishlist.Count()),
			m.run(m.app.Wishlist.Clear, show))
	}
	return nil
}

func (m *Model) handleNotificationsKey(msg tea.KeyMsg) tea.Cmd {
	q := m.app.Notifications
	n, ok := m.notifications.Selected()

	switch {
	case key.Matches(msg, m.keys.Up):
		m.notifications.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.notifications.MoveDown()
	case key.Matches(msg, m.keys.MarkAll):
		return func() tea.Msg { q.MarkAllAsRead(m.ctx); return nil }
	case key.Matches(msg, m.keys.Clear):
		m.modal = NewModal("Clear notifications?", "Every notification will be dismissed.",
			func() tea.Msg { q.ClearAll(m.ctx); return nil })
	case !ok:
		return nil
	case key.Matches(msg, m.keys.MarkRead):
		return func() tea.Msg { q.MarkAsRead(m.ctx, n.ID); return nil }
	case key.Matches(msg, m.keys.Remove):
		return func() tea.Msg { q.Remove(m.ctx, n.ID); return nil }
	}
	return nil
}

func (m *Model) handleStorageKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.storage.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.storage.MoveDown()
	case msg.String() == "shift+up", msg.String() == "K":
		m.storage.ScrollPreviewUp()
	case msg.String() == "shift+down", msg.String() == "J":
		m.storage.ScrollPreviewDown()
	case key.Matches(msg, m.keys.Refresh):
		return m.loadStorage()
	}
	return nil
}

// chrome is the number of rows used by the tab bar, status line and help.
func (m *Model) chrome() int {
	if m.showHelp {
		return 8
	}
	return 5
}

func (m *Model) resize() {
	h := max(m.height-m.chrome(), 1)
	m.cart.SetSize(m.width, h)
	m.wishlist.SetSize(m.width, h)
	m.notifications.SetSize(m.width, h)
	m.storage.SetSize(m.width, h)
}

func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}

	var body string
	switch m.tab {
	case tabCart:
		body = m.cart.View()
	case tabWishlist:
		body = m.wishlist.View()
	case tabNotifications:
		body = m.notifications.View()
	default:
		body = m.storage.View()
	}

	bodyHeight := max(m.height-m.chrome(), 1)
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	helpView := m.help.ShortHelpView(tabKeys{keys: m.keys, tab: m.tab}.ShortHelp())
	if m.showHelp {
		helpView = m.help.FullHelpView(tabKeys{keys: m.keys, tab: m.tab}.FullHelp())
	}

	screen := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabs(),
		body,
		m.renderStatus(),
		styles.HelpStyle.Render(helpView),
	)

	screen = m.toastView.Overlay(screen, m.width, m.height)
	return m.modal.Overlay(screen, m.width, m.height)
}

func (m *Model) renderTabs() string {
	labels := make([]string, 0, tabCount)
	for t := range tabCount {
		label := t.String()
		switch t {
		case tabCart:
			label += fmt.Sprintf(" (%d)", m.app.Cart.TotalItems())
		case tabWishlist:
			label += fmt.Sprintf(" (%d)", m.app.Wishlist.Count())
		case tabNotifications:
			if n := m.notifications.Unread(); n > 0 {
				label += fmt.Sprintf(" (%d)", n)
			}
		}
		if t == m.tab {
			labels = append(labels, styles.TabActiveStyle.Render(label))
		} else {
			labels = append(labels, styles.TabInactiveStyle.Render(label))
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Bottom, labels...)
	gap := styles.TabGapStyle.Render(strings.Repeat(" ", max(m.width-lipgloss.Width(row), 0)))
	return lipgloss.JoinHorizontal(lipgloss.Bottom, row, gap)
}

func (m *Model) renderStatus() string {
	left := styles.TextPrimaryBoldStyle.Render(styles.IconStore + " storefront")
	if m.opts.Version != "" {
		left += styles.TextMutedStyle.Render(" " + m.opts.Version)
	}
	if m.status != "" {
		left += "  " + m.status
	}
	return styles.StatusBarStyle.Width(m.width).Render(truncateOrPad(left, max(m.width-2, 0)))
}
