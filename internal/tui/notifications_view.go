package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/storefront/internal/core/notify"
	"github.com/colonyops/storefront/internal/core/styles"
)

// NotificationsView lists queued notifications, newest first.
type NotificationsView struct {
	items  []notify.Notification
	list   listCursor
	width  int
	height int
	now    func() time.Time
}

func NewNotificationsView() *NotificationsView {
	return &NotificationsView{now: time.Now}
}

func (v *NotificationsView) SetItems(items []notify.Notification) {
	v.items = items
	v.list.SetTotal(len(items))
}

func (v *NotificationsView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.list.SetHeight(height - 3)
}

func (v *NotificationsView) MoveUp()   { v.list.Up() }
func (v *NotificationsView) MoveDown() { v.list.Down() }

func (v *NotificationsView) Selected() (notify.Notification, bool) {
	if len(v.items) == 0 {
		return notify.Notification{}, false
	}
	return v.items[v.list.Index()], true
}

func (v *NotificationsView) Unread() int {
	n := 0
	for _, it := range v.items {
		if !it.Read {
			n++
		}
	}
	return n
}

func (v *NotificationsView) View() string {
	if len(v.items) == 0 {
		return styles.EmptyStateStyle.Render(styles.IconBell + "  No notifications")
	}

	lines := make([]string, 0, v.height)
	start, end := v.list.Visible()
	for i := start; i < end; i++ {
		n := v.items[i]
		indicator := "  "
		if i == v.list.Index() {
			indicator = styles.TextPrimaryStyle.Render("┃ ")
		}

		style := styles.RowNormalStyle
		if !n.Read {
			style = styles.RowUnreadStyle
		}
		icon := typeStyle(n.Type).Render(notify.Icon(n.Type))

		age := styles.TextMutedStyle.Render(formatAge(v.now().Sub(n.Timestamp)))
		pin := ""
		if !n.AutoClose {
			pin = styles.TextMutedStyle.Render(" " + styles.IconDot)
		}

		row := fmt.Sprintf("%s%s %s  %s%s  %s", indicator, icon, style.Render(n.Title), n.Message, pin, age)
		lines = append(lines, truncateOrPad(row, v.width))
	}

	lines = padLines(lines, v.width, v.height-1)
	lines = append(lines, styles.TextMutedStyle.Render(
		fmt.Sprintf("%d notifications · %d unread", len(v.items), v.Unread())))
	return strings.Join(lines, "\n")
}

func typeStyle(t notify.Type) lipgloss.Style {
	switch t {
	case notify.TypeSuccess:
		return styles.TextSuccessStyle
	case notify.TypeError:
		return styles.TextErrorStyle
	case notify.TypeWarning:
		return styles.TextWarningStyle
	default:
		return styles.TextPrimaryStyle
	}
}
