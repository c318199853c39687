package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/storefront/internal/core/notify"
	"github.com/colonyops/storefront/internal/core/styles"
)

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// ToastView renders the toast stack, oldest at the top.
type ToastView struct {
	controller *ToastController
}

func NewToastView(controller *ToastController) *ToastView {
	return &ToastView{controller: controller}
}

func (v *ToastView) View() string {
	toasts := v.controller.Toasts()
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, renderToast(t.notification))
	}
	return strings.Join(rendered, "\n")
}

func renderToast(n notify.Notification) string {
	head := notify.Icon(n.Type)
	if n.Title != "" {
		head += " " + lipgloss.NewStyle().Bold(true).Render(n.Title)
	}
	content := head
	if n.Message != "" {
		content += "\n" + n.Message
	}
	return styles.ToastStyle(string(n.Type)).Width(toastWidth).Render(content)
}

// Overlay places the toast stack in the lower-right corner of background,
// replacing its bottom rows.
func (v *ToastView) Overlay(background string, width, height int) string {
	stack := v.View()
	if stack == "" {
		return background
	}

	bg := strings.Split(background, "\n")
	for len(bg) < height {
		bg = append(bg, "")
	}
	toastLines := strings.Split(stack, "\n")
	toastW := lipgloss.Width(stack)
	left := max(width-toastW-1, 0)

	start := max(len(bg)-len(toastLines)-1, 0)
	for i, line := range toastLines {
		row := start + i
		if row >= len(bg) {
			break
		}
		bg[row] = truncateOrPad(bg[row], left) + line
	}
	return strings.Join(bg, "\n")
}
