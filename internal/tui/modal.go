package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/storefront/internal/core/styles"
)

// Modal is a confirmation dialog that runs onConfirm when accepted.
type Modal struct {
	title           string
	message         string
	visible         bool
	confirmSelected bool
	onConfirm       tea.Cmd
}

// NewModal creates a visible modal with the confirm button selected.
func NewModal(title, message string, onConfirm tea.Cmd) Modal {
	return Modal{
		title:           title,
		message:         message,
		visible:         true,
		confirmSelected: true,
		onConfirm:       onConfirm,
	}
}

func (m *Modal) ToggleSelection() {
	m.confirmSelected = !m.confirmSelected
}

func (m Modal) ConfirmSelected() bool {
	return m.confirmSelected
}

func (m Modal) Visible() bool {
	return m.visible
}

// HandleKey processes a key press and returns the command to run when the
// modal closes with confirmation.
func (m *Modal) HandleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left", "right", "tab", "h", "l":
		m.ToggleSelection()
	case "y":
		m.visible = false
		return m.onConfirm
	case "n", "esc", "q":
		m.visible = false
	case "enter":
		m.visible = false
		if m.confirmSelected {
			return m.onConfirm
		}
	}
	return nil
}

// Overlay centers the modal over the screen area.
func (m Modal) Overlay(background string, width, height int) string {
	if !m.visible {
		return background
	}

	button := lipgloss.NewStyle().Padding(0, 2).Foreground(styles.CurrentPalette.Muted)
	selected := button.Foreground(styles.CurrentPalette.Background).Background(styles.CurrentPalette.Primary).Bold(true)

	confirmBtn, cancelBtn := button.Render("Confirm"), selected.Render("Cancel")
	if m.confirmSelected {
		confirmBtn, cancelBtn = selected.Render("Confirm"), button.Render("Cancel")
	}
	buttons := lipgloss.NewStyle().MarginTop(1).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, confirmBtn, "  ", cancelBtn))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render(m.title),
		"",
		m.message,
		buttons,
		styles.HelpStyle.Render("←/→ select  y/enter confirm  n/esc cancel"),
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, styles.ModalStyle.Render(content))
}
