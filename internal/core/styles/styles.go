// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Accent     lipgloss.Color
}

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	// CLI text styles.
	TextPrimaryStyle        lipgloss.Style
	TextPrimaryBoldStyle    lipgloss.Style
	TextForegroundStyle     lipgloss.Style
	TextForegroundBoldStyle lipgloss.Style
	TextMutedStyle          lipgloss.Style
	TextSuccessStyle        lipgloss.Style
	TextWarningStyle        lipgloss.Style
	TextErrorStyle          lipgloss.Style
	TextAccentStyle         lipgloss.Style

	TableHeaderStyle lipgloss.Style
	DividerStyle     lipgloss.Style

	// Prices.
	PriceStyle    lipgloss.Style
	OldPriceStyle lipgloss.Style
	SavingsStyle  lipgloss.Style

	// TUI shared styles.
	TabActiveStyle   lipgloss.Style
	TabInactiveStyle lipgloss.Style
	TabGapStyle      lipgloss.Style
	RowSelectedStyle lipgloss.Style
	RowNormalStyle   lipgloss.Style
	RowUnreadStyle   lipgloss.Style
	StatusBarStyle   lipgloss.Style
	HelpStyle        lipgloss.Style
	ModalStyle       lipgloss.Style
	ModalTitleStyle  lipgloss.Style
	EmptyStateStyle  lipgloss.Style

	// Notification toasts keyed by type name.
	ToastStyles map[string]lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	TextPrimaryStyle = lipgloss.NewStyle().Foreground(p.Primary)
	TextPrimaryBoldStyle = TextPrimaryStyle.Bold(true)
	TextForegroundStyle = lipgloss.NewStyle().Foreground(p.Foreground)
	TextForegroundBoldStyle = TextForegroundStyle.Bold(true)
	TextMutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	TextSuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	TextWarningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	TextErrorStyle = lipgloss.NewStyle().Foreground(p.Error)
	TextAccentStyle = lipgloss.NewStyle().Foreground(p.Accent)

	TableHeaderStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true).
		PaddingRight(2)
	DividerStyle = lipgloss.NewStyle().
		Foreground(p.Muted)

	PriceStyle = lipgloss.NewStyle().Foreground(p.Foreground).Bold(true)
	OldPriceStyle = lipgloss.NewStyle().Foreground(p.Muted).Strikethrough(true)
	SavingsStyle = lipgloss.NewStyle().Foreground(p.Success)

	TabActiveStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder(), true, true, false, true).
		BorderForeground(p.Primary).
		Foreground(p.Primary).
		Bold(true).
		Padding(0, 1)
	TabInactiveStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder(), true, true, false, true).
		BorderForeground(p.Surface).
		Foreground(p.Muted).
		Padding(0, 1)
	TabGapStyle = lipgloss.NewStyle().
		Foreground(p.Surface)

	RowSelectedStyle = lipgloss.NewStyle().
		Background(p.Surface).
		Foreground(p.Foreground).
		Bold(true)
	RowNormalStyle = lipgloss.NewStyle().
		Foreground(p.Foreground)
	RowUnreadStyle = lipgloss.NewStyle().
		Foreground(p.Secondary).
		Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		PaddingTop(1)
	HelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Foreground)
	EmptyStateStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Italic(true).
		Padding(1, 2)

	toast := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	ToastStyles = map[string]lipgloss.Style{
		"success": toast.BorderForeground(p.Success),
		"error":   toast.BorderForeground(p.Error),
		"warning": toast.BorderForeground(p.Warning),
		"info":    toast.BorderForeground(p.Primary),
	}
}

// ToastStyle returns the toast style for a notification type, falling back
// to the info style.
func ToastStyle(kind string) lipgloss.Style {
	if s, ok := ToastStyles[kind]; ok {
		return s
	}
	return ToastStyles["info"]
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
