package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/storefront/internal/core/kvstore"
	"github.com/colonyops/storefront/internal/core/styles"
	"github.com/colonyops/storefront/internal/tui/jsoncolor"
)

// StorageView is a two-column browser over the key-value namespace: key
// list on the left, colorized value on the right.
type StorageView struct {
	items  []kvstore.Item
	info   kvstore.Info
	list   listCursor
	width  int
	height int

	previewLines  []string
	previewOffset int
}

func NewStorageView() *StorageView {
	return &StorageView{}
}

// SetItems replaces the listed items and keeps the selection on the same
// key when it still exists.
func (v *StorageView) SetItems(items []kvstore.Item, info kvstore.Info) {
	selected := v.SelectedKey()
	v.items = items
	v.info = info
	v.list.SetTotal(len(items))
	for i, it := range items {
		if it.Key == selected {
			for v.list.Index() < i {
				v.list.Down()
			}
			for v.list.Index() > i {
				v.list.Up()
			}
			break
		}
	}
	v.refreshPreview()
}

func (v *StorageView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.list.SetHeight(height - 2)
}

func (v *StorageView) SelectedKey() string {
	if len(v.items) == 0 {
		return ""
	}
	return v.items[v.list.Index()].Key
}

func (v *StorageView) MoveUp() {
	v.list.Up()
	v.refreshPreview()
}

func (v *StorageView) MoveDown() {
	v.list.Down()
	v.refreshPreview()
}

func (v *StorageView) ScrollPreviewUp() {
	if v.previewOffset > 0 {
		v.previewOffset--
	}
}

func (v *StorageView) ScrollPreviewDown() {
	if v.previewOffset < max(len(v.previewLines)-(v.height-4), 0) {
		v.previewOffset++
	}
}

func (v *StorageView) refreshPreview() {
	v.previewOffset = 0
	v.previewLines = nil
	if len(v.items) > 0 {
		v.previewLines = jsoncolor.Lines(v.items[v.list.Index()].Value)
	}
}

func (v *StorageView) View() string {
	if v.width < 20 || v.height < 3 {
		return ""
	}

	listWidth := max(v.width/4, 18)
	previewWidth := max(v.width-listWidth-1, 10)
	contentHeight := max(v.height-1, 1)

	divider := make([]string, contentHeight)
	for i := range divider {
		divider[i] = styles.TextMutedStyle.Render("│")
	}

	content := joinColumns(
		v.renderKeys(listWidth, contentHeight),
		divider,
		v.renderPreview(previewWidth, contentHeight),
		contentHeight,
	)
	return content + "\n" + v.renderUsage()
}

func (v *StorageView) renderKeys(width, height int) []string {
	lines := []string{styles.TextMutedStyle.Render(truncateOrPad("  Keys", width))}

	start, end := v.list.Visible()
	for i := start; i < end; i++ {
		key := ansi.Truncate(v.items[i].Key, width-3, "…")
		line := "  " + styles.TextMutedStyle.Render(key)
		if i == v.list.Index() {
			line = styles.TextPrimaryStyle.Render("┃ ") + styles.TextForegroundStyle.Render(key)
		}
		lines = append(lines, truncateOrPad(line, width))
	}
	return padLines(lines, width, height)
}

func (v *StorageView) renderPreview(width, height int) []string {
	pad := func(s string) string { return truncateOrPad(s, width) }

	if len(v.items) == 0 {
		lines := []string{pad(styles.TextMutedStyle.Render("  " + styles.IconDatabase + "  Storage is empty"))}
		return padLines(lines, width, height)
	}

	it := v.items[v.list.Index()]
	meta := "  " + styles.TextPrimaryBoldStyle.Render(it.Key) +
		styles.TextMutedStyle.Render(" · "+formatBytes(it.Size)+" · updated "+it.LastModified.Local().Format("2006-01-02 15:04"))
	if it.Metadata != nil && it.Metadata.LastAccessed != nil {
		meta += styles.TextMutedStyle.Render(" · read " + formatAge(time.Since(*it.Metadata.LastAccessed)) + " ago")
	}

	lines := []string{
		pad(meta),
		pad(styles.TextMutedStyle.Render("  " + strings.Repeat("─", max(width-2, 1)))),
	}

	room := max(height-len(lines), 1)
	for i := v.previewOffset; i < len(v.previewLines) && i < v.previewOffset+room; i++ {
		lines = append(lines, pad("  "+v.previewLines[i]))
	}
	return padLines(lines, width, height)
}

func (v *StorageView) renderUsage() string {
	style := styles.TextSuccessStyle
	switch {
	case v.info.QuotaExceeded:
		style = styles.TextErrorStyle
	case v.info.Percentage >= 80:
		style = styles.TextWarningStyle
	}
	return styles.TextMutedStyle.Render(formatBytes(v.info.Used)+" used · ") +
		style.Render(fmt.Sprintf("%.1f%%", v.info.Percentage)) +
		styles.TextMutedStyle.Render(" of quota · "+formatBytes(v.info.Available)+" free")
}
