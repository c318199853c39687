package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// listCursor tracks the selection and scroll offset of a vertical list.
type listCursor struct {
	cursor int
	offset int
	total  int
	height int
}

func (l *listCursor) SetTotal(n int) {
	l.total = n
	if l.cursor >= n {
		l.cursor = max(n-1, 0)
	}
	l.clamp()
}

func (l *listCursor) SetHeight(h int) {
	l.height = max(h, 1)
	l.clamp()
}

func (l *listCursor) Up() {
	if l.cursor > 0 {
		l.cursor--
		l.clamp()
	}
}

func (l *listCursor) Down() {
	if l.cursor < l.total-1 {
		l.cursor++
		l.clamp()
	}
}

func (l *listCursor) Reset() {
	l.cursor = 0
	l.offset = 0
}

func (l *listCursor) Index() int { return l.cursor }

// Visible returns the half-open range of rows to render.
func (l *listCursor) Visible() (start, end int) {
	return l.offset, min(l.offset+max(l.height, 1), l.total)
}

func (l *listCursor) clamp() {
	visible := max(l.height, 1)
	if l.cursor < l.offset {
		l.offset = l.cursor
	} else if l.cursor >= l.offset+visible {
		l.offset = l.cursor - visible + 1
	}
	if l.offset > l.total-visible {
		l.offset = l.total - visible
	}
	if l.offset < 0 {
		l.offset = 0
	}
}

func truncateOrPad(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := ansi.StringWidth(s)
	if w > width {
		return ansi.Truncate(s, width, "…")
	}
	if w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// padLines extends lines with blank rows up to height.
func padLines(lines []string, width, height int) []string {
	blank := strings.Repeat(" ", max(width, 0))
	for len(lines) < height {
		lines = append(lines, blank)
	}
	return lines
}

// joinColumns merges line arrays horizontally.
func joinColumns(left, mid, right []string, height int) string {
	var b strings.Builder
	for i := range height {
		for _, col := range [][]string{left, mid, right} {
			if i < len(col) {
				b.WriteString(col[i])
			}
		}
		if i < height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
