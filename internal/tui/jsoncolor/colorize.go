// Package jsoncolor renders stored JSON values with theme colors for the
// storage browser.
package jsoncolor

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/storefront/internal/core/styles"
)

// Colorize pretty-prints data with syntax coloring. Invalid JSON is
// returned unchanged.
func Colorize(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	raw := buf.String()

	var out strings.Builder
	for i := 0; i < len(raw); {
		n, style := scan(raw, i)
		if style == nil {
			out.WriteByte(raw[i])
			i++
			continue
		}
		out.WriteString(style.Render(raw[i : i+n]))
		i += n
	}
	return out.String()
}

// Lines is Colorize split on newlines.
func Lines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	return strings.Split(Colorize(data), "\n")
}

// scan returns the length of the token starting at pos and the style to
// render it with. A nil style means the byte is written as is.
func scan(raw string, pos int) (int, *lipgloss.Style) {
	switch ch := raw[pos]; {
	case ch == '"':
		end := findStringEnd(raw, pos)
		rest := strings.TrimLeft(raw[end+1:], " \t")
		if strings.HasPrefix(rest, ":") {
			return end + 1 - pos, &styles.TextPrimaryStyle
		}
		return end + 1 - pos, &styles.TextSuccessStyle
	case ch == ':':
		return 1, &styles.TextMutedStyle
	case ch >= '0' && ch <= '9' || ch == '-':
		end := pos + 1
		for end < len(raw) && strings.IndexByte("0123456789.eE+-", raw[end]) >= 0 {
			end++
		}
		return end - pos, &styles.TextWarningStyle
	case ch == '{' || ch == '}' || ch == '[' || ch == ']':
		return 1, &styles.TextForegroundStyle
	}

	for _, lit := range []string{"true", "false"} {
		if strings.HasPrefix(raw[pos:], lit) {
			return len(lit), &styles.TextAccentStyle
		}
	}
	if strings.HasPrefix(raw[pos:], "null") {
		return 4, &styles.TextErrorStyle
	}
	return 1, nil
}

// findStringEnd returns the index of the closing quote for a JSON string
// starting at pos.
func findStringEnd(s string, pos int) int {
	for i := pos + 1; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == '"' {
			return i
		}
	}
	return len(s) - 1
}
