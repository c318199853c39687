package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/storefront/internal/core/product"
	"github.com/colonyops/storefront/internal/core/styles"
)

// SearchFunc returns the saved products matching query.
type SearchFunc func(query string) []product.Product

// WishlistView lists saved products with an incremental search box.
type WishlistView struct {
	all      []product.Product
	visible  []product.Product
	inCart   func(id string) bool
	search   SearchFunc
	input    textinput.Model
	list     listCursor
	width    int
	height   int
	filtered bool
}

func NewWishlistView(search SearchFunc, inCart func(id string) bool) *WishlistView {
	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "search name, description or brand"
	in.CharLimit = 64
	return &WishlistView{search: search, inCart: inCart, input: in}
}

func (v *WishlistView) SetItems(items []product.Product) {
	v.all = items
	v.applyFilter()
}

func (v *WishlistView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.input.Width = max(width-4, 10)
	v.list.SetHeight(height - 2)
}

func (v *WishlistView) MoveUp()   { v.list.Up() }
func (v *WishlistView) MoveDown() { v.list.Down() }

func (v *WishlistView) Selected() (product.Product, bool) {
	if len(v.visible) == 0 {
		return product.Product{}, false
	}
	return v.visible[v.list.Index()], true
}

func (v *WishlistView) IsFiltering() bool { return v.input.Focused() }

func (v *WishlistView) StartFilter() tea.Cmd {
	return v.input.Focus()
}

// ConfirmFilter leaves the search box, keeping the query applied.
func (v *WishlistView) ConfirmFilter() {
	v.input.Blur()
}

// CancelFilter clears the query.
func (v *WishlistView) CancelFilter() {
	v.input.Blur()
	v.input.SetValue("")
	v.applyFilter()
}

// UpdateFilter forwards a key press to the search box.
func (v *WishlistView) UpdateFilter(msg tea.Msg) tea.Cmd {
	before := v.input.Value()
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	if v.input.Value() != before {
		v.applyFilter()
		v.list.Reset()
	}
	return cmd
}

func (v *WishlistView) applyFilter() {
	q := strings.TrimSpace(v.input.Value())
	v.filtered = q != "" && v.search != nil
	if v.filtered {
		v.visible = v.search(q)
	} else {
		v.visible = v.all
	}
	v.list.SetTotal(len(v.visible))
}

func (v *WishlistView) View() string {
	lines := make([]string, 0, v.height)
	if v.input.Focused() || v.input.Value() != "" {
		lines = append(lines, v.input.View())
	}

	if len(v.visible) == 0 {
		msg := styles.IconHeart + "  No saved products"
		if v.filtered {
			msg = "No products match " + styles.TextAccentStyle.Render(v.input.Value())
		}
		lines = append(lines, styles.EmptyStateStyle.Render(msg))
		return strings.Join(lines, "\n")
	}

	nameWidth := max(v.width-priceColWidth-20, 10)
	start, end := v.list.Visible()
	for i := start; i < end; i++ {
		p := v.visible[i]
		indicator, style := "  ", styles.RowNormalStyle
		if i == v.list.Index() {
			indicator, style = styles.TextPrimaryStyle.Render("┃ "), styles.RowSelectedStyle
		}

		meta := styles.TextMutedStyle.Render(p.Brand)
		if p.Rating > 0 {
			meta = styles.TextWarningStyle.Render(styles.Stars(p.Rating)) + " " + meta
		}
		if v.inCart != nil && v.inCart(p.ID) {
			meta = styles.TextAccentStyle.Render(styles.IconCart) + " " + meta
		}

		row := indicator +
			truncateOrPad(style.Render(p.Name), nameWidth) +
			truncateOrPad(priceCell(p), priceColWidth) +
			meta
		lines = append(lines, truncateOrPad(row, v.width))
	}

	if sel, ok := v.Selected(); ok && sel.Description != "" {
		lines = padLines(lines, v.width, v.height-1)
		lines = append(lines, styles.TextMutedStyle.Render(truncateOrPad(sel.Description, v.width)))
	}
	return strings.Join(lines, "\n")
}
