package tui

import (
	"fmt"
	"strings"

	"github.com/colonyops/storefront/internal/core/cart"
	"github.com/colonyops/storefront/internal/core/styles"
)

const (
	priceColWidth    = 18
	qtyColWidth      = 6
	subtotalColWidth = 12
)

// CartView lists cart lines with a running summary.
type CartView struct {
	lines  []cart.Line
	list   listCursor
	width  int
	height int
}

func NewCartView() *CartView {
	return &CartView{}
}

func (v *CartView) SetLines(lines []cart.Line) {
	v.lines = lines
	v.list.SetTotal(len(lines))
}

func (v *CartView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.list.SetHeight(height - 4) // header, divider, summary rows
}

func (v *CartView) MoveUp()   { v.list.Up() }
func (v *CartView) MoveDown() { v.list.Down() }

// Selected returns the highlighted line.
func (v *CartView) Selected() (cart.Line, bool) {
	if len(v.lines) == 0 {
		return cart.Line{}, false
	}
	return v.lines[v.list.Index()], true
}

func (v *CartView) View() string {
	if len(v.lines) == 0 {
		return styles.EmptyStateStyle.Render(styles.IconCart + "  Your cart is empty")
	}

	nameWidth := max(v.width-priceColWidth-qtyColWidth-subtotalColWidth-4, 10)
	lines := make([]string, 0, v.height)

	header := truncateOrPad("  Product", nameWidth+2) +
		truncateOrPad("Price", priceColWidth) +
		truncateOrPad("Qty", qtyColWidth) +
		"Subtotal"
	lines = append(lines, styles.TableHeaderStyle.Render(truncateOrPad(header, v.width)))

	start, end := v.list.Visible()
	for i := start; i < end; i++ {
		l := v.lines[i]
		indicator, style := "  ", styles.RowNormalStyle
		if i == v.list.Index() {
			indicator, style = styles.TextPrimaryStyle.Render("┃ "), styles.RowSelectedStyle
		}
		row := indicator +
			truncateOrPad(style.Render(l.Product.Name), nameWidth) +
			truncateOrPad(priceCell(l.Product), priceColWidth) +
			truncateOrPad(fmt.Sprintf("×%d", l.Quantity), qtyColWidth) +
			styles.PriceStyle.Render(formatPrice(l.Subtotal()))
		lines = append(lines, truncateOrPad(row, v.width))
	}

	lines = padLines(lines, v.width, v.height-2)
	lines = append(lines, styles.DividerStyle.Render(strings.Repeat("─", max(v.width, 1))))
	lines = append(lines, renderCartSummary(cart.Summarize(v.lines)))
	return strings.Join(lines, "\n")
}

func renderCartSummary(s cart.Summary) string {
	out := fmt.Sprintf("%d lines · %d items · total %s",
		s.Lines, s.Items, styles.PriceStyle.Render(formatPrice(s.Total)))
	if s.Savings > 0 {
		out += "  " + styles.SavingsStyle.Render("you save "+formatPrice(s.Savings))
	}
	return out
}
