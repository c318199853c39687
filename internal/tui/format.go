package tui

import (
	"fmt"
	"time"

	"github.com/colonyops/storefront/internal/core/product"
	"github.com/colonyops/storefront/internal/core/styles"
)

func formatPrice(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// priceCell renders the effective price, with the list price struck
// through when the product is on sale.
func priceCell(p product.Product) string {
	s := styles.PriceStyle.Render(formatPrice(p.EffectivePrice()))
	if p.OnSale() {
		s += " " + styles.OldPriceStyle.Render(formatPrice(p.ListPrice()))
	}
	return s
}

// formatAge returns a compact relative age such as "3m" or "2d".
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours())/24)
	}
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
