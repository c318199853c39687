package shop

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/storefront/internal/core/cart"
	"github.com/colonyops/storefront/internal/core/i18n"
	"github.com/colonyops/storefront/internal/core/product"
	"github.com/colonyops/storefront/internal/core/result"
)

// CartWriter is the part of the cart store a transfer needs.
type CartWriter interface {
	Add(ctx context.Context, p product.Product, qty int) result.Result
	Line(id string) (cart.Line, bool)
	UpdateQuantity(ctx context.Context, id string, qty int) result.Result
	Remove(ctx context.Context, id string) result.Result
}

// WishlistReader is the part of the wishlist store a transfer needs.
type WishlistReader interface {
	Get(id string) (product.Product, bool)
	MoveToCart(ctx context.Context, p product.Product) result.Result
}

// Transfer moves products from the wishlist into the cart. The cart is
// written first; when the wishlist removal then fails the cart change is
// rolled back, so a product is never lost from both collections.
type Transfer struct {
	mu       sync.Mutex
	cart     CartWriter
	wishlist WishlistReader
	printer  *i18n.Printer
	logger   zerolog.Logger
}

// NewTransfer creates a Transfer over the given stores.
func NewTransfer(c CartWriter, w WishlistReader, printer *i18n.Printer, logger zerolog.Logger) *Transfer {
	return &Transfer{cart: c, wishlist: w, printer: printer, logger: logger}
}

// MoveToCart adds qty of the wishlisted product to the cart and removes it
// from the wishlist.
func (t *Transfer) MoveToCart(ctx context.Context, productID string, qty int) result.Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Reserve: the snapshot comes from the wishlist, not the catalog.
	p, ok := t.wishlist.Get(productID)
	if !ok {
		return result.Fail(result.CodeNotFound, t.printer.T(i18n.WishlistNotFound))
	}

	prev, hadLine := t.cart.Line(productID)

	if res := t.cart.Add(ctx, p, qty); !res.Success {
		return res
	}

	res := t.wishlist.MoveToCart(ctx, p)
	if res.Success {
		return res
	}

	t.compensate(ctx, productID, prev, hadLine)
	t.logger.Warn().
		Str("product", productID).
		Str("code", string(res.Code)).
		Msg("wishlist removal failed, cart change rolled back")
	return res
}

func (t *Transfer) compensate(ctx context.Context, id string, prev cart.Line, hadLine bool) {
	var undo result.Result
	if hadLine {
		undo = t.cart.UpdateQuantity(ctx, id, prev.Quantity)
	} else {
		undo = t.cart.Remove(ctx, id)
	}
	if !undo.Success {
		t.logger.Error().
			Str("product", id).
			Str("message", undo.Message).
			Msg("roll back cart after failed transfer")
	}
}
