package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/storefront/internal/shop"
)

// idCompleter returns a ShellCompleteFunc that suggests the ids returned
// by list as positional completions. When the last typed argument starts
// with "-" it falls back to flag completion.
func idCompleter(list func() []string) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		w := cmd.Root().Writer
		for _, id := range list() {
			_, _ = fmt.Fprintln(w, id)
		}
	}
}

// CartIDCompleter suggests product ids currently in the cart.
func CartIDCompleter(app *shop.App) cli.ShellCompleteFunc {
	return idCompleter(func() []string {
		lines := app.Cart.Lines()
		ids := make([]string, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.Product.ID)
		}
		return ids
	})
}

// WishlistIDCompleter suggests saved product ids.
func WishlistIDCompleter(app *shop.App) cli.ShellCompleteFunc {
	return idCompleter(func() []string {
		items := app.Wishlist.Items()
		ids := make([]string, 0, len(items))
		for _, p := range items {
			ids = append(ids, p.ID)
		}
		return ids
	})
}

// NotificationIDCompleter suggests queued notification ids.
func NotificationIDCompleter(app *shop.App) cli.ShellCompleteFunc {
	return idCompleter(func() []string {
		items := app.Notifications.Items()
		ids := make([]string, 0, len(items))
		for _, n := range items {
			ids = append(ids, n.ID)
		}
		return ids
	})
}

// StorageKeyCompleter suggests namespaced keys.
func StorageKeyCompleter(app *shop.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		keys, err := app.KV.Keys(ctx, "")
		if err != nil {
			return
		}
		idCompleter(func() []string { return keys })(ctx, cmd)
	}
}
