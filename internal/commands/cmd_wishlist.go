package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/storefront/internal/core/product"
	"github.com/colonyops/storefront/internal/core/styles"
	"github.com/colonyops/storefront/internal/shop"
	"github.com/colonyops/storefront/pkg/iojson"
)

type WishlistCmd struct {
	flags *Flags
	app   *shop.App

	addSrc     productSource
	moveQty    int
	category   string
	brand      string
	output     string
	importFile iojson.FileReader[any]
	yes        bool
	format     string
}

// NewWishlistCmd creates a new wishlist command.
func NewWishlistCmd(flags *Flags, app *shop.App) *WishlistCmd {
	return &WishlistCmd{flags: flags, app: app}
}

// Register adds the wishlist command to the application.
func (cmd *WishlistCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "wishlist",
		Before:  tagStore("wishlist"),
		Aliases: []string{"wl"},
		Usage:   "Manage saved products",
		Description: `Wishlist commands operate on the locally persisted wishlist.

Products are stored as snapshots and are never refreshed from the catalog.
"move" adds a wishlisted product to the cart and removes it from the
wishlist; if the removal fails the cart change is rolled back.`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.rmCmd(),
			cmd.lsCmd(),
			cmd.searchCmd(),
			cmd.moveCmd(),
			cmd.exportCmd(),
			cmd.importCmd(),
			cmd.clearCmd(),
		},
	})

	return app
}

func (cmd *WishlistCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Save a product",
		UsageText: "storefront wishlist add [--id <product-id> | -f product.json]",
		Flags:     cmd.addSrc.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			p, err := cmd.addSrc.resolve(ctx, cmd.app)
			if err != nil {
				return err
			}
			res := cmd.app.Wishlist.Add(ctx, p)
			cmd.app.Notifications.ShowWishlistResult(ctx, res)
			return report(c.Root().Writer, res)
		},
	}
}

func (cmd *WishlistCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:          "rm",
		Usage:         "Remove a saved product",
		UsageText:     "storefront wishlist rm <product-id>",
		ShellComplete: WishlistIDCompleter(cmd.app),
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("product id required")
			}
			res := cmd.app.Wishlist.Remove(ctx, id)
			cmd.app.Notifications.ShowWishlistResult(ctx, res)
			return report(c.Root().Writer, res)
		},
	}
}

func (cmd *WishlistCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List saved products",
		UsageText: "storefront wishlist ls [--category <name>] [--brand <name>] [--format json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "category",
				Usage:       "only show products in this category",
				Destination: &cmd.category,
			},
			&cli.StringFlag{
				Name:        "brand",
				Usage:       "only show products of this brand",
				Destination: &cmd.brand,
			},
			formatFlag(&cmd.format),
		},
		Action: func(_ context.Context, c *cli.Command) error {
			var items []product.Product
			switch {
			case cmd.category != "":
				items = cmd.app.Wishlist.ByCategory(cmd.category)
			case cmd.brand != "":
				items = cmd.app.Wishlist.ByBrand(cmd.brand)
			default:
				items = cmd.app.Wishlist.Items()
			}
			if cmd.category != "" && cmd.brand != "" {
				items = filterBrand(items, cmd.brand)
			}
			return cmd.print(c, items)
		},
	}
}

func filterBrand(items []product.Product, brand string) []product.Product {
	out := items[:0]
	for _, p := range items {
		if p.Brand == brand {
			out = append(out, p)
		}
	}
	return out
}

func (cmd *WishlistCmd) searchCmd() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search saved products by name, description or brand",
		UsageText: "storefront wishlist search <query>",
		Flags:     []cli.Flag{formatFlag(&cmd.format)},
		Action: func(_ context.Context, c *cli.Command) error {
			query := strings.Join(c.Args().Slice(), " ")
			return cmd.print(c, cmd.app.Wishlist.Search(query))
		},
	}
}

func (cmd *WishlistCmd) print(c *cli.Command, items []product.Product) error {
	if cmd.format == formatJSON {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, items)
	}

	w := c.Root().Writer
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, styles.EmptyStateStyle.Render("No saved products"))
		return nil
	}
	for _, p := range items {
		inCart := ""
		if cmd.app.Cart.Contains(p.ID) {
			inCart = " " + styles.TextAccentStyle.Render(styles.IconCart)
		}
		_, _ = fmt.Fprintf(w, "%s  %s  %s%s\n",
			styles.TextMutedStyle.Render(p.ID),
			styles.TextForegroundBoldStyle.Render(p.Name),
			renderPrice(p),
			inCart,
		)
	}
	return nil
}

func (cmd *WishlistCmd) moveCmd() *cli.Command {
	return &cli.Command{
		Name:          "move",
		Usage:         "Move a saved product into the cart",
		UsageText:     "storefront wishlist move <product-id> [--qty N]",
		ShellComplete: WishlistIDCompleter(cmd.app),
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "qty",
				Aliases:     []string{"q"},
				Usage:       "quantity to add to the cart",
				Value:       1,
				Destination: &cmd.moveQty,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("product id required")
			}
			res := cmd.app.Transfer.MoveToCart(ctx, id, cmd.moveQty)
			cmd.app.Notifications.ShowWishlistResult(ctx, res)
			return report(c.Root().Writer, res)
		},
	}
}

func (cmd *WishlistCmd) exportCmd() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export the wishlist as JSON",
		UsageText: "storefront wishlist export [-o file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "write to file instead of stdout",
				Destination: &cmd.output,
			},
		},
		Action: func(_ context.Context, c *cli.Command) error {
			doc, err := cmd.app.Wishlist.Export()
			if err != nil {
				return err
			}
			return writeDocument(c, cmd.output, doc)
		},
	}
}

func (cmd *WishlistCmd) importCmd() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import products from a wishlist export",
		UsageText: "storefront wishlist import [-f file]",
		Flags:     []cli.Flag{cmd.importFile.Flag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			raw, err := cmd.importFile.ReadRaw()
			if err != nil {
				return err
			}
			res := cmd.app.Wishlist.Import(ctx, string(raw))
			for _, e := range res.Errors {
				_, _ = fmt.Fprintln(c.Root().ErrWriter, styles.TextWarningStyle.Render(styles.IconDot+" "+e))
			}
			cmd.app.Notifications.ShowWishlistResult(ctx, res.Result)
			return report(c.Root().Writer, res.Result)
		},
	}
}

func (cmd *WishlistCmd) clearCmd() *cli.Command {
	return &cli.Command{
		Name:      "clear",
		Usage:     "Remove every saved product",
		UsageText: "storefront wishlist clear [--yes]",
		Flags:     []cli.Flag{yesFlag(&cmd.yes)},
		Action: func(ctx context.Context, c *cli.Command) error {
			if !cmd.app.Wishlist.IsEmpty() {
				ok, err := confirm("Empty the wishlist?",
					fmt.Sprintf("%d products will be removed", cmd.app.Wishlist.Count()), cmd.yes)
				if err != nil || !ok {
					return err
				}
			}
			res := cmd.app.Wishlist.Clear(ctx)
			cmd.app.Notifications.ShowWishlistResult(ctx, res)
			return report(c.Root().Writer, res)
		},
	}
}

// writeDocument writes doc to path, or to the command's writer when path is
// empty.
func writeDocument(c *cli.Command, path, doc string) error {
	if path == "" {
		_, err := fmt.Fprintln(c.Root().Writer, doc)
		return err
	}
	if err := os.WriteFile(path, []byte(doc+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	_, _ = fmt.Fprintln(c.Root().ErrWriter, styles.TextMutedStyle.Render("wrote "+path))
	return nil
}
