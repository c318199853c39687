package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/storefront/internal/core/cart"
	"github.com/colonyops/storefront/internal/core/styles"
	"github.com/colonyops/storefront/internal/shop"
	"github.com/colonyops/storefront/pkg/iojson"
)

type CartCmd struct {
	flags *Flags
	app   *shop.App

	addSrc productSource
	addQty int
	yes    bool
	format string
}

// NewCartCmd creates a new cart command.
func NewCartCmd(flags *Flags, app *shop.App) *CartCmd {
	return &CartCmd{flags: flags, app: app}
}

// Register adds the cart command to the application.
func (cmd *CartCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:   "cart",
		Before: tagStore("cart"),
		Usage:  "Manage the shopping cart",
		Description: `Cart commands operate on the locally persisted cart.

Each product appears once; adding a product that is already in the cart
increases its quantity. Product snapshots are read as JSON from --file or
stdin, or fetched from the catalog API with --id.`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.rmCmd(),
			cmd.qtyCmd(),
			cmd.lsCmd(),
			cmd.totalCmd(),
			cmd.clearCmd(),
		},
	})

	return app
}

func (cmd *CartCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a product to the cart",
		UsageText: "storefront cart add [--id <product-id> | -f product.json] [--qty N]",
		Flags: append(cmd.addSrc.flags(),
			&cli.IntFlag{
				Name:        "qty",
				Aliases:     []string{"q"},
				Usage:       "quantity to add",
				Value:       1,
				Destination: &cmd.addQty,
			},
		),
		Action: cmd.runAdd,
	}
}

func (cmd *CartCmd) runAdd(ctx context.Context, c *cli.Command) error {
	p, err := cmd.addSrc.resolve(ctx, cmd.app)
	if err != nil {
		return err
	}

	res := cmd.app.Cart.Add(ctx, p, cmd.addQty)
	cmd.app.Notifications.ShowCartResult(ctx, res)
	return report(c.Root().Writer, res)
}

func (cmd *CartCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:          "rm",
		Usage:         "Remove a product from the cart",
		UsageText:     "storefront cart rm <product-id>",
		ShellComplete: CartIDCompleter(cmd.app),
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("product id required")
			}
			res := cmd.app.Cart.Remove(ctx, id)
			cmd.app.Notifications.ShowCartResult(ctx, res)
			return report(c.Root().Writer, res)
		},
	}
}

func (cmd *CartCmd) qtyCmd() *cli.Command {
	return &cli.Command{
		Name:          "qty",
		Usage:         "Set the quantity of a product (0 removes it)",
		UsageText:     "storefront cart qty <product-id> <quantity>",
		ShellComplete: CartIDCompleter(cmd.app),
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 2 {
				return fmt.Errorf("usage: storefront cart qty <product-id> <quantity>")
			}
			qty, err := strconv.Atoi(c.Args().Get(1))
			if err != nil {
				return fmt.Errorf("invalid quantity %q", c.Args().Get(1))
			}
			res := cmd.app.Cart.UpdateQuantity(ctx, c.Args().Get(0), qty)
			cmd.app.Notifications.ShowCartResult(ctx, res)
			return report(c.Root().Writer, res)
		},
	}
}

func (cmd *CartCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List cart lines",
		UsageText: "storefront cart ls [--format json]",
		Flags:     []cli.Flag{formatFlag(&cmd.format)},
		Action: func(_ context.Context, c *cli.Command) error {
			lines := cmd.app.Cart.Lines()
			if cmd.format == formatJSON {
				return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, lines)
			}

			w := c.Root().Writer
			if len(lines) == 0 {
				_, _ = fmt.Fprintln(w, styles.EmptyStateStyle.Render("The cart is empty"))
				return nil
			}
			for _, l := range lines {
				_, _ = fmt.Fprintf(w, "%s  %s  x%d  %s\n",
					styles.TextMutedStyle.Render(l.Product.ID),
					styles.TextForegroundBoldStyle.Render(l.Product.Name),
					l.Quantity,
					renderPrice(l.Product),
				)
			}
			return nil
		},
	}
}

func (cmd *CartCmd) totalCmd() *cli.Command {
	return &cli.Command{
		Name:      "total",
		Usage:     "Show item count, savings and total price",
		UsageText: "storefront cart total [--format json]",
		Flags:     []cli.Flag{formatFlag(&cmd.format)},
		Action: func(_ context.Context, c *cli.Command) error {
			sum := cmd.app.Cart.Summary()
			if cmd.format == formatJSON {
				return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, sum)
			}
			_, _ = fmt.Fprintln(c.Root().Writer, renderSummary(sum))
			return nil
		},
	}
}

func renderSummary(sum cart.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d lines, %d items\n", styles.TextMutedStyle.Render("Items:"), sum.Lines, sum.Items)
	fmt.Fprintf(&b, "%s %s\n", styles.TextMutedStyle.Render("Subtotal:"), formatPrice(sum.Subtotal))
	if sum.Savings > 0 {
		fmt.Fprintf(&b, "%s %s\n", styles.TextMutedStyle.Render("Savings:"), styles.SavingsStyle.Render("-"+formatPrice(sum.Savings)))
	}
	fmt.Fprintf(&b, "%s %s", styles.TextMutedStyle.Render("Total:"), styles.PriceStyle.Render(formatPrice(sum.Total)))
	return b.String()
}

func (cmd *CartCmd) clearCmd() *cli.Command {
	return &cli.Command{
		Name:      "clear",
		Usage:     "Remove every product from the cart",
		UsageText: "storefront cart clear [--yes]",
		Flags:     []cli.Flag{yesFlag(&cmd.yes)},
		Action: func(ctx context.Context, c *cli.Command) error {
			if cmd.app.Cart.IsEmpty() {
				return report(c.Root().Writer, cmd.app.Cart.Clear(ctx))
			}

			ok, err := confirm("Empty the cart?",
				fmt.Sprintf("%d products will be removed", cmd.app.Cart.Len()), cmd.yes)
			if err != nil || !ok {
				return err
			}
			res := cmd.app.Cart.Clear(ctx)
			cmd.app.Notifications.ShowCartResult(ctx, res)
			return report(c.Root().Writer, res)
		},
	}
}
