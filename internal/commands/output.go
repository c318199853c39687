package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/storefront/internal/core/logging"
	"github.com/colonyops/storefront/internal/core/notify"
	"github.com/colonyops/storefront/internal/core/product"
	"github.com/colonyops/storefront/internal/core/result"
	"github.com/colonyops/storefront/internal/core/styles"
	"github.com/colonyops/storefront/internal/shop"
	"github.com/colonyops/storefront/pkg/iojson"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func formatFlag(dest *string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "format",
		Usage:       "output format (text, json)",
		Value:       formatText,
		Destination: dest,
	}
}

func yesFlag(dest *bool) *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "yes",
		Aliases:     []string{"y"},
		Usage:       "skip the confirmation prompt",
		Destination: dest,
	}
}

// tagStore is a Before hook that names the store a command group works on,
// so store log entries carry it through logging.ContextHook.
func tagStore(name string) cli.BeforeFunc {
	return func(ctx context.Context, c *cli.Command) (context.Context, error) {
		return logging.WithOperation(logging.WithStore(ctx, name), c.Args().First()), nil
	}
}

// report prints a store result and turns a failure into a non-zero exit.
func report(w io.Writer, res result.Result) error {
	if !res.Success {
		_, _ = fmt.Fprintln(w, styles.TextErrorStyle.Render(styles.IconCross+" "+res.Message))
		return cli.Exit("", 1)
	}
	_, _ = fmt.Fprintln(w, styles.TextSuccessStyle.Render(styles.IconCheck+" "+res.Message))
	return nil
}

// confirm asks a yes/no question unless skip is set. A declined or aborted
// prompt returns false without an error.
func confirm(title, description string, skip bool) (bool, error) {
	if skip {
		return true, nil
	}

	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}

// productSource resolves the product a command operates on: fetched from the
// catalog when --id is set, otherwise read as JSON from --file or stdin.
type productSource struct {
	id     string
	reader iojson.FileReader[product.Product]
}

func (ps *productSource) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "id",
			Usage:       "fetch the product from the catalog API by id",
			Destination: &ps.id,
		},
		ps.reader.Flag(),
	}
}

func (ps *productSource) resolve(ctx context.Context, app *shop.App) (product.Product, error) {
	if id := strings.TrimSpace(ps.id); id != "" {
		p, err := app.Catalog.GetProduct(ctx, id)
		if err != nil {
			return product.Product{}, fmt.Errorf("fetch product %s: %w", id, err)
		}
		return p, nil
	}

	p, err := ps.reader.Read()
	if err != nil {
		return product.Product{}, fmt.Errorf("read product: %w", err)
	}
	return p, nil
}

func formatPrice(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func renderPrice(p product.Product) string {
	if !p.OnSale() {
		return styles.PriceStyle.Render(formatPrice(p.EffectivePrice()))
	}
	return fmt.Sprintf("%s %s %s",
		styles.PriceStyle.Render(formatPrice(p.EffectivePrice())),
		styles.OldPriceStyle.Render(formatPrice(p.ListPrice())),
		styles.SavingsStyle.Render(fmt.Sprintf("-%d%%", p.DiscountPercent())),
	)
}

func notificationLine(n notify.Notification) string {
	style := styles.RowNormalStyle
	if !n.Read {
		style = styles.RowUnreadStyle
	}
	ts := styles.TextMutedStyle.Render(n.Timestamp.Local().Format("2006-01-02 15:04"))
	return fmt.Sprintf("%s %s %s  %s  %s",
		notify.Icon(n.Type), style.Render(n.Title), n.Message, ts, styles.TextMutedStyle.Render(n.ID))
}
