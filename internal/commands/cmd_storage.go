package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/storefront/internal/core/kvstore"
	"github.com/colonyops/storefront/internal/core/styles"
	"github.com/colonyops/storefront/internal/shop"
	"github.com/colonyops/storefront/pkg/iojson"
)

type StorageCmd struct {
	flags *Flags
	app   *shop.App

	pattern    string
	output     string
	importFile iojson.FileReader[any]
	clear      bool
	yes        bool
	format     string
}

// NewStorageCmd creates a new storage command.
func NewStorageCmd(flags *Flags, app *shop.App) *StorageCmd {
	return &StorageCmd{flags: flags, app: app}
}

// Register adds the storage command to the application.
func (cmd *StorageCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "storage",
		Before:  tagStore("kvstore"),
		Aliases: []string{"kv"},
		Usage:   "Inspect and maintain the local key-value store",
		Description: `Storage commands operate on the namespaced key-value store that backs
the cart, wishlist and notifications.

Keys are shown without the namespace prefix. Values are JSON documents.`,
		Commands: []*cli.Command{
			cmd.infoCmd(),
			cmd.lsCmd(),
			cmd.getCmd(),
			cmd.setCmd(),
			cmd.rmCmd(),
			cmd.clearCmd(),
			cmd.exportCmd(),
			cmd.importCmd(),
			cmd.statsCmd(),
			cmd.purgeCmd(),
			cmd.migratePrefixCmd(),
		},
	})

	return app
}

func (cmd *StorageCmd) infoCmd() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "Show usage against the storage quota",
		Flags: []cli.Flag{formatFlag(&cmd.format)},
		Action: func(ctx context.Context, c *cli.Command) error {
			health := cmd.app.KV.CheckHealth(ctx)
			if cmd.format == formatJSON {
				return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, health)
			}

			w := c.Root().Writer
			_, _ = fmt.Fprintf(w, "%s %s\n", styles.TextPrimaryBoldStyle.Render(styles.IconDatabase), renderHealth(health.Status))
			_, _ = fmt.Fprintf(w, "  used       %s\n", formatBytes(health.Info.Used))
			_, _ = fmt.Fprintf(w, "  available  %s\n", formatBytes(health.Info.Available))
			_, _ = fmt.Fprintf(w, "  usage      %.1f%%\n", health.Info.Percentage)
			return nil
		},
	}
}

func renderHealth(s kvstore.HealthStatus) string {
	switch s {
	case kvstore.HealthOK:
		return styles.TextSuccessStyle.Render(string(s))
	case kvstore.HealthWarning:
		return styles.TextWarningStyle.Render(string(s))
	default:
		return styles.TextErrorStyle.Render(string(s))
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func (cmd *StorageCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List stored keys",
		UsageText: "storefront storage ls [--pattern 'user/**']",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "pattern",
				Aliases:     []string{"p"},
				Usage:       "only list keys matching this glob",
				Destination: &cmd.pattern,
			},
			formatFlag(&cmd.format),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if cmd.format == formatJSON {
				items := cmd.app.KV.AllItems(ctx)
				if cmd.pattern != "" {
					keys, err := cmd.app.KV.Keys(ctx, cmd.pattern)
					if err != nil {
						return err
					}
					items = filterItems(items, keys)
				}
				return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, items)
			}

			keys, err := cmd.app.KV.Keys(ctx, cmd.pattern)
			if err != nil {
				return err
			}
			w := c.Root().Writer
			if len(keys) == 0 {
				_, _ = fmt.Fprintln(w, styles.EmptyStateStyle.Render("No keys"))
				return nil
			}
			for _, k := range keys {
				_, _ = fmt.Fprintln(w, k)
			}
			return nil
		},
	}
}

func filterItems(items []kvstore.Item, keys []string) []kvstore.Item {
	keep := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		keep[k] = struct{}{}
	}
	out := make([]kvstore.Item, 0, len(keys))
	for _, it := range items {
		if _, ok := keep[it.Key]; ok {
			out = append(out, it)
		}
	}
	return out
}

func (cmd *StorageCmd) getCmd() *cli.Command {
	return &cli.Command{
		Name:          "get",
		Usage:         "Print the value stored under a key",
		UsageText:     "storefront storage get <key>",
		ShellComplete: StorageKeyCompleter(cmd.app),
		Action: func(ctx context.Context, c *cli.Command) error {
			key := c.Args().First()
			if key == "" {
				return fmt.Errorf("key required")
			}

			var raw json.RawMessage
			res := cmd.app.KV.Get(ctx, key, &raw)
			if !res.Success {
				return report(c.Root().ErrWriter, res)
			}
			return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, raw)
		},
	}
}

func (cmd *StorageCmd) setCmd() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store a JSON value under a key",
		UsageText: "storefront storage set <key> <json>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() < 2 {
				return fmt.Errorf("key and value required")
			}
			key := c.Args().Get(0)
			value := strings.Join(c.Args().Slice()[1:], " ")

			raw := json.RawMessage(value)
			if !json.Valid(raw) {
				// bare words are stored as strings
				encoded, err := json.Marshal(value)
				if err != nil {
					return err
				}
				raw = encoded
			}

			res := cmd.app.KV.Set(ctx, key, raw)
			return report(c.Root().Writer, res)
		},
	}
}

func (cmd *StorageCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:          "rm",
		Usage:         "Remove a key",
		UsageText:     "storefront storage rm <key>",
		ShellComplete: StorageKeyCompleter(cmd.app),
		Action: func(ctx context.Context, c *cli.Command) error {
			key := c.Args().First()
			if key == "" {
				return fmt.Errorf("key required")
			}
			return report(c.Root().Writer, cmd.app.KV.Remove(ctx, key))
		},
	}
}

func (cmd *StorageCmd) clearCmd() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Remove every namespaced key",
		Flags: []cli.Flag{yesFlag(&cmd.yes)},
		Action: func(ctx context.Context, c *cli.Command) error {
			ok, err := confirm("Clear local storage?",
				"Every cart, wishlist and notification record will be removed.", cmd.yes)
			if err != nil || !ok {
				return err
			}

			res := cmd.app.KV.ClearAll(ctx)
			cmd.app.Reload(ctx)
			cmd.app.Notifications.ShowStorageResult(ctx, res.Result)
			return report(c.Root().Writer, res.Result)
		},
	}
}

func (cmd *StorageCmd) exportCmd() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write a backup of every namespaced key",
		UsageText: "storefront storage export [-o backup.json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "write to file instead of stdout",
				Destination: &cmd.output,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			doc, err := cmd.app.KV.Export(ctx)
			if err != nil {
				return err
			}
			return writeDocument(c, cmd.output, doc)
		},
	}
}

func (cmd *StorageCmd) importCmd() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Restore keys from a backup",
		UsageText: "storefront storage import [-f backup.json] [--clear]",
		Flags: []cli.Flag{
			cmd.importFile.Flag(),
			&cli.BoolFlag{
				Name:        "clear",
				Usage:       "remove existing keys before importing",
				Destination: &cmd.clear,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			raw, err := cmd.importFile.ReadRaw()
			if err != nil {
				return err
			}

			res := cmd.app.KV.Import(ctx, string(raw), kvstore.ImportOptions{ClearExisting: cmd.clear})
			for _, e := range res.Errors {
				_, _ = fmt.Fprintln(c.Root().ErrWriter, styles.TextWarningStyle.Render(styles.IconDot+" "+e))
			}
			cmd.app.Reload(ctx)
			cmd.app.Notifications.ShowStorageResult(ctx, res.Result)
			return report(c.Root().Writer, res.Result)
		},
	}
}

func (cmd *StorageCmd) statsCmd() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Summarize stored items",
		Flags: []cli.Flag{formatFlag(&cmd.format)},
		Action: func(ctx context.Context, c *cli.Command) error {
			stats, err := cmd.app.KV.Stats(ctx)
			if err != nil {
				return err
			}
			if cmd.format == formatJSON {
				return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, stats)
			}

			w := c.Root().Writer
			_, _ = fmt.Fprintf(w, "items         %d\n", stats.TotalItems)
			_, _ = fmt.Fprintf(w, "total size    %s\n", formatBytes(stats.TotalSize))
			_, _ = fmt.Fprintf(w, "average size  %s\n", formatBytes(stats.AverageItemSize))
			if stats.OldestItem != nil {
				_, _ = fmt.Fprintf(w, "oldest        %s\n", stats.OldestItem.Local().Format("2006-01-02 15:04"))
			}
			if stats.NewestItem != nil {
				_, _ = fmt.Fprintf(w, "newest        %s\n", stats.NewestItem.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func (cmd *StorageCmd) purgeCmd() *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Remove items older than the retention period",
		Action: func(ctx context.Context, c *cli.Command) error {
			n, err := cmd.app.KV.PurgeExpired(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(c.Root().Writer, "%s purged %d expired items\n",
				styles.TextSuccessStyle.Render(styles.IconCheck), n)
			return nil
		},
	}
}

func (cmd *StorageCmd) migratePrefixCmd() *cli.Command {
	return &cli.Command{
		Name:      "migrate-prefix",
		Usage:     "Move keys from an older namespace prefix into the current one",
		UsageText: "storefront storage migrate-prefix <old-prefix>",
		Action: func(ctx context.Context, c *cli.Command) error {
			old := c.Args().First()
			n, err := cmd.app.KV.MigratePrefix(ctx, old)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(c.Root().Writer, "%s moved %d keys from %q to %q\n",
				styles.TextSuccessStyle.Render(styles.IconCheck), n, old, cmd.app.KV.Prefix())
			return nil
		},
	}
}
