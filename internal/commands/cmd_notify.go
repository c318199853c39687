package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/storefront/internal/core/notify"
	"github.com/colonyops/storefront/internal/core/styles"
	"github.com/colonyops/storefront/internal/shop"
	"github.com/colonyops/storefront/pkg/iojson"
)

type NotifyCmd struct {
	flags *Flags
	app   *shop.App

	unread     bool
	typ        string
	since      time.Duration
	all        bool
	title      string
	message    string
	persistent bool
	duration   time.Duration
	format     string
}

// NewNotifyCmd creates a new notify command.
func NewNotifyCmd(flags *Flags, app *shop.App) *NotifyCmd {
	return &NotifyCmd{flags: flags, app: app}
}

// Register adds the notify command to the application.
func (cmd *NotifyCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "notify",
		Before:  tagStore("notify"),
		Aliases: []string{"n"},
		Usage:   "Inspect and manage notifications",
		Description: `Notification commands operate on the notification queue.

Only notifications shown while persistence is enabled survive between runs.
Auto-closing notifications expire once their duration has elapsed.`,
		Commands: []*cli.Command{
			cmd.lsCmd(),
			cmd.readCmd(),
			cmd.rmCmd(),
			cmd.clearCmd(),
			cmd.showCmd(),
		},
	})

	return app
}

func (cmd *NotifyCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List notifications, newest first",
		UsageText: "storefront notify ls [--unread] [--type <type>] [--since 10m]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "unread",
				Aliases:     []string{"u"},
				Usage:       "only show unread notifications",
				Destination: &cmd.unread,
			},
			&cli.StringFlag{
				Name:        "type",
				Aliases:     []string{"t"},
				Usage:       "only show notifications of this type (success, error, warning, info)",
				Destination: &cmd.typ,
			},
			&cli.DurationFlag{
				Name:        "since",
				Usage:       "only show notifications created within this window",
				Destination: &cmd.since,
			},
			formatFlag(&cmd.format),
		},
		Action: func(_ context.Context, c *cli.Command) error {
			items, err := cmd.filtered()
			if err != nil {
				return err
			}

			if cmd.format == formatJSON {
				return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, items)
			}

			w := c.Root().Writer
			if len(items) == 0 {
				_, _ = fmt.Fprintln(w, styles.EmptyStateStyle.Render("No notifications"))
				return nil
			}
			for _, n := range items {
				_, _ = fmt.Fprintln(w, notificationLine(n))
			}
			_, _ = fmt.Fprintln(w, styles.TextMutedStyle.Render(
				fmt.Sprintf("%d unread", cmd.app.Notifications.UnreadCount())))
			return nil
		},
	}
}

func (cmd *NotifyCmd) filtered() ([]notify.Notification, error) {
	var items []notify.Notification
	switch {
	case cmd.typ != "":
		t := notify.Type(cmd.typ)
		if !t.Valid() {
			return nil, fmt.Errorf("unknown notification type %q", cmd.typ)
		}
		items = cmd.app.Notifications.ByType(t)
	case cmd.since > 0:
		items = cmd.app.Notifications.Recent(cmd.since)
	default:
		items = cmd.app.Notifications.Items()
	}

	out := make([]notify.Notification, 0, len(items))
	cutoff := time.Now().Add(-cmd.since)
	for _, n := range items {
		if cmd.unread && n.Read {
			continue
		}
		if cmd.since > 0 && n.Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (cmd *NotifyCmd) readCmd() *cli.Command {
	return &cli.Command{
		Name:          "read",
		Usage:         "Mark notifications as read",
		UsageText:     "storefront notify read <id> | --all",
		ShellComplete: NotificationIDCompleter(cmd.app),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "all",
				Aliases:     []string{"a"},
				Usage:       "mark every notification as read",
				Destination: &cmd.all,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			w := c.Root().Writer
			if cmd.all {
				cmd.app.Notifications.MarkAllAsRead(ctx)
				_, _ = fmt.Fprintln(w, styles.TextSuccessStyle.Render(styles.IconCheck)+" all notifications marked as read")
				return nil
			}

			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("notification id or --all required")
			}
			if !cmd.app.Notifications.MarkAsRead(ctx, id) {
				return fmt.Errorf("notification %s not found", id)
			}
			_, _ = fmt.Fprintln(w, styles.TextSuccessStyle.Render(styles.IconCheck)+" marked "+id+" as read")
			return nil
		},
	}
}

func (cmd *NotifyCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:          "rm",
		Usage:         "Dismiss a notification",
		UsageText:     "storefront notify rm <id>",
		ShellComplete: NotificationIDCompleter(cmd.app),
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("notification id required")
			}
			if !cmd.app.Notifications.Remove(ctx, id) {
				return fmt.Errorf("notification %s not found", id)
			}
			_, _ = fmt.Fprintln(c.Root().Writer, styles.TextSuccessStyle.Render(styles.IconCheck)+" dismissed "+id)
			return nil
		},
	}
}

func (cmd *NotifyCmd) clearCmd() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Dismiss every notification",
		Action: func(ctx context.Context, c *cli.Command) error {
			n := len(cmd.app.Notifications.Items())
			cmd.app.Notifications.ClearAll(ctx)
			_, _ = fmt.Fprintf(c.Root().Writer, "%s cleared %d notifications\n",
				styles.TextSuccessStyle.Render(styles.IconCheck), n)
			return nil
		},
	}
}

func (cmd *NotifyCmd) showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Push a notification onto the queue",
		UsageText: "storefront notify show --message <text> [--type info] [--title <text>] [--persistent]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "type",
				Aliases:     []string{"t"},
				Usage:       "notification type (success, error, warning, info)",
				Value:       string(notify.TypeInfo),
				Destination: &cmd.typ,
			},
			&cli.StringFlag{
				Name:        "title",
				Usage:       "notification title",
				Destination: &cmd.title,
			},
			&cli.StringFlag{
				Name:        "message",
				Aliases:     []string{"m"},
				Usage:       "notification message",
				Required:    true,
				Destination: &cmd.message,
			},
			&cli.BoolFlag{
				Name:        "persistent",
				Usage:       "never auto-close",
				Destination: &cmd.persistent,
			},
			&cli.DurationFlag{
				Name:        "duration",
				Usage:       "display duration (defaults to the configured duration)",
				Destination: &cmd.duration,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			t := notify.Type(cmd.typ)
			if !t.Valid() {
				return fmt.Errorf("unknown notification type %q", cmd.typ)
			}

			opts := notify.ShowOptions{Duration: cmd.duration}
			if cmd.persistent {
				opts = notify.Persistent()
			}

			id := cmd.app.Notifications.Show(ctx, t, cmd.title, cmd.message, opts)
			_, _ = fmt.Fprintln(c.Root().Writer, id)
			return nil
		},
	}
}
