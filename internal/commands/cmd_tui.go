package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/storefront/internal/core/config"
	"github.com/colonyops/storefront/internal/core/styles"
	"github.com/colonyops/storefront/internal/shop"
	"github.com/colonyops/storefront/internal/tui"
	"github.com/colonyops/storefront/pkg/profiler"
)

type TuiCmd struct {
	flags   *Flags
	app     *shop.App
	theme   string
	version string
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *shop.App, version string) *TuiCmd {
	return &TuiCmd{
		flags:   flags,
		app:     app,
		version: version,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof and state endpoints on the specified port (e.g., 6060)",
			Sources:     cli.EnvVars("STOREFRONT_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
		&cli.StringFlag{
			Name:        "theme",
			Usage:       fmt.Sprintf("color theme %v", styles.ThemeNames()),
			Sources:     cli.EnvVars("STOREFRONT_THEME"),
			Value:       styles.DefaultTheme,
			Destination: &cmd.theme,
		},
	}
}

// Register adds an explicit tui command; the same model runs as the
// default action.
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:   "tui",
		Usage:  "Browse the cart, wishlist, notifications and storage interactively",
		Flags:  cmd.Flags(),
		Action: cmd.Run,
	})
	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, _ *cli.Command) error {
	palette, ok := styles.GetPalette(cmd.theme)
	if !ok {
		return fmt.Errorf("unknown theme %q, available: %v", cmd.theme, styles.ThemeNames())
	}
	styles.SetTheme(palette)

	if cmd.flags.ProfilerPort > 0 {
		stop, err := cmd.startProfiler(ctx)
		if err != nil {
			return err
		}
		defer stop()
	}

	var warnings []string
	if cmd.app.Config.Storage.Driver == config.DriverMemory {
		warnings = append(warnings, "memory driver: changes are lost on exit")
	}
	if !cmd.app.KV.Available(ctx) {
		warnings = append(warnings, "local storage is unavailable, changes are not saved")
	}

	m := tui.New(ctx, cmd.app, tui.Opts{Warnings: warnings, Version: cmd.version})
	defer m.Close()

	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func (cmd *TuiCmd) startProfiler(ctx context.Context) (stop func(), err error) {
	app := cmd.app
	profServer := profiler.New(cmd.flags.ProfilerPort,
		profiler.WithState("storage", func(ctx context.Context) (any, error) {
			return app.KV.Stats(ctx)
		}),
		profiler.WithState("cart", func(context.Context) (any, error) {
			return app.Cart.Summary(), nil
		}),
		profiler.WithState("diagnostics", func(context.Context) (any, error) {
			return app.Diagnostics.Totals(), nil
		}),
	)
	if err := profServer.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}

	log.Info().
		Str("url", fmt.Sprintf("http://%s/debug/pprof/", profServer.Addr())).
		Msg("profiler endpoint available")

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := profServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown profiler server")
		}
	}, nil
}
