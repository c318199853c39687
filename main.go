package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/storefront/internal/commands"
	"github.com/colonyops/storefront/internal/core/config"
	"github.com/colonyops/storefront/internal/core/logging"
	"github.com/colonyops/storefront/internal/shop"
	"github.com/colonyops/storefront/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() reads
	// them from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser   func()
		shopApp     = &shop.App{}
		opened      bool
		sweepCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "storefront",
		Usage:     "Manage the local cart, wishlist and notifications of the storefront",
		UsageText: "storefront [global options] command [command options]",
		Description: `Storefront keeps a shopper's cart, wishlist and notifications in local
storage (SQLite by default) with quota enforcement, expiry and legacy
key migration.

Run 'storefront' with no arguments to open the interactive browser.
Run 'storefront doctor' to check the health of local storage.`,
		Version:               build(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic); defaults to the config value",
				Sources:     cli.EnvVars("STOREFRONT_LOG_LEVEL"),
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/storefront.log, '-' for stderr)",
				Sources:     cli.EnvVars("STOREFRONT_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file (.yaml or .toml)",
				Sources:     cli.EnvVars("STOREFRONT_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("STOREFRONT_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "locale",
				Usage:       "message locale (ar, en); overrides the config",
				Destination: &flags.Locale,
			},
			&cli.StringFlag{
				Name:        "profile",
				Usage:       "configuration profile (production, development, test)",
				Destination: &flags.Profile,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Load(flags.ConfigPath, flags.DataDir, config.LoadOptions{Profile: flags.Profile})
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.Locale != "" {
				cfg.Locale = flags.Locale
				if err := cfg.Validate(); err != nil {
					return ctx, fmt.Errorf("invalid locale: %w", err)
				}
			}
			flags.Config = cfg

			// Always log to a file; use explicit path or default to <datadir>/storefront.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = cfg.LogFile()
			}
			level := flags.LogLevel
			if level == "" {
				level = cfg.LogLevel
			}

			logger, closer, err := logutils.New(level, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			a, err := shop.Open(ctx, cfg)
			if err != nil {
				return ctx, fmt.Errorf("open storage: %w", err)
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*shopApp = *a
			opened = true

			sweepCtx, cancel := context.WithCancel(context.Background())
			sweepCancel = cancel
			shopApp.StartSweep(sweepCtx)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if sweepCancel != nil {
				sweepCancel()
			}

			var closeErr error
			if opened {
				if closeErr = shopApp.Close(); closeErr != nil {
					log.Error().Err(closeErr).Msg("failed to close storage")
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return closeErr
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, shopApp, build())

	app = commands.NewCartCmd(flags, shopApp).Register(app)
	app = commands.NewWishlistCmd(flags, shopApp).Register(app)
	app = commands.NewNotifyCmd(flags, shopApp).Register(app)
	app = commands.NewStorageCmd(flags, shopApp).Register(app)
	app = commands.NewDoctorCmd(flags, shopApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)
	app = commands.NewInitCmd(flags).Register(app)
	app = tuiCmd.Register(app)

	// Register TUI flags on root command
	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'storefront --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
