package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/storefront/internal/core/config"
	"github.com/colonyops/storefront/internal/core/styles"
	"github.com/colonyops/storefront/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "storefront config validate [options]",
				Description: "Validates the effective configuration: storage limits, locale, catalog URL, config file and data directory.",
				Flags:       []cli.Flag{formatFlag(&cmd.format)},
				Action:      cmd.run,
			},
			{
				Name:  "profiles",
				Usage: "List built-in configuration profiles",
				Action: func(_ context.Context, c *cli.Command) error {
					for _, p := range config.Profiles() {
						marker := "  "
						if cmd.flags.Config != nil && cmd.flags.Config.Profile == p {
							marker = styles.TextPrimaryStyle.Render(styles.IconArrowRight) + " "
						}
						_, _ = fmt.Fprintln(c.Root().Writer, marker+p)
					}
					return nil
				},
			},
		},
	})

	return app
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	errs := validationErrors(cfg.ValidateDeep(cmd.flags.ConfigPath))
	warnings := cfg.Warnings()

	if cmd.format == formatJSON {
		out := struct {
			Valid    bool                       `json:"valid"`
			Profile  string                     `json:"profile"`
			Errors   []fieldError               `json:"errors,omitempty"`
			Warnings []config.ValidationWarning `json:"warnings,omitempty"`
		}{
			Valid:    len(errs) == 0,
			Profile:  cfg.Profile,
			Errors:   errs,
			Warnings: warnings,
		}
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, out)
	}

	return cmd.outputText(c.Root().Writer, cfg, errs, warnings)
}

// validationErrors flattens criterio field errors into one entry per field.
func validationErrors(err error) []fieldError {
	if err == nil {
		return nil
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return []fieldError{{Field: "config", Message: err.Error()}}
	}

	out := make([]fieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, fieldError{Field: fe.Field, Message: fe.Err.Error()})
	}
	return out
}

func (cmd *ConfigValidateCmd) outputText(w io.Writer, cfg *config.Config, errs []fieldError, warnings []config.ValidationWarning) error {
	_, _ = fmt.Fprintf(w, "%s profile %s, driver %s, locale %s\n",
		styles.TextMutedStyle.Render(styles.IconDot),
		styles.TextForegroundBoldStyle.Render(cfg.Profile),
		styles.TextForegroundBoldStyle.Render(cfg.Storage.Driver),
		styles.TextForegroundBoldStyle.Render(cfg.Locale),
	)

	for _, warn := range warnings {
		_, _ = fmt.Fprintf(w, "%s %s.%s: %s\n",
			styles.TextWarningStyle.Render(styles.IconDot), warn.Category, warn.Item, warn.Message)
	}

	for _, e := range errs {
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", styles.TextErrorStyle.Render(styles.IconCross), e.Field, e.Message)
	}

	_, _ = fmt.Fprintln(w)
	if len(errs) == 0 {
		_, _ = fmt.Fprintln(w, styles.TextSuccessStyle.Render(styles.IconCheck+" Configuration is valid"))
		return nil
	}

	_, _ = fmt.Fprintln(w, styles.TextErrorStyle.Render(fmt.Sprintf("%d error(s) found", len(errs))))
	return cli.Exit("", 1)
}
