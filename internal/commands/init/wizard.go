// Package initcmd implements the first-run wizard that writes a
// storefront config file.
package initcmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/storefront/internal/core/config"
	"github.com/colonyops/storefront/internal/core/i18n"
	"github.com/colonyops/storefront/internal/core/styles"
)

// WizardOptions configures the wizard behavior.
type WizardOptions struct {
	ConfigPath string
	Yes        bool // skip prompts, use defaults
	Force      bool // overwrite existing config
	Driver     string
	Locale     string
	Out        io.Writer
}

// Answers are the values written to the generated config.
type Answers struct {
	Driver  string
	Locale  string
	Persist bool
}

// Wizard orchestrates the init process.
type Wizard struct {
	opts WizardOptions
}

func NewWizard(opts WizardOptions) *Wizard {
	if opts.Out == nil {
		opts.Out = os.Stderr
	}
	return &Wizard{opts: opts}
}

// Run prompts for the answers (unless Yes is set) and writes the config.
func (w *Wizard) Run() error {
	if ConfigExists(w.opts.ConfigPath) && !w.opts.Force {
		if w.opts.Yes {
			return fmt.Errorf("config exists at %s; use --force to overwrite", w.opts.ConfigPath)
		}

		var overwrite bool
		err := huh.NewConfirm().
			Title("Config file already exists").
			Description(w.opts.ConfigPath + "\nOverwrite? (a backup will be created)").
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			w.println(styles.TextMutedStyle.Render("Init cancelled"))
			return nil
		}
	}

	answers := w.defaults()
	if !w.opts.Yes {
		if err := w.prompt(&answers); err != nil {
			return err
		}
	}

	if backupPath, err := BackupConfig(w.opts.ConfigPath); err != nil {
		return fmt.Errorf("backup config: %w", err)
	} else if backupPath != "" {
		w.success("Backed up config to: " + backupPath)
	}

	if err := WriteConfig(w.opts.ConfigPath, answers); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	w.success("Created config: " + w.opts.ConfigPath)
	w.println(styles.TextMutedStyle.Render("Run 'storefront doctor' to verify the setup."))
	return nil
}

func (w *Wizard) defaults() Answers {
	def := config.DefaultConfig()
	a := Answers{
		Driver:  def.Storage.Driver,
		Locale:  def.Locale,
		Persist: def.Notifications.Persist,
	}
	if w.opts.Driver != "" {
		a.Driver = w.opts.Driver
	}
	if w.opts.Locale != "" {
		a.Locale = w.opts.Locale
	}
	return a
}

func (w *Wizard) prompt(a *Answers) error {
	locales := make([]huh.Option[string], 0, len(i18n.Locales()))
	for _, l := range i18n.Locales() {
		locales = append(locales, huh.NewOption(l, l))
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Storage driver").
			Description("Where the cart, wishlist and notifications are kept").
			Options(
				huh.NewOption("SQLite database (recommended)", config.DriverSQLite),
				huh.NewOption("JSON file", config.DriverJSONFile),
				huh.NewOption("Memory (nothing is saved)", config.DriverMemory),
			).
			Value(&a.Driver),
		huh.NewSelect[string]().
			Title("Locale").
			Options(locales...).
			Value(&a.Locale),
		huh.NewConfirm().
			Title("Keep notifications between runs?").
			Value(&a.Persist),
	))
	return form.Run()
}

func (w *Wizard) success(msg string) {
	w.println(styles.TextSuccessStyle.Render(styles.IconCheck) + " " + msg)
}

func (w *Wizard) println(s string) {
	_, _ = fmt.Fprintln(w.opts.Out, s)
}

type fileConfig struct {
	Locale  string `yaml:"locale"`
	Storage struct {
		Driver string `yaml:"driver"`
	} `yaml:"storage"`
	Notifications struct {
		Persist bool `yaml:"persist"`
	} `yaml:"notifications"`
}

// WriteConfig writes a minimal YAML config holding only the answered
// values; everything else keeps its built-in default.
func WriteConfig(path string, a Answers) error {
	var fc fileConfig
	fc.Locale = a.Locale
	fc.Storage.Driver = a.Driver
	fc.Notifications.Persist = a.Persist

	data, err := yaml.Marshal(fc)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	header := []byte("# storefront configuration\n# see 'storefront config validate' for checks\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
