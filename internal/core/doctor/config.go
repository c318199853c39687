package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/colonyops/storefront/internal/core/config"
)

// ConfigCheck validates the configuration file, the data directory and
// reports non-fatal configuration warnings.
type ConfigCheck struct {
	cfg        *config.Config
	configPath string
}

// NewConfigCheck creates a new configuration check.
func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, configPath: configPath}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if err := c.cfg.ValidateDeep(c.configPath); err != nil {
		result.add("config", StatusFail, err.Error())
	} else {
		detail := c.configPath
		if detail == "" {
			detail = "defaults"
		}
		result.add("config", StatusPass, detail)
	}

	c.dataDir(&result)

	for _, w := range c.cfg.Warnings() {
		result.add(w.Category+"."+w.Item, StatusWarn, w.Message)
	}
	return result
}

func (c *ConfigCheck) dataDir(result *Result) {
	dir := c.cfg.DataDir
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		result.add("data_dir", StatusWarn, "directory does not exist, it is created on first write")
		return
	case err != nil:
		result.add("data_dir", StatusFail, fmt.Sprintf("inaccessible: %v", err))
		return
	case !info.IsDir():
		result.add("data_dir", StatusFail, "path is not a directory")
		return
	}

	tmp, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		result.add("data_dir", StatusFail, fmt.Sprintf("not writable: %v", err))
		return
	}
	_ = tmp.Close()
	_ = os.Remove(filepath.Clean(tmp.Name()))
	result.add("data_dir", StatusPass, dir)
}
