package initcmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/storefront/internal/core/config"
)

func TestWizard_YesWritesLoadableConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	var out bytes.Buffer
	w := NewWizard(WizardOptions{ConfigPath: path, Yes: true, Driver: config.DriverJSONFile, Locale: "en", Out: &out})
	require.NoError(t, w.Run())
	assert.Contains(t, out.String(), "Created config")

	cfg, err := config.Load(path, dir, config.LoadOptions{Environ: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, config.DriverJSONFile, cfg.Storage.Driver)
	assert.Equal(t, "en", cfg.Locale)
	assert.True(t, cfg.Notifications.Persist)
}

func TestWizard_ExistingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locale: ar\n"), 0o644))

	t.Run("yes without force refuses", func(t *testing.T) {
		err := NewWizard(WizardOptions{ConfigPath: path, Yes: true, Out: &bytes.Buffer{}}).Run()
		assert.ErrorContains(t, err, "use --force")
	})

	t.Run("force backs up", func(t *testing.T) {
		require.NoError(t, NewWizard(WizardOptions{ConfigPath: path, Yes: true, Force: true, Out: &bytes.Buffer{}}).Run())

		backup, err := os.ReadFile(path + ".bak")
		require.NoError(t, err)
		assert.Equal(t, "locale: ar\n", string(backup))
	})
}

func TestBackupConfig_Missing(t *testing.T) {
	got, err := BackupConfig(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Empty(t, got)
}
