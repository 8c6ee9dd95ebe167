package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Environment-dependent tests cannot run in parallel.

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NAL_USDA_GOV_API_KEY", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"usda"}, cfg.Lookup.Providers)
	assert.Equal(t, 12*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, 720*time.Hour, cfg.Lookup.CacheTTL)
	assert.Equal(t, "recipes", cfg.Recipes.Dir)
}

func TestLoadConfigFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path: /tmp/cooking-test.db
log:
  level: debug
lookup:
  providers: [openfoodfacts, usda]
  timeout: 3s
`), 0o644))
	t.Setenv("COOKING_LOG_LEVEL", "error")
	t.Setenv("NAL_USDA_GOV_API_KEY", "legacy-key")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cooking-test.db", cfg.DBPath)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, []string{"openfoodfacts", "usda"}, cfg.Lookup.Providers)
	assert.Equal(t, 3*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, "legacy-key", cfg.USDA.APIKey)
}

func TestLoadConfigRejectsMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestMaskSecret(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "****", MaskSecret("short"))
	assert.Equal(t, "abcd...wxyz", MaskSecret("abcdefghijklmnopqrstuvwxyz"))
}
