package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFiles(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Addr)
	assert.Equal(t, "tuning.yaml", cfg.TuningPath)
	assert.Equal(t, "data/plasma.db", cfg.DBPath)
	assert.Equal(t, "data/recorder", cfg.RecorderDir)
	assert.Equal(t, "*", cfg.AllowedOrigin)
	assert.Equal(t, 60.0, cfg.InputRate)
	assert.Equal(t, 20, cfg.InputBurst)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PLASMA_ADDR", ":9000")
	t.Setenv("PLASMA_INPUT_BURST", "5")

	cfg, err := LoadFiles()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 5, cfg.InputBurst)
}

func TestDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PLASMA_DB_PATH=/tmp/x.db\n"), 0o644))
	// godotenv writes into the process env; make sure the test owns the variable.
	t.Setenv("PLASMA_DB_PATH", "")
	require.NoError(t, os.Unsetenv("PLASMA_DB_PATH"))

	cfg, err := LoadFiles(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
}

func TestParseError(t *testing.T) {
	t.Setenv("PLASMA_INPUT_RATE", "fast")
	_, err := LoadFiles()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidateRejectsZeroRate(t *testing.T) {
	t.Setenv("PLASMA_INPUT_RATE", "0")
	_, err := LoadFiles()
	require.Error(t, err)
}
