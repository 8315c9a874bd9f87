package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches the working directory for the duration of the test.
// It stands in for testing.T.Chdir, which needs Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_When_NoFilePresent_ReturnsDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 100, cfg.TimeoutSeconds)
	assert.Equal(t, "normal", cfg.Verbosity)
}

func TestLoad_When_FileInParentDirectory(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "timeout: 5\nlogdir: logs\n")
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	chdir(t, sub)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.TimeoutSeconds)
	assert.Equal(t, "logs", cfg.LogDir)
}

func TestLoad_When_FileIsPartial_KeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "verbosity: verbose\n")
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "verbose", cfg.Verbosity)
	assert.Equal(t, 100, cfg.TimeoutSeconds)
}

func TestLoad_When_FileMalformed_Errors(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "timeout: [not a number\n")
	chdir(t, dir)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), FileName)
}

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o644))
}
