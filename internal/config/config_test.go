package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Launch.WindowPollMs)
	assert.Equal(t, 500, cfg.Launch.StartupDebounceMs)
	assert.Equal(t, 1000, cfg.Launch.ReadinessPollMs)
	assert.Equal(t, 4, cfg.Launch.EarlyWindowCount)
	assert.Equal(t, "parcel", cfg.App.ProcessName)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[launch]
window_poll_ms = 10
readiness_poll_ms = 50

[app]
process_name = "parcel-dev"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Launch.WindowPollMs)
	assert.Equal(t, 50, cfg.Launch.ReadinessPollMs)
	// Untouched keys keep their defaults.
	assert.Equal(t, 500, cfg.Launch.StartupDebounceMs)
	assert.Equal(t, "parcel-dev", cfg.App.ProcessName)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[launch]\nwindow_poll_ms = -5\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnsureDirectories(t *testing.T) {
	tmp := t.TempDir()
	cfg := Default()
	cfg.Paths.DataDir = filepath.Join(tmp, "data")
	cfg.Paths.SocketPath = filepath.Join(tmp, "run", "parcel.sock")
	cfg.Paths.LockPath = filepath.Join(tmp, "run", "parcel.lock")
	cfg.Paths.LogPath = filepath.Join(tmp, "log", "parcel.log")

	require.NoError(t, cfg.EnsureDirectories())

	for _, dir := range []string{filepath.Join(tmp, "data"), filepath.Join(tmp, "run"), filepath.Join(tmp, "log")} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
