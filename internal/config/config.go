// Package config loads the application configuration from a TOML file,
// filling in defaults for anything unset.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Paths contains file and directory locations.
type Paths struct {
	SocketPath string `toml:"socket_path"` // unix socket for launch forwarding
	LockPath   string `toml:"lock_path"`   // primary-instance lock file
	LogPath    string `toml:"log_path"`    // zap output
	DataDir    string `toml:"data_dir"`    // history database lives here
}

// Launch contains the timing knobs of the launch-coordination loops.
type Launch struct {
	WindowPollMs      int `toml:"window_poll_ms"`       // window-ready poll interval
	StartupDebounceMs int `toml:"startup_debounce_ms"`  // extra pause for early launches
	ReadinessPollMs   int `toml:"readiness_poll_ms"`    // readiness watcher interval
	WindowWaitBoundS  int `toml:"window_wait_bound_s"`  // 0 disables the bound
	EarlyWindowCount  int `toml:"early_window_count"`   // debounce applies below this many windows
}

// App contains application identity settings.
type App struct {
	ProcessName string `toml:"process_name"` // executable name used for instance counting
}

// Config is the full application configuration.
type Config struct {
	Paths  Paths  `toml:"paths"`
	Launch Launch `toml:"launch"`
	App    App    `toml:"app"`
}

// Default returns the built-in configuration.
func Default() *Config {
	runDir := os.TempDir()
	dataDir := runDir
	if base, err := os.UserConfigDir(); err == nil {
		dataDir = filepath.Join(base, "parcel")
	}
	return &Config{
		Paths: Paths{
			SocketPath: filepath.Join(runDir, "parcel.sock"),
			LockPath:   filepath.Join(runDir, "parcel.lock"),
			LogPath:    filepath.Join(runDir, "parcel.log"),
			DataDir:    dataDir,
		},
		Launch: Launch{
			WindowPollMs:      100,
			StartupDebounceMs: 500,
			ReadinessPollMs:   1000,
			WindowWaitBoundS:  120,
			EarlyWindowCount:  4,
		},
		App: App{
			ProcessName: "parcel",
		},
	}
}

// DefaultPath returns the expected config file location.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "parcel", "config.toml")
	}
	return filepath.Join(base, "parcel", "config.toml")
}

// Load reads the config at path, layered over defaults. A missing file is not
// an error; the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the launch loops cannot run with.
func (c *Config) Validate() error {
	if c.Launch.WindowPollMs <= 0 {
		return fmt.Errorf("window_poll_ms must be positive, got %d", c.Launch.WindowPollMs)
	}
	if c.Launch.ReadinessPollMs <= 0 {
		return fmt.Errorf("readiness_poll_ms must be positive, got %d", c.Launch.ReadinessPollMs)
	}
	if c.Launch.StartupDebounceMs < 0 {
		return fmt.Errorf("startup_debounce_ms must not be negative, got %d", c.Launch.StartupDebounceMs)
	}
	if c.Launch.WindowWaitBoundS < 0 {
		return fmt.Errorf("window_wait_bound_s must not be negative, got %d", c.Launch.WindowWaitBoundS)
	}
	if c.App.ProcessName == "" {
		return errors.New("process_name must not be empty")
	}
	return nil
}

// EnsureDirectories creates the directories the application writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{
		c.Paths.DataDir,
		filepath.Dir(c.Paths.SocketPath),
		filepath.Dir(c.Paths.LockPath),
		filepath.Dir(c.Paths.LogPath),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WindowPollInterval returns how often launch handlers poll for a window.
func (c *Config) WindowPollInterval() time.Duration {
	return time.Duration(c.Launch.WindowPollMs) * time.Millisecond
}

// StartupDebounce returns the extra pause applied while the UI is still
// starting up.
func (c *Config) StartupDebounce() time.Duration {
	return time.Duration(c.Launch.StartupDebounceMs) * time.Millisecond
}

// ReadinessPollInterval returns how often the readiness watcher compares
// counters.
func (c *Config) ReadinessPollInterval() time.Duration {
	return time.Duration(c.Launch.ReadinessPollMs) * time.Millisecond
}

// WindowWaitBound returns the upper bound on the window-ready wait, or zero
// when the wait is unbounded.
func (c *Config) WindowWaitBound() time.Duration {
	return time.Duration(c.Launch.WindowWaitBoundS) * time.Second
}
