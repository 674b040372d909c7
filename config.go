package promptgen

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is read from config.toml in the user config directory. Every field
// has a default, so a missing file is not an error.
type Config struct {
	// Roots are the top-level directories of the tree. Empty means every
	// volume: "/" on Unix, each existing drive letter on Windows.
	Roots []string `toml:"roots"`
	// DebounceMs is the quiet period before the artifact is rebuilt.
	DebounceMs int `toml:"debounce_ms"`
	// TokenEstimator is "simple", "tiktoken" or "tiktoken:<model>".
	TokenEstimator string `toml:"token_estimator"`
	// Database is the settings database path.
	Database string `toml:"database"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `toml:"log_level"`
	// Exclude holds gitignore-style patterns hidden everywhere.
	Exclude []string `toml:"exclude"`
	// Gitignore applies the .gitignore files of loaded directories.
	Gitignore bool `toml:"gitignore"`
}

const appName = "promptgen"

// DefaultConfig returns the configuration used when no file sets a value.
func DefaultConfig() Config {
	return Config{
		DebounceMs:     300,
		TokenEstimator: "simple",
		Database:       filepath.Join(configDir(), "settings.db"),
		LogLevel:       "info",
	}
}

// configDir is $XDG_CONFIG_HOME/promptgen or the platform equivalent,
// falling back to the working directory.
func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(dir, appName)
}

// DefaultConfigPath is where LoadConfig looks when no path is given.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.toml")
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing default file yields the defaults; a missing
// explicit file is an error.
func LoadConfig(path string, logger *slog.Logger) (*Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			logger.Debug("no config file, using defaults", "path", path)
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	meta, err := toml.Decode(string(content), &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		logger.Warn("unrecognized keys in config", "path", path, "keys", undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	logger.Debug("loaded config", "path", path)
	return &cfg, nil
}

// Validate checks the values a file can get wrong.
func (c *Config) Validate() error {
	if c.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms must not be negative, got %d", c.DebounceMs)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// RootPaths returns the configured roots, or every volume when none are set.
func (c *Config) RootPaths() []string {
	if len(c.Roots) > 0 {
		return c.Roots
	}
	return Volumes()
}

// Volumes lists the filesystem roots of the machine.
func Volumes() []string {
	if runtime.GOOS != "windows" {
		return []string{"/"}
	}
	var vols []string
	for l := 'A'; l <= 'Z'; l++ {
		v := string(l) + `:\`
		if _, err := os.Stat(v); err == nil {
			vols = append(vols, v)
		}
	}
	return vols
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}
