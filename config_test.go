package promptgen

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
roots = ["/srv/projects", "/home/me"]
debounce_ms = 150
token_estimator = "tiktoken"
log_level = "debug"
exclude = ["node_modules/", "*.min.js"]
gitignore = true
colour = "blue"
`), 0644))

	cfg, err := LoadConfig(path, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.Equal([]string{"/srv/projects", "/home/me"}, cfg.RootPaths())
	assert.Equal(150*time.Millisecond, cfg.Debounce())
	assert.Equal("tiktoken", cfg.TokenEstimator)
	assert.Equal("debug", cfg.LogLevel)
	assert.Equal([]string{"node_modules/", "*.min.js"}, cfg.Exclude)
	assert.True(cfg.Gitignore)
	assert.Equal(DefaultConfig().Database, cfg.Database, "unset keys keep their default")
}

func TestLoadConfig_Defaults(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AppData", t.TempDir())

	cfg, err := LoadConfig("", slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.Equal(DefaultConfig(), *cfg)
	assert.Equal(300*time.Millisecond, cfg.Debounce())
	assert.NotEmpty(cfg.RootPaths())
	if runtime.GOOS != "windows" {
		assert.Equal([]string{"/"}, cfg.RootPaths())
	}

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"), slog.New(slog.DiscardHandler))
	assert.Error(err, "an explicit path must exist")
}

func TestLoadConfig_Invalid(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("debounce_ms = \"soon\""), 0644))
	_, err := LoadConfig(bad, slog.New(slog.DiscardHandler))
	assert.ErrorContains(err, "failed to decode config")

	neg := filepath.Join(dir, "neg.toml")
	require.NoError(t, os.WriteFile(neg, []byte("debounce_ms = -1"), 0644))
	_, err = LoadConfig(neg, slog.New(slog.DiscardHandler))
	assert.ErrorContains(err, "debounce_ms must not be negative")

	lvl := filepath.Join(dir, "lvl.toml")
	require.NoError(t, os.WriteFile(lvl, []byte(`log_level = "loud"`), 0644))
	_, err = LoadConfig(lvl, slog.New(slog.DiscardHandler))
	assert.ErrorContains(err, "unknown log level")
}

func TestParseLevel(t *testing.T) {
	assert := assert.New(t)

	l, err := ParseLevel("warn")
	assert.NoError(err)
	assert.Equal(slog.LevelWarn, l)

	l, err = ParseLevel("DEBUG")
	assert.NoError(err)
	assert.Equal(slog.LevelDebug, l)
}
