package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTOML(t *testing.T) {
	cfg, err := Parse([]byte(`
[window]
title = "Cube"
width = 800
height = 600
vsync = false

[renderer]
cache_grace_seconds = 2.5
debug_wireframes = true

[log]
level = "debug"
`), ".toml")
	require.NoError(t, err)

	assert.Equal(t, "Cube", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.False(t, cfg.Window.VSync)
	assert.True(t, cfg.Renderer.DebugWireframes)
	assert.Equal(t, 2500*time.Millisecond, cfg.Renderer.CacheGrace())
	assert.Equal(t, "debug", cfg.Log.Level)

	// untouched sections keep defaults
	assert.Equal(t, 2, cfg.Loader.Workers)
	assert.True(t, cfg.Input.GamepadPolling)
}

func TestParseYAML(t *testing.T) {
	cfg, err := Parse([]byte(`
window:
  width: 1920
  height: 1080
input:
  gamepad_polling: false
loader:
  workers: 4
`), "yml")
	require.NoError(t, err)

	assert.Equal(t, 1920, cfg.Window.Width)
	assert.False(t, cfg.Input.GamepadPolling)
	assert.Equal(t, 4, cfg.Loader.Workers)
	assert.Equal(t, "Orbital", cfg.Window.Title)
}

func TestParseRejects(t *testing.T) {
	_, err := Parse([]byte("[window]\nwidth = 0\n"), ".toml")
	assert.Error(t, err)

	_, err = Parse([]byte("[window]\nbogus = 1\n"), ".toml")
	assert.Error(t, err)

	_, err = Parse([]byte("{}"), ".json")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbital.toml")
	require.NoError(t, os.WriteFile(path, []byte("[renderer]\ncache_dir = \"/tmp/orbital\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	dir, err := cfg.Renderer.IBLCacheDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/orbital", dir)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
