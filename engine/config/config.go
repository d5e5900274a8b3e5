package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config is the complete engine configuration as read from a TOML or YAML file.
type Config struct {
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Renderer RendererConfig `toml:"renderer" yaml:"renderer"`
	Input    InputConfig    `toml:"input" yaml:"input"`
	Loader   LoaderConfig   `toml:"loader" yaml:"loader"`
	Log      LogConfig      `toml:"log" yaml:"log"`
}

type WindowConfig struct {
	Title      string `toml:"title" yaml:"title"`
	Width      int    `toml:"width" yaml:"width"`
	Height     int    `toml:"height" yaml:"height"`
	VSync      bool   `toml:"vsync" yaml:"vsync"`
	Fullscreen bool   `toml:"fullscreen" yaml:"fullscreen"`
}

type RendererConfig struct {
	// ShaderDir is an optional folder of .wgsl files registered on top of the built-in library.
	ShaderDir string `toml:"shader_dir" yaml:"shader_dir"`
	// WatchShaders reloads ShaderDir on change.
	WatchShaders bool `toml:"watch_shaders" yaml:"watch_shaders"`
	// CacheDir overrides the platform user cache directory for IBL files.
	CacheDir             string  `toml:"cache_dir" yaml:"cache_dir"`
	CacheGraceSeconds    float64 `toml:"cache_grace_seconds" yaml:"cache_grace_seconds"`
	ForceFallbackAdapter bool    `toml:"force_fallback_adapter" yaml:"force_fallback_adapter"`
	DebugWireframes      bool    `toml:"debug_wireframes" yaml:"debug_wireframes"`
	DebugBoundingBoxes   bool    `toml:"debug_bounding_boxes" yaml:"debug_bounding_boxes"`
}

type InputConfig struct {
	GamepadPolling bool `toml:"gamepad_polling" yaml:"gamepad_polling"`
}

type LoaderConfig struct {
	Workers   int `toml:"workers" yaml:"workers"`
	QueueSize int `toml:"queue_size" yaml:"queue_size"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "Orbital",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Renderer: RendererConfig{
			CacheGraceSeconds: 5,
		},
		Input: InputConfig{
			GamepadPolling: true,
		},
		Loader: LoaderConfig{
			Workers:   2,
			QueueSize: 16,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path and decodes it over Default(). The decoder is chosen by extension:
// .toml, .yaml or .yml.
//
// Parameters:
//   - path: the configuration file
//
// Returns:
//   - Config: the decoded and validated configuration
//   - error: read, decode or validation failure
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes data in the format named by ext over Default().
func Parse(data []byte, ext string) (Config, error) {
	cfg := Default()

	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode toml config: %w", err)
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode yaml config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Renderer.CacheGraceSeconds < 0 {
		return fmt.Errorf("cache_grace_seconds must not be negative")
	}
	if c.Loader.Workers <= 0 {
		return fmt.Errorf("loader workers must be positive, got %d", c.Loader.Workers)
	}
	if c.Loader.QueueSize <= 0 {
		return fmt.Errorf("loader queue_size must be positive, got %d", c.Loader.QueueSize)
	}
	return nil
}

// CacheGrace returns the cache grace interval as a duration.
func (r RendererConfig) CacheGrace() time.Duration {
	return time.Duration(r.CacheGraceSeconds * float64(time.Second))
}

// IBLCacheDir resolves the IBL cache directory, falling back to the user cache dir.
func (r RendererConfig) IBLCacheDir() (string, error) {
	if r.CacheDir != "" {
		return r.CacheDir, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user cache dir: %w", err)
	}
	return filepath.Join(dir, "Orbital"), nil
}
