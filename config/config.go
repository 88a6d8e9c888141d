// Package config loads reactor's settings from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/reactor/engine/renderer"
	"github.com/Carmen-Shannon/reactor/engine/texture"
	"github.com/Carmen-Shannon/reactor/log"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned by Load for files that are neither TOML nor YAML.
var ErrUnknownFormat = errors.New("config: unknown file format")

// Config is the full set of reactor settings. Zero-valued fields in a loaded file keep their defaults.
type Config struct {
	Window   Window   `toml:"window" yaml:"window"`
	Render   Render   `toml:"render" yaml:"render"`
	Log      Log      `toml:"log" yaml:"log"`
	Script   Script   `toml:"script" yaml:"script"`
	Textures Textures `toml:"textures" yaml:"textures"`
}

// Window configures the preview window.
type Window struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	// VSync caps presentation to the display refresh rate.
	VSync bool `toml:"vsync" yaml:"vsync"`
}

// Render configures the progressive renderer.
type Render struct {
	// MaxViewportResolution is the image buffer capacity in pixels.
	MaxViewportResolution uint32                  `toml:"max_viewport_resolution" yaml:"max_viewport_resolution"`
	Sampling              renderer.SamplingParams `toml:"sampling" yaml:"sampling"`
	Sky                   renderer.SkyParams      `toml:"sky" yaml:"sky"`
	// Target names the output node to present. Empty selects the first one.
	Target string `toml:"target" yaml:"target"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level" yaml:"level"`
}

// Script configures the scene script.
type Script struct {
	Path  string `toml:"path" yaml:"path"`
	Watch bool   `toml:"watch" yaml:"watch"`
}

// Textures configures texture decoding.
type Textures struct {
	// Preload lists textures decoded up front, before the first compile.
	Preload []texture.Request `toml:"preload" yaml:"preload"`
	// Workers is the decode pool size. Zero picks one per spare CPU.
	Workers int `toml:"workers" yaml:"workers"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Window: Window{
			Title:  "reactor",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Render: Render{
			MaxViewportResolution: renderer.DefaultMaxViewportResolution,
			Sampling:              renderer.DefaultSamplingParams(),
			Sky:                   renderer.DefaultSkyParams(),
		},
		Log: Log{Level: "info"},
	}
}

// Load reads the settings at path on top of Default. The format is picked by extension: .toml, .yaml or .yml.
//
// Parameters:
//   - path: the settings file
//
// Returns:
//   - Config: the merged settings
//   - error: ErrUnknownFormat, a read or decode error, or a validation error
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := Decode(&cfg, filepath.Ext(path), data); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode unmarshals data in the format named by ext into cfg.
func Decode(cfg *Config, ext string, data []byte) error {
	switch strings.ToLower(ext) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
}

// Validate checks the settings the renderer would otherwise reject at runtime.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d: %w", c.Window.Width, c.Window.Height, renderer.ErrViewportSize)
	}
	if err := c.Render.Sampling.Validate(); err != nil {
		return err
	}
	if err := c.Render.Sky.Validate(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	for _, req := range c.Textures.Preload {
		if req.Path == "" {
			return errors.New("textures: preload entry without a path")
		}
	}
	return nil
}

// TextureRequests returns the preload list with unset scales defaulted to 1.
func (c Config) TextureRequests() []texture.Request {
	reqs := make([]texture.Request, len(c.Textures.Preload))
	for i, req := range c.Textures.Preload {
		if req.Scale == 0 {
			req.Scale = 1
		}
		reqs[i] = req
	}
	return reqs
}
