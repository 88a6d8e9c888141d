package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/reactor/engine/renderer"
	"github.com/Carmen-Shannon/reactor/engine/texture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadTOML(t *testing.T) {
	path := write(t, "reactor.toml", `
[window]
title = "preview"
width = 640

[render.sampling]
max_samples_per_pixel = 64
num_samples_per_pixel = 4

[script]
path = "scenes/spheres.zy"
watch = true

[[textures.preload]]
path = "earth.jpg"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "preview", cfg.Window.Title)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, uint32(64), cfg.Render.Sampling.MaxSamplesPerPixel)
	assert.Equal(t, uint32(4), cfg.Render.Sampling.NumSamplesPerPixel)
	assert.Equal(t, renderer.DefaultSamplingParams().NumBounces, cfg.Render.Sampling.NumBounces)
	assert.Equal(t, Script{Path: "scenes/spheres.zy", Watch: true}, cfg.Script)
	assert.Equal(t, []texture.Request{{Path: "earth.jpg", Scale: 1}}, cfg.TextureRequests())
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "reactor.yml", `
log:
  level: debug
render:
  target: main
  sky:
    azimuth: 90
    zenith: 45
    turbidity: 3
    albedo: [0.5, 0.5, 0.5]
textures:
  workers: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "main", cfg.Render.Target)
	assert.Equal(t, float32(90), cfg.Render.Sky.AzimuthDegrees)
	assert.Equal(t, [3]float32{0.5, 0.5, 0.5}, cfg.Render.Sky.Albedo)
	assert.Equal(t, 2, cfg.Textures.Workers)
	assert.Equal(t, "reactor", cfg.Window.Title)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		want error
	}{
		{"unknown extension", "reactor.json", `{}`, ErrUnknownFormat},
		{"sample count", "bad.toml", "[render.sampling]\nmax_samples_per_pixel = 10\nnum_samples_per_pixel = 3\n",
			renderer.ErrSampleCountNotMultiple},
		{"sky range", "bad.yaml", "render:\n  sky:\n    turbidity: 20\n", renderer.ErrSkyOutOfRange},
		{"window size", "bad.yaml", "window:\n  width: -1\n", renderer.ErrViewportSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, tt.file, tt.body))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadRejectsBadLevel(t *testing.T) {
	_, err := Load(write(t, "bad.yaml", "log:\n  level: chatty\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	assert.Error(t, err)
	assert.Equal(t, Default(), cfg)
}
