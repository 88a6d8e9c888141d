package renderer

import (
	"github.com/Carmen-Shannon/reactor/engine/scene"
	"github.com/Carmen-Shannon/reactor/log"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithMaxViewportResolution sets the image buffer capacity in pixels. Viewports larger than this are rejected
// by PrepareFrame.
//
// Parameters:
//   - pixels: the maximum width*height
//
// Returns:
//   - RendererBuilderOption: a function that applies the capacity to a renderer
func WithMaxViewportResolution(pixels uint32) RendererBuilderOption {
	return func(r *renderer) {
		if pixels > 0 {
			r.maxViewportResolution = pixels
		}
	}
}

// WithScene sets the scene uploaded at construction instead of the stub scene.
//
// Parameters:
//   - s: the initial scene
//
// Returns:
//   - RendererBuilderOption: a function that applies the scene to a renderer
func WithScene(s *scene.Scene) RendererBuilderOption {
	return func(r *renderer) {
		r.initialScene = s
	}
}

// WithLogger replaces the renderer's logger.
func WithLogger(logger log.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.logger = logger
	}
}
