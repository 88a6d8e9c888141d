package engine

import (
	"time"

	"github.com/Carmen-Shannon/reactor/common"
	"github.com/Carmen-Shannon/reactor/engine/camera"
	"github.com/Carmen-Shannon/reactor/engine/window"
	"github.com/Carmen-Shannon/reactor/log"
)

// EngineBuilderOption is a functional option for configuring an Engine.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables periodic profiler reports.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithWindow sets the window the engine runs in and takes input from.
//
// Parameters:
//   - w: an open Window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithViewport sets the render size of a headless engine. A window overrides it.
func WithViewport(v common.Viewport) EngineBuilderOption {
	return func(e *engine) {
		e.viewport = v
	}
}

// WithTarget selects the output node shown, by its target name. By default the first output is shown.
func WithTarget(target string) EngineBuilderOption {
	return func(e *engine) {
		e.target = target
	}
}

// WithCameraController replaces the controller that turns input into camera movement.
func WithCameraController(cc camera.CameraController) EngineBuilderOption {
	return func(e *engine) {
		if cc != nil {
			e.controller = cc
		}
	}
}

// WithRenderFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithLogger replaces the engine's logger.
func WithLogger(logger log.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = logger
	}
}
