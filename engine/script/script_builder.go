package script

import (
	"time"

	"github.com/Carmen-Shannon/reactor/engine/renderer"
	"github.com/Carmen-Shannon/reactor/engine/texture"
	"github.com/Carmen-Shannon/reactor/log"
)

// EvalBuilderOption is a functional option applied to a script evaluation via Eval, EvalFile or Watch.
type EvalBuilderOption func(*evaluator)

// WithTextureLoader sets the loader the built graph compiles textures with.
//
// Parameters:
//   - loader: the texture loader
//
// Returns:
//   - EvalBuilderOption: a function that applies the loader to an evaluation
func WithTextureLoader(loader texture.Loader) EvalBuilderOption {
	return func(e *evaluator) {
		e.loader = loader
	}
}

// WithLogger replaces the script logger.
func WithLogger(logger log.Logger) EvalBuilderOption {
	return func(e *evaluator) {
		e.logger = logger
	}
}

// WithTimeout bounds how long a script may run before Eval gives up on it. Zero disables the bound.
func WithTimeout(d time.Duration) EvalBuilderOption {
	return func(e *evaluator) {
		e.timeout = d
	}
}

// WithDebounce sets how long Watch waits after the last file event before reloading.
func WithDebounce(d time.Duration) EvalBuilderOption {
	return func(e *evaluator) {
		e.debounce = d
	}
}

// WithRenderDefaults sets the sampling and sky every xrays node starts from before its keywords apply.
func WithRenderDefaults(sampling renderer.SamplingParams, sky renderer.SkyParams) EvalBuilderOption {
	return func(e *evaluator) {
		e.sampling, e.sky = sampling, sky
	}
}
