package renderer

import (
	"errors"
	"fmt"
)

// ErrInvalidRenderParams matches every ValidationError.
var ErrInvalidRenderParams = errors.New("renderer: invalid render params")

// Validation failure kinds. Each ValidationError wraps exactly one of these.
var (
	ErrSampleCountNotMultiple  = errors.New("max_samples_per_pixel is not a multiple of num_samples_per_pixel")
	ErrVFovOutOfRange          = errors.New("vfov must be between 0 and 90 degrees")
	ErrApertureOutOfRange      = errors.New("aperture must be between 0 and 1")
	ErrFocusDistanceOutOfRange = errors.New("focus_distance must not be negative")
	ErrViewportSize            = errors.New("viewport dimensions cannot be zero")
	ErrSkyOutOfRange           = errors.New("sky parameter out of range")
)

// ValidationError reports the first render parameter that failed validation.
type ValidationError struct {
	// Err is the failure kind, one of the Err* sentinels above.
	Err error
	// Field names the offending parameter.
	Field string
	// Value is the rejected value.
	Value any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s = %v)", ErrInvalidRenderParams, e.Err, e.Field, e.Value)
}

// Is matches ErrInvalidRenderParams in addition to the wrapped kind.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRenderParams
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(kind error, field string, value any) error {
	return &ValidationError{Err: kind, Field: field, Value: value}
}
