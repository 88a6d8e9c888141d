package renderer

import (
	"github.com/Carmen-Shannon/reactor/common"
	"github.com/Carmen-Shannon/reactor/engine/camera"
	"github.com/chewxy/math32"
)

// SamplingParams controls how many samples are traced per pixel and how they are spread across frames.
type SamplingParams struct {
	// MaxSamplesPerPixel is the total sample budget. Accumulation stops once it is reached.
	MaxSamplesPerPixel uint32 `toml:"max_samples_per_pixel" yaml:"max_samples_per_pixel"`
	// NumSamplesPerPixel is the number of samples contributed per frame. It must divide MaxSamplesPerPixel.
	NumSamplesPerPixel uint32 `toml:"num_samples_per_pixel" yaml:"num_samples_per_pixel"`
	// NumBounces is the maximum path depth.
	NumBounces uint32 `toml:"num_bounces" yaml:"num_bounces"`
}

// DefaultSamplingParams returns 256 total samples, one per frame, with 8 bounces.
func DefaultSamplingParams() SamplingParams {
	return SamplingParams{
		MaxSamplesPerPixel: 256,
		NumSamplesPerPixel: 1,
		NumBounces:         8,
	}
}

// Validate checks that the per-frame sample count divides the total.
//
// Returns:
//   - error: a *ValidationError wrapping ErrSampleCountNotMultiple, or nil
func (s SamplingParams) Validate() error {
	if s.NumSamplesPerPixel == 0 || s.MaxSamplesPerPixel%s.NumSamplesPerPixel != 0 {
		return invalid(ErrSampleCountNotMultiple, "max_samples_per_pixel", [2]uint32{s.MaxSamplesPerPixel, s.NumSamplesPerPixel})
	}
	return nil
}

// Frames returns the number of frames needed to reach the sample budget.
func (s SamplingParams) Frames() uint32 {
	if s.NumSamplesPerPixel == 0 {
		return 0
	}
	return s.MaxSamplesPerPixel / s.NumSamplesPerPixel
}

// SkyParams describes the sun and atmosphere.
type SkyParams struct {
	// AzimuthDegrees is the sun direction around the Y axis. Valid range is [0, 360].
	AzimuthDegrees float32 `toml:"azimuth" yaml:"azimuth"`
	// ZenithDegrees is the angle between the sun and straight up. Valid range is [0, 90].
	ZenithDegrees float32 `toml:"zenith" yaml:"zenith"`
	// Turbidity is the atmospheric haze. Valid range is [1, 10].
	Turbidity float32 `toml:"turbidity" yaml:"turbidity"`
	// Albedo is the ground reflectance per channel. Valid range is [0, 1].
	Albedo [3]float32 `toml:"albedo" yaml:"albedo"`
}

// DefaultSkyParams returns a low, late-afternoon sun over a white ground.
func DefaultSkyParams() SkyParams {
	return SkyParams{
		AzimuthDegrees: 0,
		ZenithDegrees:  85,
		Turbidity:      4,
		Albedo:         [3]float32{1, 1, 1},
	}
}

func inRange(v, lo, hi float32) bool {
	return v >= lo && v <= hi
}

// Validate checks every sky parameter against its range.
//
// Returns:
//   - error: a *ValidationError wrapping ErrSkyOutOfRange, or nil
func (s SkyParams) Validate() error {
	switch {
	case !inRange(s.AzimuthDegrees, 0, 360):
		return invalid(ErrSkyOutOfRange, "azimuth", s.AzimuthDegrees)
	case !inRange(s.ZenithDegrees, 0, 90):
		return invalid(ErrSkyOutOfRange, "zenith", s.ZenithDegrees)
	case !inRange(s.Turbidity, 1, 10):
		return invalid(ErrSkyOutOfRange, "turbidity", s.Turbidity)
	}
	for _, a := range s.Albedo {
		if !inRange(a, 0, 1) {
			return invalid(ErrSkyOutOfRange, "albedo", s.Albedo)
		}
	}
	return nil
}

// SunDirection returns the unit vector pointing at the sun, with a zero w component.
func (s SkyParams) SunDirection() [4]float32 {
	azimuth := common.Radians(s.AzimuthDegrees)
	zenith := common.Radians(s.ZenithDegrees)
	return [4]float32{
		math32.Sin(zenith) * math32.Cos(azimuth),
		math32.Cos(zenith),
		math32.Sin(zenith) * math32.Sin(azimuth),
		0,
	}
}

// RenderParams is everything besides the scene that determines the accumulated image.
// It is comparable; any change restarts accumulation.
type RenderParams struct {
	Camera   camera.Camera
	Viewport common.Viewport
	Sky      SkyParams
	Sampling SamplingParams
}

// Validate checks the parameters in a fixed order and reports the first failure.
//
// Returns:
//   - error: a *ValidationError, or nil when the parameters are valid
func (p RenderParams) Validate() error {
	if err := p.Sampling.Validate(); err != nil {
		return err
	}
	if !inRange(p.Camera.VFov, 0, common.Radians(90)) {
		return invalid(ErrVFovOutOfRange, "vfov", common.Degrees(p.Camera.VFov))
	}
	if !inRange(p.Camera.Aperture, 0, 1) {
		return invalid(ErrApertureOutOfRange, "aperture", p.Camera.Aperture)
	}
	if p.Camera.FocusDistance < 0 {
		return invalid(ErrFocusDistanceOutOfRange, "focus_distance", p.Camera.FocusDistance)
	}
	if p.Viewport.IsZero() {
		return invalid(ErrViewportSize, "viewport", p.Viewport)
	}
	return p.Sky.Validate()
}
