package camera

import (
	"github.com/Carmen-Shannon/reactor/common"
	"github.com/chewxy/math32"
)

// Default pose of a freshly created camera node.
var (
	DefaultPosition = common.Vec3{-10, 2, -4}
	DefaultLookAt   = common.Vec3{0, 1, 0}
)

// Default lens settings of a freshly created camera node, angles in degrees.
const (
	DefaultYawDegrees   float32 = 25
	DefaultPitchDegrees float32 = -10
	DefaultVFovDegrees  float32 = 30
	DefaultAperture     float32 = 0.8
)

// worldUp is the fixed up axis orientations are derived against.
var worldUp = common.Vec3{0, 1, 0}

// Camera is a thin-lens camera in world space.
type Camera struct {
	// EyePos is the lens center.
	EyePos common.Vec3
	// EyeDir is the viewing direction; it need not be normalized.
	EyeDir common.Vec3
	// Up is the image-plane up direction; it need not be normalized.
	Up common.Vec3
	// VFov is the vertical field of view in radians. Valid range is [0, pi/2].
	VFov float32
	// Aperture is the lens diameter. Valid range is [0, 1].
	Aperture float32
	// FocusDistance is the distance from the lens to the plane in focus. Must not be negative.
	FocusDistance float32
}

// Orientation is an orthonormal camera basis.
type Orientation struct {
	Forward common.Vec3
	Right   common.Vec3
	Up      common.Vec3
}

// NewOrientation derives the camera basis from yaw and pitch, both in radians.
// Yaw rotates about the world Y axis starting at +X, pitch tilts toward +Y.
//
// Parameters:
//   - yaw: rotation about the world up axis in radians
//   - pitch: elevation in radians
//
// Returns:
//   - Orientation: the forward, right and up axes
func NewOrientation(yaw, pitch float32) Orientation {
	forward := common.Vec3{
		math32.Cos(yaw) * math32.Cos(pitch),
		math32.Sin(pitch),
		math32.Sin(yaw) * math32.Cos(pitch),
	}.Normalize()
	right := forward.Cross(worldUp)
	up := right.Cross(forward)
	return Orientation{Forward: forward, Right: right, Up: up}
}

// Pose is the user-editable part of a camera: where it is and where it looks.
type Pose struct {
	Position common.Vec3
	// Yaw in radians.
	Yaw float32
	// Pitch in radians.
	Pitch float32
}

// DefaultPose returns the pose of a freshly created camera node.
func DefaultPose() Pose {
	return Pose{
		Position: DefaultPosition,
		Yaw:      common.Radians(DefaultYawDegrees),
		Pitch:    common.Radians(DefaultPitchDegrees),
	}
}

// DefaultFocusDistance is the distance from DefaultPosition to DefaultLookAt.
func DefaultFocusDistance() float32 {
	return DefaultLookAt.Sub(DefaultPosition).Length()
}

// Orientation returns the basis of the pose.
func (p Pose) Orientation() Orientation {
	return NewOrientation(p.Yaw, p.Pitch)
}

// Camera builds a Camera from the pose and lens settings.
//
// Parameters:
//   - vfov: vertical field of view in radians
//   - aperture: lens diameter
//   - focusDistance: distance to the focal plane
//
// Returns:
//   - Camera: the world-space camera
func (p Pose) Camera(vfov, aperture, focusDistance float32) Camera {
	o := p.Orientation()
	return Camera{
		EyePos:        p.Position,
		EyeDir:        o.Forward,
		Up:            o.Up,
		VFov:          vfov,
		Aperture:      aperture,
		FocusDistance: focusDistance,
	}
}
