package camera

import (
	"github.com/Carmen-Shannon/reactor/common"
	"github.com/chewxy/math32"
)

// maxPitch keeps the forward axis away from the world up axis.
var maxPitch = common.Radians(89)

// Input is a snapshot of the user input relevant to camera movement for one frame.
type Input struct {
	Forward, Backward bool
	Left, Right       bool
	Up, Down          bool

	// Look is true while the look button is held.
	Look bool
	// Cursor is the pointer position in viewport pixels.
	Cursor [2]float32
	// Viewport is the size of the view the cursor is relative to.
	Viewport common.Viewport
}

// Moving reports whether any translation key is held.
func (in Input) Moving() bool {
	return in.Forward || in.Backward || in.Left || in.Right || in.Up || in.Down
}

// CameraController turns per-frame input into pose changes.
type CameraController interface {
	// Apply advances the pose by one frame of input.
	//
	// Parameters:
	//   - pose: the current pose
	//   - vfov: the camera's vertical field of view in radians, used to scale drags
	//   - in: the input snapshot
	//   - dt: seconds since the previous frame
	//
	// Returns:
	//   - Pose: the new pose
	//   - bool: true if the pose changed
	Apply(pose Pose, vfov float32, in Input, dt float32) (Pose, bool)

	// MoveSpeed returns the translation speed in world units per second.
	MoveSpeed() float32

	// Reset forgets the previous cursor position so the next drag starts fresh.
	Reset()
}

type flyController struct {
	moveSpeed   float32
	sensitivity float32

	prevCursor [2]float32
	hasPrev    bool
}

var _ CameraController = &flyController{}

// NewCameraController creates a first-person controller: WASD moves in the view plane, Q and E move down and up,
// and dragging with the look button rotates the view so the point under the cursor follows it.
//
// Parameters:
//   - options: functional options for configuring the controller
//
// Returns:
//   - CameraController: the new controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &flyController{
		moveSpeed:   2,
		sensitivity: 1,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *flyController) Apply(pose Pose, vfov float32, in Input, dt float32) (Pose, bool) {
	changed := false

	if in.Look && cc.hasPrev && !in.Viewport.IsZero() {
		dx := (in.Cursor[0] - cc.prevCursor[0]) / float32(in.Viewport.Width)
		dy := (in.Cursor[1] - cc.prevCursor[1]) / float32(in.Viewport.Height)
		hfov := 2 * math32.Atan(in.Viewport.Aspect()*math32.Tan(0.5*vfov))

		if dx != 0 || dy != 0 {
			pose.Yaw += dx * hfov * cc.sensitivity
			pose.Pitch = common.Clamp(pose.Pitch-dy*vfov*cc.sensitivity, -maxPitch, maxPitch)
			changed = true
		}
	}

	if in.Moving() {
		step := cc.moveSpeed * dt
		axis := func(pos, neg bool) float32 {
			switch {
			case pos && !neg:
				return step
			case neg && !pos:
				return -step
			}
			return 0
		}
		o := pose.Orientation()
		delta := o.Right.Scale(axis(in.Right, in.Left)).
			Add(o.Up.Scale(axis(in.Up, in.Down))).
			Add(o.Forward.Scale(axis(in.Forward, in.Backward)))
		if delta != (common.Vec3{}) {
			pose.Position = pose.Position.Add(delta)
			changed = true
		}
	}

	cc.prevCursor = in.Cursor
	cc.hasPrev = true
	return pose, changed
}

func (cc *flyController) MoveSpeed() float32 {
	return cc.moveSpeed
}

func (cc *flyController) Reset() {
	cc.hasPrev = false
}
