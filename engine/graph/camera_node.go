package graph

import (
	"github.com/Carmen-Shannon/reactor/common"
	"github.com/Carmen-Shannon/reactor/engine/camera"
)

// CameraNode is an editable camera. Angles are in degrees.
type CameraNode struct {
	Position common.Vec3
	Yaw      float32
	Pitch    float32
	VFov     float32
	Aperture float32
	Focus    float32
}

// NewCameraNode returns a camera at the default pose looking at the default target.
func NewCameraNode() *CameraNode {
	return &CameraNode{
		Position: camera.DefaultPosition,
		Yaw:      camera.DefaultYawDegrees,
		Pitch:    camera.DefaultPitchDegrees,
		VFov:     camera.DefaultVFovDegrees,
		Aperture: camera.DefaultAperture,
		Focus:    camera.DefaultFocusDistance(),
	}
}

func (*CameraNode) Name() string { return "Camera" }

func (*CameraNode) Inputs() []NodeFlags {
	return []NodeFlags{
		FlagTypicalVectorInput,
		FlagTypicalNumberInput,
		FlagTypicalNumberInput,
		FlagTypicalNumberInput,
		FlagTypicalNumberInput,
		FlagTypicalNumberInput,
	}
}

func (*CameraNode) Outputs() []NodeFlags { return []NodeFlags{FlagCamera} }
func (*CameraNode) node() {}

func (n *CameraNode) connectInput(g *Graph, _ NodeID, pin int, source NodeID) bool {
	switch pin {
	case 0:
		return g.pullVector(&n.Position, source)
	case 1:
		return g.pullNumber(&n.Yaw, source)
	case 2:
		return g.pullNumber(&n.Pitch, source)
	case 3:
		return g.pullNumber(&n.VFov, source)
	case 4:
		return g.pullNumber(&n.Aperture, source)
	case 5:
		return g.pullNumber(&n.Focus, source)
	}
	return false
}

func (*CameraNode) disconnectInput(*Graph, NodeID, int) bool { return false }

// Pose returns the position and orientation of the camera.
func (n *CameraNode) Pose() camera.Pose {
	return camera.Pose{
		Position: n.Position,
		Yaw:      common.Radians(n.Yaw),
		Pitch:    common.Radians(n.Pitch),
	}
}

// Camera returns the world-space camera.
func (n *CameraNode) Camera() camera.Camera {
	return n.Pose().Camera(common.Radians(n.VFov), n.Aperture, n.Focus)
}

// SetPose moves and turns a camera node.
//
// Returns:
//   - error: ErrNodeNotFound or ErrWrongKind
func (g *Graph) SetPose(id NodeID, p camera.Pose) error {
	return update(g, id, func(n *CameraNode) bool {
		a := setVec(&n.Position, p.Position)
		b := setFloat(&n.Yaw, common.Degrees(p.Yaw))
		c := setFloat(&n.Pitch, common.Degrees(p.Pitch))
		return a || b || c
	})
}

// SetLens sets the field of view in degrees, aperture and focus distance of a camera node.
func (g *Graph) SetLens(id NodeID, vfov, aperture, focus float32) error {
	return update(g, id, func(n *CameraNode) bool {
		a := setFloat(&n.VFov, vfov)
		b := setFloat(&n.Aperture, aperture)
		c := setFloat(&n.Focus, focus)
		return a || b || c
	})
}
