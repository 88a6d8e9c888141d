package graph

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/reactor/common"
	"github.com/Carmen-Shannon/reactor/engine/renderer"
	"github.com/Carmen-Shannon/reactor/engine/scene"
)

// XraysRenderNode drives the progressive path tracer. Sampling comes from its number pins, the camera and scene
// from its reference pins.
type XraysRenderNode struct {
	Sampling renderer.SamplingParams
	Sky      renderer.SkyParams
	Camera   NodeID
	Scene    NodeID

	disconnectScene bool
}

// NewXraysRenderNode returns a render node with default sampling and sky.
func NewXraysRenderNode() *XraysRenderNode {
	return &XraysRenderNode{
		Sampling: renderer.DefaultSamplingParams(),
		Sky:      renderer.DefaultSkyParams(),
	}
}

func (*XraysRenderNode) Name() string { return "Xrays Render" }

func (*XraysRenderNode) Inputs() []NodeFlags {
	return []NodeFlags{
		FlagTypicalNumberInput,
		FlagTypicalNumberInput,
		FlagTypicalNumberInput,
		FlagCamera,
		FlagScene,
	}
}

func (*XraysRenderNode) Outputs() []NodeFlags { return []NodeFlags{FlagRenderXrays} }
func (*XraysRenderNode) node() {}
func (n *XraysRenderNode) contributing() []NodeID { return []NodeID{n.Camera, n.Scene} }

func setCount(dst *uint32, g *Graph, source NodeID) bool {
	v, ok := g.number(source)
	if !ok {
		return false
	}
	var c uint32
	switch {
	case v >= math.MaxUint32:
		c = math.MaxUint32
	case v > 0:
		c = uint32(v)
	}
	if *dst == c {
		return false
	}
	*dst = c
	return true
}

func (n *XraysRenderNode) connectInput(g *Graph, _ NodeID, pin int, source NodeID) bool {
	switch pin {
	case 0:
		return setCount(&n.Sampling.MaxSamplesPerPixel, g, source)
	case 1:
		return setCount(&n.Sampling.NumSamplesPerPixel, g, source)
	case 2:
		return setCount(&n.Sampling.NumBounces, g, source)
	case 3:
		if _, ok := Get[*CameraNode](g, source); !ok {
			return false
		}
		return setID(&n.Camera, source)
	case 4:
		sn, ok := Get[*SceneNode](g, source)
		if !ok || !setID(&n.Scene, source) {
			return false
		}
		sn.RegisterInRender()
		return true
	}
	return false
}

func (n *XraysRenderNode) disconnectInput(_ *Graph, _ NodeID, pin int) bool {
	defaults := renderer.DefaultSamplingParams()
	switch pin {
	case 0:
		n.Sampling.MaxSamplesPerPixel = defaults.MaxSamplesPerPixel
	case 1:
		n.Sampling.NumSamplesPerPixel = defaults.NumSamplesPerPixel
	case 2:
		n.Sampling.NumBounces = defaults.NumBounces
	case 3:
		n.Camera = NoNode
	case 4:
		n.Scene = NoNode
		n.disconnectScene = true
	default:
		return false
	}
	return true
}

// FrameRequest is what a render node asks of the renderer for one frame.
type FrameRequest struct {
	Params renderer.RenderParams
	// Scene is the scene to upload, or nil when the last upload is still current.
	Scene *scene.Scene
}

// Frame prepares the next frame of the xrays render node id: it recompiles the connected scene when dirty and
// returns a snapshot of it, or the stub scene once after the scene was disconnected.
//
// Parameters:
//   - id: the render node
//   - viewport: the size of the target surface
//
// Returns:
//   - FrameRequest: the render parameters and optional scene upload
//   - bool: false when no camera is connected and nothing should be rendered
//   - error: ErrNodeNotFound or ErrWrongKind
func (g *Graph) Frame(id NodeID, viewport common.Viewport) (FrameRequest, bool, error) {
	n, err := g.lookup(id)
	if err != nil {
		return FrameRequest{}, false, err
	}
	rn, ok := n.(*XraysRenderNode)
	if !ok {
		return FrameRequest{}, false, fmt.Errorf("%w: node %d is a %s, not an xrays render", ErrWrongKind, id, n.Name())
	}
	cam, ok := Get[*CameraNode](g, rn.Camera)
	if !ok {
		return FrameRequest{}, false, nil
	}

	req := FrameRequest{
		Params: renderer.RenderParams{
			Camera:   cam.Camera(),
			Viewport: viewport,
			Sky:      rn.Sky,
			Sampling: rn.Sampling,
		},
	}

	if rn.Scene != NoNode {
		resp, err := g.Recalculate(rn.Scene)
		if err != nil {
			return FrameRequest{}, false, err
		}
		if resp == SceneRecalculated {
			sn, _ := Get[*SceneNode](g, rn.Scene)
			req.Scene = sn.Scene().Clone()
		}
	} else if rn.disconnectScene {
		rn.disconnectScene = false
		req.Scene = scene.Stub()
	}
	return req, true, nil
}

// Activate marks the xrays render node id as newly shown: its next Frame uploads the connected scene, or the
// stub scene when none is connected.
//
// Returns:
//   - error: ErrNodeNotFound or ErrWrongKind
func (g *Graph) Activate(id NodeID) error {
	n, err := g.lookup(id)
	if err != nil {
		return err
	}
	rn, ok := n.(*XraysRenderNode)
	if !ok {
		return fmt.Errorf("%w: node %d is a %s, not an xrays render", ErrWrongKind, id, n.Name())
	}
	if sn, ok := Get[*SceneNode](g, rn.Scene); ok {
		sn.RegisterInRender()
	} else {
		rn.disconnectScene = true
	}
	return nil
}

// SetSampling replaces the sampling parameters of an xrays render node.
//
// Returns:
//   - error: ErrNodeNotFound or ErrWrongKind
func (g *Graph) SetSampling(id NodeID, s renderer.SamplingParams) error {
	return update(g, id, func(n *XraysRenderNode) bool {
		if n.Sampling == s {
			return false
		}
		n.Sampling = s
		return true
	})
}

// SetSky replaces the sky of an xrays render node.
func (g *Graph) SetSky(id NodeID, s renderer.SkyParams) error {
	return update(g, id, func(n *XraysRenderNode) bool {
		if n.Sky == s {
			return false
		}
		n.Sky = s
		return true
	})
}

// TriangleRenderNode is the rasterizer test render.
type TriangleRenderNode struct {
	Angle float32
}

// NewTriangleRenderNode returns a triangle render at angle 0.
func NewTriangleRenderNode() *TriangleRenderNode {
	return &TriangleRenderNode{}
}

func (*TriangleRenderNode) Name() string { return "Triangle Render" }
func (*TriangleRenderNode) Inputs() []NodeFlags { return []NodeFlags{FlagTypicalNumberInput} }
func (*TriangleRenderNode) Outputs() []NodeFlags { return []NodeFlags{FlagRenderTriangle} }
func (*TriangleRenderNode) node() {}

func (n *TriangleRenderNode) connectInput(g *Graph, _ NodeID, pin int, source NodeID) bool {
	if pin == 0 {
		return g.pullNumber(&n.Angle, source)
	}
	return false
}

func (*TriangleRenderNode) disconnectInput(*Graph, NodeID, int) bool { return false }
