package graph

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/reactor/common"
	"github.com/Carmen-Shannon/reactor/engine/camera"
	"github.com/Carmen-Shannon/reactor/engine/renderer"
	"github.com/Carmen-Shannon/reactor/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var viewport = common.Viewport{Width: 64, Height: 32}

type renderFixture struct {
	sceneFixture
	camera NodeID
	render NodeID
	output NodeID
}

func newRenderFixture(t *testing.T) renderFixture {
	t.Helper()
	f := renderFixture{sceneFixture: newSceneFixture(t)}
	f.camera = f.g.Add(NewCameraNode())
	f.render = f.g.Add(NewXraysRenderNode())
	f.output = f.g.Add(NewOutputNode("main"))

	require.NoError(t, f.g.Connect(OutPin{f.camera, 0}, InPin{f.render, 3}))
	require.NoError(t, f.g.Connect(OutPin{f.scene, 0}, InPin{f.render, 4}))
	require.NoError(t, f.g.Connect(OutPin{f.render, 0}, InPin{f.output, 0}))
	return f
}

func TestFrameWithoutCamera(t *testing.T) {
	f := newRenderFixture(t)
	require.NoError(t, f.g.Disconnect(OutPin{f.camera, 0}, InPin{f.render, 3}))

	_, ok, err := f.g.Frame(f.render, viewport)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, SceneDirtyAll, f.node(t).Dirty())
}

func TestFrameUploadsSceneWhenRecompiled(t *testing.T) {
	f := newRenderFixture(t)

	req, ok, err := f.g.Frame(f.render, viewport)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, req.Scene)
	assert.Len(t, req.Scene.Spheres, 2)
	assert.Equal(t, viewport, req.Params.Viewport)
	assert.Equal(t, renderer.DefaultSamplingParams(), req.Params.Sampling)
	assert.Equal(t, renderer.DefaultSkyParams(), req.Params.Sky)
	assert.NoError(t, req.Params.Validate())

	// The upload is a snapshot.
	req.Scene.Spheres[0].Radius = 100
	assert.Equal(t, float32(1), f.node(t).Scene().Spheres[0].Radius)

	req, ok, err = f.g.Frame(f.render, viewport)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, req.Scene)

	require.NoError(t, f.g.SetRadius(f.s1, 3))
	req, _, err = f.g.Frame(f.render, viewport)
	require.NoError(t, err)
	require.NotNil(t, req.Scene)
	assert.Equal(t, float32(3), req.Scene.Spheres[0].Radius)
}

func TestFrameCameraFollowsNode(t *testing.T) {
	f := newRenderFixture(t)

	req, _, err := f.g.Frame(f.render, viewport)
	require.NoError(t, err)
	want := camera.DefaultPose().Camera(common.Radians(camera.DefaultVFovDegrees), camera.DefaultAperture, camera.DefaultFocusDistance())
	assert.InDelta(t, want.VFov, req.Params.Camera.VFov, 1e-6)
	assert.InDeltaSlice(t, want.EyeDir[:], req.Params.Camera.EyeDir[:], 1e-5)
	assert.Equal(t, want.EyePos, req.Params.Camera.EyePos)

	pose := camera.Pose{Position: common.Vec3{1, 2, 3}, Yaw: 0, Pitch: 0}
	require.NoError(t, f.g.SetPose(f.camera, pose))
	req, _, err = f.g.Frame(f.render, viewport)
	require.NoError(t, err)
	assert.Equal(t, common.Vec3{1, 2, 3}, req.Params.Camera.EyePos)
	assert.Nil(t, req.Scene)
}

func TestFrameStubAfterSceneDisconnect(t *testing.T) {
	f := newRenderFixture(t)
	_, _, err := f.g.Frame(f.render, viewport)
	require.NoError(t, err)

	require.NoError(t, f.g.Disconnect(OutPin{f.scene, 0}, InPin{f.render, 4}))
	req, ok, err := f.g.Frame(f.render, viewport)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, req.Scene)
	assert.Len(t, req.Scene.Spheres, 2)
	assert.Equal(t, float32(0), req.Scene.Spheres[0].Radius)
	assert.Len(t, req.Scene.LightIndices(), 1)

	req, _, err = f.g.Frame(f.render, viewport)
	require.NoError(t, err)
	assert.Nil(t, req.Scene)
}

func TestConnectSceneRegistersInRender(t *testing.T) {
	f := newRenderFixture(t)
	f.settle(t)

	other := f.g.Add(NewXraysRenderNode())
	require.NoError(t, f.g.Connect(OutPin{f.scene, 0}, InPin{other, 4}))
	assert.Equal(t, SceneDirtyAll, f.node(t).Dirty())
}

func TestSamplingPins(t *testing.T) {
	f := newRenderFixture(t)
	bounces := f.g.Add(&NumberNode{Value: 4})
	budget := f.g.Add(&NumberNode{Value: 64})
	rn, _ := Get[*XraysRenderNode](f.g, f.render)

	require.NoError(t, f.g.Connect(OutPin{bounces, 0}, InPin{f.render, 2}))
	require.NoError(t, f.g.Connect(OutPin{budget, 0}, InPin{f.render, 0}))
	assert.Equal(t, uint32(4), rn.Sampling.NumBounces)
	assert.Equal(t, uint32(64), rn.Sampling.MaxSamplesPerPixel)

	require.NoError(t, f.g.SetNumber(bounces, -3))
	assert.Equal(t, uint32(0), rn.Sampling.NumBounces)

	require.NoError(t, f.g.Disconnect(OutPin{bounces, 0}, InPin{f.render, 2}))
	assert.Equal(t, renderer.DefaultSamplingParams().NumBounces, rn.Sampling.NumBounces)
	assert.Equal(t, uint32(64), rn.Sampling.MaxSamplesPerPixel)
}

func TestSamplingPinsClampToUint32(t *testing.T) {
	f := newRenderFixture(t)
	budget := f.g.Add(&NumberNode{Value: 1e10})
	rn, _ := Get[*XraysRenderNode](f.g, f.render)

	require.NoError(t, f.g.Connect(OutPin{budget, 0}, InPin{f.render, 0}))
	assert.Equal(t, uint32(math.MaxUint32), rn.Sampling.MaxSamplesPerPixel)

	tests := []struct {
		value float32
		want  uint32
	}{
		{float32(math.Inf(1)), math.MaxUint32},
		{-1e10, 0},
		{float32(math.NaN()), 0},
		{4096.7, 4096},
	}
	for _, tt := range tests {
		require.NoError(t, f.g.SetNumber(budget, tt.value))
		assert.Equal(t, tt.want, rn.Sampling.MaxSamplesPerPixel, "value %v", tt.value)
	}
}

func TestActivateReuploadsScene(t *testing.T) {
	f := newRenderFixture(t)
	_, ok, err := f.g.Frame(f.render, viewport)
	require.NoError(t, err)
	require.True(t, ok)
	req, _, err := f.g.Frame(f.render, viewport)
	require.NoError(t, err)
	require.Nil(t, req.Scene)

	require.NoError(t, f.g.Activate(f.render))
	req, _, err = f.g.Frame(f.render, viewport)
	require.NoError(t, err)
	require.NotNil(t, req.Scene)
	sn, _ := Get[*SceneNode](f.g, f.scene)
	assert.Equal(t, sn.Scene().Spheres, req.Scene.Spheres)

	require.NoError(t, f.g.Disconnect(OutPin{f.scene, 0}, InPin{f.render, 4}))
	_, _, err = f.g.Frame(f.render, viewport)
	require.NoError(t, err)
	require.NoError(t, f.g.Activate(f.render))
	req, _, err = f.g.Frame(f.render, viewport)
	require.NoError(t, err)
	require.NotNil(t, req.Scene)
	assert.Len(t, req.Scene.Spheres, len(scene.Stub().Spheres))

	assert.ErrorIs(t, f.g.Activate(f.camera), ErrWrongKind)
	assert.ErrorIs(t, f.g.Activate(9999), ErrNodeNotFound)
}

func TestFrameRejectsOtherKinds(t *testing.T) {
	f := newRenderFixture(t)
	_, _, err := f.g.Frame(f.camera, viewport)
	assert.ErrorIs(t, err, ErrWrongKind)
	_, _, err = f.g.Frame(999, viewport)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestOutputs(t *testing.T) {
	f := newRenderFixture(t)
	preview := f.g.Add(NewOutputNode("preview"))

	assert.Equal(t, []NodeID{f.output, preview}, f.g.Outputs())

	id, ok := f.g.FindOutput("preview")
	require.True(t, ok)
	assert.Equal(t, preview, id)
	id, ok = f.g.FindOutput("")
	require.True(t, ok)
	assert.Equal(t, f.output, id)
	_, ok = f.g.FindOutput("missing")
	assert.False(t, ok)

	src, ok := f.g.OutputSource(f.output)
	require.True(t, ok)
	assert.Equal(t, f.render, src)
	_, ok = f.g.OutputSource(preview)
	assert.False(t, ok)
}

func TestOutputRejectsNonRenders(t *testing.T) {
	g := NewGraph()
	cam := g.Add(NewCameraNode())
	out := g.Add(NewOutputNode("main"))
	tri := g.Add(NewTriangleRenderNode())

	assert.ErrorIs(t, g.Connect(OutPin{cam, 0}, InPin{out, 0}), ErrIncompatiblePins)
	assert.NoError(t, g.Connect(OutPin{tri, 0}, InPin{out, 0}))
}
