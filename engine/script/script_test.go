package script

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/reactor/common"
	"github.com/Carmen-Shannon/reactor/engine/graph"
	"github.com/Carmen-Shannon/reactor/engine/scene"
	"github.com/Carmen-Shannon/reactor/engine/texture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const preview = `
; two spheres sharing one textured material
(def tex (texture "marble.png" :scale 2 :name "marble"))
(def mat (lambertian :texture tex))
(def ground (sphere :center [0 -1000 0] :radius 1000 :material (checkerboard :even [0.2 0.3 0.1])))
(def ball (sphere :center [0 1 0] :material mat :name "ball"))
(def other (sphere :center 2 :radius 0.5 :material mat))
(def cam (camera :position [-10 2 -4] :vfov 40 :name "cam"))
(output (xrays :camera cam :scene (scene (collection ground ball other)) :max-samples 64 :samples 4)
        :target "main")
`

func stubLoader() texture.Loader {
	return texture.LoaderFunc(func(string, float32) (texture.Texture, error) {
		return texture.NewFromColor(common.Vec3{1, 1, 1}), nil
	})
}

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"keyword", `(sphere :radius 2)`, `(sphere "__kw_radius" 2)`},
		{"kebab keyword", `(xrays :max-samples 8)`, `(xrays "__kw_max-samples" 8)`},
		{"kebab identifier", `(def my-ball 1)`, `(def my_ball 1)`},
		{"minus kept", `(- a 1) [0 -1 0]`, `(- a 1) [0 -1 0]`},
		{"comment", ";; note\n(a)", "// note\n(a)"},
		{"string untouched", `"a :b c-d ;e"`, `"a :b c-d ;e"`},
		{"escaped quote", `"a\":b" :c`, `"a\":b" "__kw_c"`},
		{"assignment", `(x := 1)`, `(x := 1)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, preprocess(tt.in))
		})
	}
}

func TestEvalBuildsGraph(t *testing.T) {
	res, err := Eval(preview, WithTextureLoader(stubLoader()))
	require.NoError(t, err)

	out, ok := res.Graph.FindOutput("main")
	require.True(t, ok)
	assert.Equal(t, out, res.Output)

	renderID, ok := res.Graph.OutputSource(out)
	require.True(t, ok)
	render, ok := graph.Get[*graph.XraysRenderNode](res.Graph, renderID)
	require.True(t, ok)
	assert.Equal(t, uint32(64), render.Sampling.MaxSamplesPerPixel)
	assert.Equal(t, uint32(4), render.Sampling.NumSamplesPerPixel)
	assert.Equal(t, res.Named["cam"], render.Camera)

	cam, ok := graph.Get[*graph.CameraNode](res.Graph, res.Named["cam"])
	require.True(t, ok)
	assert.Equal(t, common.Vec3{-10, 2, -4}, cam.Position)
	assert.Equal(t, float32(40), cam.VFov)

	ball, ok := graph.Get[*graph.SphereNode](res.Graph, res.Named["ball"])
	require.True(t, ok)
	assert.Equal(t, common.Vec3{0, 1, 0}, ball.Center)
	assert.Equal(t, float32(1), ball.Radius)
	assert.True(t, ball.Material.IsExternal())

	tex, ok := graph.Get[*graph.TextureNode](res.Graph, res.Named["marble"])
	require.True(t, ok)
	assert.Equal(t, "marble.png", tex.Path)
	assert.Equal(t, float32(2), tex.Scale)
}

func TestEvalGraphCompiles(t *testing.T) {
	res, err := Eval(preview, WithTextureLoader(stubLoader()))
	require.NoError(t, err)

	renderID, _ := res.Graph.OutputSource(res.Output)
	render, _ := graph.Get[*graph.XraysRenderNode](res.Graph, renderID)

	resp, err := res.Graph.Recalculate(render.Scene)
	require.NoError(t, err)
	assert.Equal(t, graph.SceneRecalculated, resp)

	sn, _ := graph.Get[*graph.SceneNode](res.Graph, render.Scene)
	compiled := sn.Scene()
	require.Len(t, compiled.Spheres, 3)
	// checkerboard plus the shared lambertian
	assert.Len(t, compiled.Materials, 2)
	assert.Equal(t, compiled.Spheres[1].MaterialIdx, compiled.Spheres[2].MaterialIdx)
	assert.Equal(t, scene.MaterialCheckerboard, compiled.Materials[compiled.Spheres[0].MaterialIdx].Kind)
	assert.Equal(t, float32(0.5), compiled.Spheres[2].Radius)
}

func TestEvalConnectAndAssign(t *testing.T) {
	res, err := Eval(`
(def r (number 3))
(def s (sphere :name "s"))
(connect r s 1)
(def c (color 1 0 0))
(def m (metal :albedo c :fuzz 0.25 :name "m"))
(assign m :fuzz 0.5)
(assign s :center 4)
`)
	require.NoError(t, err)

	s, _ := graph.Get[*graph.SphereNode](res.Graph, res.Named["s"])
	assert.Equal(t, float32(3), s.Radius)
	assert.Equal(t, common.Vec3{4, 4, 4}, s.Center)

	m, _ := graph.Get[*graph.MetalNode](res.Graph, res.Named["m"])
	assert.Equal(t, common.Vec3{1, 0, 0}, m.Albedo)
	assert.Equal(t, float32(0.5), m.Fuzz)
	assert.Equal(t, graph.NoNode, res.Output)
}

func TestEvalEmpty(t *testing.T) {
	res, err := Eval("  \n")
	require.NoError(t, err)
	assert.Zero(t, res.Graph.Len())
}

func TestEvalBadArguments(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"literal for reference", `(sphere :material 1)`},
		{"string for number", `(sphere :radius "big")`},
		{"unknown property", `(camera :zoom 2)`},
		{"short vector", `(sphere :center [1 2])`},
		{"wire into sky", `(xrays :azimuth (number 1))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Eval(tt.src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrBadArgument), err.Error())
		})
	}
}

func TestEvalIncompatibleWire(t *testing.T) {
	_, err := Eval(`(sphere :material (camera))`)
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrIncompatiblePins)
}

func TestEvalSyntaxError(t *testing.T) {
	_, err := Eval("(sphere :radius 1")
	require.Error(t, err)

	var evalErr *EvalError
	assert.ErrorAs(t, err, &evalErr)
}

func TestParseError(t *testing.T) {
	e := parseError(errors.New("Error on line 3: unexpected ')'"))
	assert.Equal(t, 3, e.Line)
	assert.Equal(t, "unexpected ')'", e.Message)
	assert.Equal(t, "script: line 3: unexpected ')'", e.Error())

	e = parseError(errors.New("boom"))
	assert.Equal(t, 0, e.Line)
	assert.Equal(t, "script: boom", e.Error())
}

func TestShowcaseExample(t *testing.T) {
	res, err := EvalFile("../../examples/showcase.zy")
	require.NoError(t, err)

	main, ok := res.Graph.FindOutput("main")
	require.True(t, ok)
	renderID, _ := res.Graph.OutputSource(main)
	render, ok := graph.Get[*graph.XraysRenderNode](res.Graph, renderID)
	require.True(t, ok)
	assert.Equal(t, uint32(2048), render.Sampling.MaxSamplesPerPixel)
	assert.Equal(t, float32(30), render.Sky.AzimuthDegrees)

	debug, ok := res.Graph.FindOutput("debug")
	require.True(t, ok)
	triangleID, _ := res.Graph.OutputSource(debug)
	_, ok = graph.Get[*graph.TriangleRenderNode](res.Graph, triangleID)
	assert.True(t, ok)

	_, err = res.Graph.Recalculate(render.Scene)
	require.NoError(t, err)
	sn, _ := graph.Get[*graph.SceneNode](res.Graph, render.Scene)
	assert.Len(t, sn.Scene().Spheres, 5)
	assert.Len(t, sn.Scene().LightIndices(), 1)
	assert.Contains(t, res.Named, "sun")
}
