package graph

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/reactor/common"
	"github.com/Carmen-Shannon/reactor/engine/scene"
	"github.com/Carmen-Shannon/reactor/engine/texture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLoader returns a 2x1 texture per call and records every load.
type countingLoader struct {
	loads map[texture.Request]int
	fail  map[string]bool
}

func newCountingLoader() *countingLoader {
	return &countingLoader{loads: make(map[texture.Request]int), fail: make(map[string]bool)}
}

func (l *countingLoader) LoadScaled(path string, scale float32) (texture.Texture, error) {
	l.loads[texture.Request{Path: path, Scale: scale}]++
	if l.fail[path] {
		return texture.Texture{}, errors.New("boom")
	}
	return texture.Texture{Width: 2, Height: 1, Data: [][3]float32{{scale, 0, 0}, {0, scale, 0}}}, nil
}

func (l *countingLoader) total() int {
	n := 0
	for _, c := range l.loads {
		n += c
	}
	return n
}

type sceneFixture struct {
	sharedMaterial
	loader *countingLoader
	inline NodeID
	scene  NodeID
}

// newSceneFixture extends the shared material graph with a sphere using its own material and a scene node.
func newSceneFixture(t *testing.T) sceneFixture {
	t.Helper()
	loader := newCountingLoader()
	g := NewGraph(WithTextureLoader(loader))
	f := sceneFixture{sharedMaterial: newSharedMaterial(t, g), loader: loader}

	require.NoError(t, g.RemoveNode(f.s2))
	f.inline = g.Add(NewSphereNode())
	require.NoError(t, g.Connect(OutPin{f.inline, 0}, InPin{f.group, 1}))

	f.scene = g.Add(NewSceneNode())
	require.NoError(t, g.Connect(OutPin{f.group, 0}, InPin{f.scene, 0}))
	return f
}

func (f sceneFixture) node(t *testing.T) *SceneNode {
	t.Helper()
	sn, ok := Get[*SceneNode](f.g, f.scene)
	require.True(t, ok)
	return sn
}

func (f sceneFixture) settle(t *testing.T) {
	t.Helper()
	for i := 0; i < 3; i++ {
		resp, err := f.g.Recalculate(f.scene)
		require.NoError(t, err)
		if resp == SceneNothing {
			break
		}
	}
	require.Equal(t, SceneDirtyNone, f.node(t).Dirty())
}

func TestRecalculateFirstCompileRunsTwice(t *testing.T) {
	g := NewGraph()
	id := g.Add(NewSceneNode())
	sn, _ := Get[*SceneNode](g, id)
	assert.Equal(t, SceneDirtyInit, sn.Dirty())

	resp, err := g.Recalculate(id)
	require.NoError(t, err)
	assert.Equal(t, SceneRecalculated, resp)
	assert.Equal(t, SceneDirtyAll, sn.Dirty())

	resp, err = g.Recalculate(id)
	require.NoError(t, err)
	assert.Equal(t, SceneRecalculated, resp)
	assert.Equal(t, SceneDirtyNone, sn.Dirty())

	resp, err = g.Recalculate(id)
	require.NoError(t, err)
	assert.Equal(t, SceneNothing, resp)
}

func TestConnectedSceneCompilesOnce(t *testing.T) {
	f := newSceneFixture(t)
	sn := f.node(t)
	assert.Equal(t, SceneDirtyAll, sn.Dirty())

	resp, err := f.g.Recalculate(f.scene)
	require.NoError(t, err)
	assert.Equal(t, SceneRecalculated, resp)
	assert.Equal(t, SceneDirtyNone, sn.Dirty())
	assert.Equal(t, 1, f.loader.total())

	// A forced recompile moves the loaded texture over from the previous scene.
	sn.MarkDirty(SceneDirtyTextureValue)
	resp, err = f.g.Recalculate(f.scene)
	require.NoError(t, err)
	assert.Equal(t, SceneRecalculated, resp)
	assert.Equal(t, 1, f.loader.total())
	assert.True(t, sn.Scene().Textures[0].Matches("bricks.png", 1))
}

func TestCompiledLayout(t *testing.T) {
	f := newSceneFixture(t)
	f.settle(t)
	s := f.node(t).Scene()

	require.Len(t, s.Spheres, 2)
	require.Len(t, s.Materials, 2)
	require.Len(t, s.Textures, 2)

	assert.True(t, s.Textures[0].Matches("bricks.png", 1))
	assert.Nil(t, s.Textures[1].Key)
	assert.Equal(t, [][3]float32{{lightGray[0], lightGray[1], lightGray[2]}}, s.Textures[1].Texture.Data)

	assert.Equal(t, scene.Lambertian(0), s.Materials[0])
	assert.Equal(t, scene.Lambertian(1), s.Materials[1])
	assert.Equal(t, uint32(0), s.Spheres[0].MaterialIdx)
	assert.Equal(t, uint32(1), s.Spheres[1].MaterialIdx)
	assert.NoError(t, s.Validate())

	assert.Equal(t, []NodeID{f.tex, f.mat, f.s1, f.inline, f.group}, f.node(t).Tracked())
}

func TestSharedMaterialCompiledOnce(t *testing.T) {
	g := NewGraph(WithTextureLoader(newCountingLoader()))
	f := newSharedMaterial(t, g)
	sc := g.Add(NewSceneNode())
	require.NoError(t, g.Connect(OutPin{f.group, 0}, InPin{sc, 0}))

	_, err := g.Recalculate(sc)
	require.NoError(t, err)
	sn, _ := Get[*SceneNode](g, sc)
	assert.Len(t, sn.Scene().Materials, 1)
	assert.Len(t, sn.Scene().Textures, 1)
	assert.Len(t, sn.Scene().Spheres, 2)
}

func TestTrackedChangesMarkDirty(t *testing.T) {
	f := newSceneFixture(t)
	f.settle(t)

	for _, id := range []NodeID{f.tex, f.mat, f.s1, f.inline, f.group} {
		assert.True(t, f.g.HasSubscription(id, f.scene, EventOnChange), "node %d", id)
	}

	require.NoError(t, f.g.SetRadius(f.s1, 4))
	assert.Equal(t, SceneDirtyAll, f.node(t).Dirty())

	resp, err := f.g.Recalculate(f.scene)
	require.NoError(t, err)
	assert.Equal(t, SceneRecalculated, resp)
	assert.Equal(t, float32(4), f.node(t).Scene().Spheres[0].Radius)

	require.NoError(t, f.g.SetAlbedo(f.mat, common.Vec3{1, 0, 0}))
	assert.Equal(t, SceneDirtyAll, f.node(t).Dirty())
}

func TestUnchangedEditKeepsSceneClean(t *testing.T) {
	f := newSceneFixture(t)
	f.settle(t)

	require.NoError(t, f.g.SetRadius(f.s1, 1))
	resp, err := f.g.Recalculate(f.scene)
	require.NoError(t, err)
	assert.Equal(t, SceneNothing, resp)
}

func TestTextureScaleChangeReloadsOnlyThatTexture(t *testing.T) {
	f := newSceneFixture(t)
	other := f.g.Add(NewTextureNode("marble.png"))
	metal := f.g.Add(NewMetalNode())
	require.NoError(t, f.g.Connect(OutPin{other, 0}, InPin{metal, 2}))
	require.NoError(t, f.g.Connect(OutPin{metal, 0}, InPin{f.inline, 2}))
	f.settle(t)
	require.Equal(t, 2, f.loader.total())

	s := f.node(t).Scene()
	idx := -1
	for i, td := range s.Textures {
		if td.Matches("marble.png", 1) {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	before := s.Textures[idx].Texture.Data

	require.NoError(t, f.g.SetScale(f.tex, 2))
	resp, err := f.g.Recalculate(f.scene)
	require.NoError(t, err)
	require.Equal(t, SceneRecalculated, resp)

	assert.Equal(t, 3, f.loader.total())
	assert.Equal(t, 1, f.loader.loads[texture.Request{Path: "bricks.png", Scale: 2}])
	assert.Equal(t, 1, f.loader.loads[texture.Request{Path: "marble.png", Scale: 1}])

	var after [][3]float32
	for _, td := range f.node(t).Scene().Textures {
		if td.Matches("marble.png", 1) {
			after = td.Texture.Data
		}
	}
	require.NotEmpty(t, after)
	assert.Same(t, &before[0], &after[0])
}

func TestUnreachableNodesAreUnsubscribed(t *testing.T) {
	f := newSceneFixture(t)
	f.settle(t)

	require.NoError(t, f.g.Disconnect(OutPin{f.s1, 0}, InPin{f.group, 0}))
	_, err := f.g.Recalculate(f.scene)
	require.NoError(t, err)

	for _, id := range []NodeID{f.tex, f.mat, f.s1} {
		assert.False(t, f.g.HasSubscription(id, f.scene, EventOnChange), "node %d", id)
	}
	assert.True(t, f.g.HasSubscription(f.inline, f.scene, EventOnChange))
	assert.Len(t, f.node(t).Scene().Spheres, 1)
}

func TestStaleCallbackUnsubscribes(t *testing.T) {
	f := newSceneFixture(t)
	f.settle(t)

	require.NoError(t, f.g.RemoveNode(f.scene))
	assert.True(t, f.g.HasSubscription(f.s1, f.scene, EventOnChange))

	require.NoError(t, f.g.SetRadius(f.s1, 9))
	assert.False(t, f.g.HasSubscription(f.s1, f.scene, EventOnChange))
}

func TestDanglingMaterialFallsBack(t *testing.T) {
	f := newSceneFixture(t)
	s1, _ := Get[*SphereNode](f.g, f.s1)
	s1.Material = ExternalMaterial(999)

	_, err := f.g.Recalculate(f.scene)
	require.NoError(t, err)
	s := f.node(t).Scene()
	require.NoError(t, s.Validate())

	m := s.Materials[s.Spheres[0].MaterialIdx]
	assert.Equal(t, scene.MaterialLambertian, m.Kind)
	assert.Equal(t, [][3]float32{{lightGray[0], lightGray[1], lightGray[2]}}, s.Textures[m.Albedo].Texture.Data)
}

func TestTextureLoadFailureUsesPlaceholder(t *testing.T) {
	f := newSceneFixture(t)
	f.loader.fail["bricks.png"] = true

	_, err := f.g.Recalculate(f.scene)
	require.NoError(t, err)
	s := f.node(t).Scene()
	assert.Equal(t, [][3]float32{{1, 0, 1}}, s.Textures[0].Texture.Data)
	assert.True(t, s.Textures[0].Matches("bricks.png", 1))
}

func TestFailedTextureNotReloaded(t *testing.T) {
	f := newSceneFixture(t)
	f.loader.fail["bricks.png"] = true
	bricks := texture.Request{Path: "bricks.png", Scale: 1}

	for range 3 {
		f.node(t).MarkDirty(SceneDirtyAll)
		resp, err := f.g.Recalculate(f.scene)
		require.NoError(t, err)
		require.Equal(t, SceneRecalculated, resp)
		assert.Equal(t, 1, f.loader.loads[bricks])

		s := f.node(t).Scene()
		require.NoError(t, s.Validate())
		assert.Equal(t, [][3]float32{{1, 0, 1}}, s.Textures[0].Texture.Data)
	}
}

func TestCheckerboardSynthesizesBothColors(t *testing.T) {
	g := NewGraph(WithTextureLoader(newCountingLoader()))
	checker := g.Add(NewCheckerboardNode())
	sphere := g.Add(NewSphereNode())
	sc := g.Add(NewSceneNode())
	require.NoError(t, g.Connect(OutPin{checker, 0}, InPin{sphere, 2}))
	require.NoError(t, g.Connect(OutPin{sphere, 0}, InPin{sc, 0}))

	_, err := g.Recalculate(sc)
	require.NoError(t, err)
	sn, _ := Get[*SceneNode](g, sc)
	s := sn.Scene()

	require.Len(t, s.Textures, 2)
	assert.Equal(t, scene.Checkerboard(0, 1), s.Materials[0])
	assert.Equal(t, [][3]float32{{0, 0, 0}}, s.Textures[0].Texture.Data)
	assert.Equal(t, [][3]float32{{1, 1, 1}}, s.Textures[1].Texture.Data)
}

func TestSceneInputChangesMarkAll(t *testing.T) {
	f := newSceneFixture(t)
	f.settle(t)

	require.NoError(t, f.g.Disconnect(OutPin{f.group, 0}, InPin{f.scene, 0}))
	assert.Equal(t, SceneDirtyAll, f.node(t).Dirty())

	_, err := f.g.Recalculate(f.scene)
	require.NoError(t, err)
	assert.True(t, f.node(t).Scene().IsEmpty())
	assert.Empty(t, f.node(t).Tracked())
}

func TestRecalculateRejectsOtherKinds(t *testing.T) {
	g := NewGraph()
	id := g.Add(NewSphereNode())
	_, err := g.Recalculate(id)
	assert.ErrorIs(t, err, ErrWrongKind)
	_, err = g.Recalculate(99)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}
