package graph

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/reactor/common"
	"github.com/Carmen-Shannon/reactor/engine/scene"
	"github.com/Carmen-Shannon/reactor/engine/texture"
)

// SceneDirtyFlags records which parts of a compiled scene are out of date.
type SceneDirtyFlags uint32

const (
	SceneDirtyNone            SceneDirtyFlags = 0
	SceneDirtyTextureValue    SceneDirtyFlags = 1
	SceneDirtyTextureLayout   SceneDirtyFlags = 2
	SceneDirtyMaterialValue   SceneDirtyFlags = 4
	SceneDirtyMaterialLayout  SceneDirtyFlags = 8
	SceneDirtyPrimitiveValue  SceneDirtyFlags = 16
	SceneDirtyPrimitiveLayout SceneDirtyFlags = 32
	SceneDirtyAll             SceneDirtyFlags = math.MaxUint32
	// SceneDirtyInit is the state of a scene that has never been compiled.
	SceneDirtyInit            SceneDirtyFlags = SceneDirtyAll - 1
)

// SceneResponse is the outcome of Recalculate.
type SceneResponse int

const (
	// SceneNothing means the compiled scene was already current.
	SceneNothing SceneResponse = iota
	// SceneRecalculated means the compiled scene was rebuilt.
	SceneRecalculated
)

func (r SceneResponse) String() string {
	if r == SceneRecalculated {
		return "recalculated"
	}
	return "nothing"
}

// compiledKinds selects the nodes a scene compiles and listens to.
func compiledKinds(n Node) bool {
	switch n.(type) {
	case *SphereNode, MaterialNode, *TextureNode, *CollectionNode:
		return true
	}
	return false
}

// SceneNode compiles the primitives reachable from its input into a scene.Scene.
type SceneNode struct {
	Data NodeID

	dirty   SceneDirtyFlags
	scene   *scene.Scene
	tracked *IDSet
}

// NewSceneNode returns a scene node that has never been compiled.
func NewSceneNode() *SceneNode {
	return &SceneNode{
		dirty:   SceneDirtyInit,
		scene:   &scene.Scene{},
		tracked: NewIDSet(),
	}
}

func (*SceneNode) Name() string { return "Scene" }
func (*SceneNode) Inputs() []NodeFlags { return []NodeFlags{FlagPrimitives | FlagCollection} }
func (*SceneNode) Outputs() []NodeFlags { return []NodeFlags{FlagScene} }
func (*SceneNode) node() {}
func (n *SceneNode) contributing() []NodeID { return []NodeID{n.Data} }

func (n *SceneNode) connectInput(_ *Graph, _ NodeID, pin int, source NodeID) bool {
	if pin != 0 {
		return false
	}
	n.Data = source
	n.MarkDirty(SceneDirtyAll)
	return true
}

func (n *SceneNode) disconnectInput(_ *Graph, _ NodeID, pin int) bool {
	if pin != 0 {
		return false
	}
	n.Data = NoNode
	n.MarkDirty(SceneDirtyAll)
	return true
}

// MarkDirty adds flags to the dirty state.
func (n *SceneNode) MarkDirty(flags SceneDirtyFlags) {
	n.dirty |= flags
}

// Dirty returns the dirty state.
func (n *SceneNode) Dirty() SceneDirtyFlags {
	return n.dirty
}

// RegisterInRender forces a full recompile, so a render node connecting to the scene gets a fresh upload.
func (n *SceneNode) RegisterInRender() {
	n.MarkDirty(SceneDirtyAll)
}

// Scene returns the last compiled scene. It must not be modified.
func (n *SceneNode) Scene() *scene.Scene {
	return n.scene
}

// Tracked returns the nodes the last compile subscribed to, in compile order.
func (n *SceneNode) Tracked() []NodeID {
	return n.tracked.Slice()
}

// markSceneDirty is the change callback a scene registers on every node it compiles.
func markSceneDirty(g *Graph, subject, subscriber NodeID) {
	if sn, ok := Get[*SceneNode](g, subscriber); ok {
		sn.MarkDirty(SceneDirtyAll)
		return
	}
	g.Unsubscribe(subject, subscriber, EventOnChange)
}

// Recalculate recompiles the scene node id when it is dirty. The reachable spheres, materials, textures and
// collections are subscribed to, nodes no longer reachable are unsubscribed from, and textures are reused from
// the previous compile when their path and scale are unchanged.
//
// Parameters:
//   - id: the scene node
//
// Returns:
//   - SceneResponse: SceneRecalculated if the scene was rebuilt
//   - error: ErrNodeNotFound or ErrWrongKind
func (g *Graph) Recalculate(id NodeID) (SceneResponse, error) {
	n, err := g.lookup(id)
	if err != nil {
		return SceneNothing, err
	}
	sn, ok := n.(*SceneNode)
	if !ok {
		return SceneNothing, fmt.Errorf("%w: node %d is a %s, not a scene", ErrWrongKind, id, n.Name())
	}
	if sn.dirty == SceneDirtyNone {
		return SceneNothing, nil
	}

	old, oldTracked := sn.scene, sn.tracked
	tracked := g.Collect(sn.Data, compiledKinds)

	for _, nid := range tracked.Slice() {
		if !g.HasSubscription(nid, id, EventOnChange) {
			g.Subscribe(nid, id, EventOnChange, markSceneDirty)
		}
	}
	for _, nid := range oldTracked.Slice() {
		if !tracked.Contains(nid) {
			g.Unsubscribe(nid, id, EventOnChange)
		}
	}

	sn.scene = g.compile(tracked, old)
	sn.tracked = tracked

	// A first compile leaves the scene dirty so the next frame compiles again.
	if sn.dirty == SceneDirtyInit {
		sn.dirty = SceneDirtyAll
	} else {
		sn.dirty = SceneDirtyNone
	}

	g.compileLog.Debugf("scene %d: %d spheres, %d materials, %d textures from %d nodes",
		id, len(sn.scene.Spheres), len(sn.scene.Materials), len(sn.scene.Textures), tracked.Len())
	return SceneRecalculated, nil
}

// missingTexture replaces textures that fail to load. It keeps the request's path and scale, so later compiles
// reuse it until the path or scale changes.
var missingTexture = common.Vec3{1, 0, 1}

// compile builds a scene from nodes in dependency order. Loaded textures are moved out of old when possible.
func (g *Graph) compile(order *IDSet, old *scene.Scene) *scene.Scene {
	b := scene.NewBuilder()
	textures := make(map[NodeID]int)
	materials := make(map[NodeID]int)

	resolve := func(ref NodeID, fallback common.Vec3) int {
		if i, ok := textures[ref]; ok && ref != NoNode {
			return i
		}
		return b.AddTexture(scene.NewTextureData(texture.NewFromColor(fallback)))
	}

	for _, id := range order.Slice() {
		switch n := g.nodes[id].(type) {
		case *TextureNode:
			textures[id] = g.compileTexture(b, old, n)
		case MaterialNode:
			materials[id] = b.AddMaterial(n.compile(resolve))
		case *SphereNode:
			var idx int
			if n.Material.IsExternal() {
				mi, ok := materials[n.Material.External()]
				if !ok {
					g.compileLog.Warningf("sphere %d: material %d is gone, using the default", id, n.Material.External())
					mi = b.AddMaterial(NewLambertianNode().compile(resolve))
				}
				idx = mi
			} else {
				idx = b.AddMaterial(n.Material.Internal().compile(resolve))
			}
			b.AddSphere(scene.NewSphere(n.Center, n.Radius, uint32(idx)))
		}
	}
	return b.Build()
}

func (g *Graph) compileTexture(b *scene.Builder, old *scene.Scene, n *TextureNode) int {
	if i, ok := b.FindTexture(n.Path, n.Scale); ok {
		return i
	}
	if td, ok := old.TakeTexture(n.Path, n.Scale); ok {
		return b.AddTexture(td)
	}

	tex, err := g.loader.LoadScaled(n.Path, n.Scale)
	if err != nil {
		g.compileLog.Warningf("texture %q: %v", n.Path, err)
		return b.AddTexture(scene.NewFileTextureData(texture.NewFromColor(missingTexture), n.Path, n.Scale))
	}
	return b.AddTexture(scene.NewFileTextureData(tex, n.Path, n.Scale))
}
