package graph

import (
	"github.com/Carmen-Shannon/reactor/common"
	"github.com/Carmen-Shannon/reactor/engine/scene"
)

// textureResolver returns the index of the compiled texture node ref, or of a synthesized 1x1 texture holding
// fallback when ref is unconnected or not compiled.
type textureResolver func(ref NodeID, fallback common.Vec3) int

// MaterialNode is implemented by every material kind.
type MaterialNode interface {
	Node
	subscribable

	// TextureRef returns the texture node wired into the material, or NoNode.
	TextureRef() NodeID

	compile(resolve textureResolver) scene.Material
}

// subject gives a node its own Subscription.
type subject struct {
	subs Subscription
}

func (s *subject) subscription() *Subscription {
	return &s.subs
}

// LambertianNode is a diffuse material.
type LambertianNode struct {
	subject
	Albedo  common.Vec3
	Texture NodeID
}

// NewLambertianNode returns a light gray lambertian.
func NewLambertianNode() *LambertianNode {
	return &LambertianNode{Albedo: lightGray}
}

func (*LambertianNode) Name() string { return "Lambertian" }

func (*LambertianNode) Inputs() []NodeFlags {
	return []NodeFlags{FlagTypicalVectorInput, FlagTexture}
}

func (*LambertianNode) Outputs() []NodeFlags { return []NodeFlags{FlagMaterialLambert} }
func (n *LambertianNode) TextureRef() NodeID { return n.Texture }
func (n *LambertianNode) contributing() []NodeID { return []NodeID{n.Texture} }
func (*LambertianNode) node() {}

func (n *LambertianNode) connectInput(g *Graph, _ NodeID, pin int, source NodeID) bool {
	switch pin {
	case 0:
		return g.pullColor(&n.Albedo, source)
	case 1:
		return connectTexture(g, &n.Texture, source)
	}
	return false
}

func (n *LambertianNode) disconnectInput(_ *Graph, _ NodeID, pin int) bool {
	if pin == 1 {
		return setID(&n.Texture, NoNode)
	}
	return false
}

func (n *LambertianNode) compile(resolve textureResolver) scene.Material {
	return scene.Lambertian(resolve(n.Texture, n.Albedo))
}

// MetalNode is a reflective material.
type MetalNode struct {
	subject
	Albedo  common.Vec3
	Fuzz    float32
	Texture NodeID
}

// NewMetalNode returns a black, perfectly smooth metal.
func NewMetalNode() *MetalNode {
	return &MetalNode{}
}

func (*MetalNode) Name() string { return "Metal" }

func (*MetalNode) Inputs() []NodeFlags {
	return []NodeFlags{FlagTypicalVectorInput, FlagTypicalNumberInput, FlagTexture}
}

func (*MetalNode) Outputs() []NodeFlags { return []NodeFlags{FlagMaterialMetal} }
func (n *MetalNode) TextureRef() NodeID { return n.Texture }
func (n *MetalNode) contributing() []NodeID { return []NodeID{n.Texture} }
func (*MetalNode) node() {}

func (n *MetalNode) connectInput(g *Graph, _ NodeID, pin int, source NodeID) bool {
	switch pin {
	case 0:
		return g.pullColor(&n.Albedo, source)
	case 1:
		return g.pullNumber(&n.Fuzz, source)
	case 2:
		return connectTexture(g, &n.Texture, source)
	}
	return false
}

func (n *MetalNode) disconnectInput(_ *Graph, _ NodeID, pin int) bool {
	if pin == 2 {
		return setID(&n.Texture, NoNode)
	}
	return false
}

func (n *MetalNode) compile(resolve textureResolver) scene.Material {
	return scene.Metal(resolve(n.Texture, n.Albedo), n.Fuzz)
}

// DielectricNode is a refractive material.
type DielectricNode struct {
	subject
	RefractionIndex float32
}

// NewDielectricNode returns a dielectric with a zero refraction index.
func NewDielectricNode() *DielectricNode {
	return &DielectricNode{}
}

func (*DielectricNode) Name() string { return "Dielectric" }
func (*DielectricNode) Inputs() []NodeFlags { return []NodeFlags{FlagTypicalNumberInput} }
func (*DielectricNode) Outputs() []NodeFlags { return []NodeFlags{FlagMaterialDielectric} }
func (*DielectricNode) TextureRef() NodeID { return NoNode }
func (*DielectricNode) node() {}

func (n *DielectricNode) connectInput(g *Graph, _ NodeID, pin int, source NodeID) bool {
	if pin == 0 {
		return g.pullNumber(&n.RefractionIndex, source)
	}
	return false
}

func (*DielectricNode) disconnectInput(*Graph, NodeID, int) bool { return false }

func (n *DielectricNode) compile(textureResolver) scene.Material {
	return scene.Dielectric(n.RefractionIndex)
}

// EmissiveNode is a light emitting material. Emit is used as is, so values above 1 make brighter lights.
type EmissiveNode struct {
	subject
	Emit    common.Vec3
	Texture NodeID
}

// NewEmissiveNode returns an emissive material that emits nothing.
func NewEmissiveNode() *EmissiveNode {
	return &EmissiveNode{}
}

func (*EmissiveNode) Name() string { return "Emissive" }

func (*EmissiveNode) Inputs() []NodeFlags {
	return []NodeFlags{FlagTypicalVectorInput, FlagTexture}
}

func (*EmissiveNode) Outputs() []NodeFlags { return []NodeFlags{FlagMaterialEmissive} }
func (n *EmissiveNode) TextureRef() NodeID { return n.Texture }
func (n *EmissiveNode) contributing() []NodeID { return []NodeID{n.Texture} }
func (*EmissiveNode) node() {}

func (n *EmissiveNode) connectInput(g *Graph, _ NodeID, pin int, source NodeID) bool {
	switch pin {
	case 0:
		return g.pullVector(&n.Emit, source)
	case 1:
		return connectTexture(g, &n.Texture, source)
	}
	return false
}

func (n *EmissiveNode) disconnectInput(_ *Graph, _ NodeID, pin int) bool {
	if pin == 1 {
		return setID(&n.Texture, NoNode)
	}
	return false
}

func (n *EmissiveNode) compile(resolve textureResolver) scene.Material {
	return scene.Emissive(resolve(n.Texture, n.Emit))
}

// CheckerboardNode alternates between two colors.
type CheckerboardNode struct {
	subject
	Even common.Vec3
	Odd  common.Vec3
}

// NewCheckerboardNode returns a black and white checkerboard.
func NewCheckerboardNode() *CheckerboardNode {
	return &CheckerboardNode{Odd: common.Vec3{1, 1, 1}}
}

func (*CheckerboardNode) Name() string { return "Checkerboard" }

func (*CheckerboardNode) Inputs() []NodeFlags {
	return []NodeFlags{FlagTypicalVectorInput, FlagTypicalVectorInput}
}

func (*CheckerboardNode) Outputs() []NodeFlags { return []NodeFlags{FlagMaterialCheckerboard} }
func (*CheckerboardNode) TextureRef() NodeID { return NoNode }
func (*CheckerboardNode) node() {}

func (n *CheckerboardNode) connectInput(g *Graph, _ NodeID, pin int, source NodeID) bool {
	switch pin {
	case 0:
		return g.pullColor(&n.Even, source)
	case 1:
		return g.pullColor(&n.Odd, source)
	}
	return false
}

func (*CheckerboardNode) disconnectInput(*Graph, NodeID, int) bool { return false }

func (n *CheckerboardNode) compile(resolve textureResolver) scene.Material {
	return scene.Checkerboard(resolve(NoNode, n.Even), resolve(NoNode, n.Odd))
}

func connectTexture(g *Graph, dst *NodeID, source NodeID) bool {
	if _, ok := Get[*TextureNode](g, source); !ok {
		return false
	}
	return setID(dst, source)
}

// SetAlbedo sets the base color of a lambertian or metal node.
//
// Returns:
//   - error: ErrNodeNotFound, or ErrWrongKind for other kinds
func (g *Graph) SetAlbedo(id NodeID, albedo common.Vec3) error {
	return update(g, id, func(n MaterialNode) bool {
		switch m := n.(type) {
		case *LambertianNode:
			return setVec(&m.Albedo, albedo)
		case *MetalNode:
			return setVec(&m.Albedo, albedo)
		}
		return false
	})
}

// SetFuzz sets the roughness of a metal node.
func (g *Graph) SetFuzz(id NodeID, fuzz float32) error {
	return update(g, id, func(n *MetalNode) bool { return setFloat(&n.Fuzz, fuzz) })
}

// SetRefractionIndex sets the index of refraction of a dielectric node.
func (g *Graph) SetRefractionIndex(id NodeID, ior float32) error {
	return update(g, id, func(n *DielectricNode) bool { return setFloat(&n.RefractionIndex, ior) })
}

// SetEmit sets the emitted radiance of an emissive node.
func (g *Graph) SetEmit(id NodeID, emit common.Vec3) error {
	return update(g, id, func(n *EmissiveNode) bool { return setVec(&n.Emit, emit) })
}

// SetCheckerColors sets both colors of a checkerboard node.
func (g *Graph) SetCheckerColors(id NodeID, even, odd common.Vec3) error {
	return update(g, id, func(n *CheckerboardNode) bool {
		a := setVec(&n.Even, even)
		b := setVec(&n.Odd, odd)
		return a || b
	})
}
