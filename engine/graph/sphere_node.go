package graph

import (
	"github.com/Carmen-Shannon/reactor/common"
)

// MaterialInput is the material of a sphere: either a material owned by the sphere or a material node wired
// into it.
type MaterialInput struct {
	internal MaterialNode
	external NodeID
}

// InternalMaterial returns a MaterialInput owning m.
func InternalMaterial(m MaterialNode) MaterialInput {
	return MaterialInput{internal: m}
}

// ExternalMaterial returns a MaterialInput referencing the material node id.
func ExternalMaterial(id NodeID) MaterialInput {
	return MaterialInput{external: id}
}

// IsExternal reports whether the material is a reference to another node.
func (m MaterialInput) IsExternal() bool {
	return m.external != NoNode
}

// External returns the referenced material node, or NoNode.
func (m MaterialInput) External() NodeID {
	return m.external
}

// Internal returns the owned material, or nil for an external reference.
func (m MaterialInput) Internal() MaterialNode {
	if m.IsExternal() {
		return nil
	}
	return m.internal
}

// SphereNode is a sphere primitive.
type SphereNode struct {
	subject
	Center   common.Vec3
	Radius   float32
	Material MaterialInput
}

// NewSphereNode returns a unit sphere at the origin with an internal light gray lambertian.
func NewSphereNode() *SphereNode {
	return &SphereNode{
		Radius:   1,
		Material: InternalMaterial(NewLambertianNode()),
	}
}

func (*SphereNode) Name() string { return "Sphere" }

func (*SphereNode) Inputs() []NodeFlags {
	return []NodeFlags{FlagTypicalVectorInput, FlagTypicalNumberInput, FlagMaterials}
}

func (*SphereNode) Outputs() []NodeFlags { return []NodeFlags{FlagPrimitiveSphere} }
func (*SphereNode) node() {}

func (n *SphereNode) contributing() []NodeID {
	if n.Material.IsExternal() {
		return []NodeID{n.Material.External()}
	}
	return nil
}

func (n *SphereNode) connectInput(g *Graph, _ NodeID, pin int, source NodeID) bool {
	switch pin {
	case 0:
		return g.pullVector(&n.Center, source)
	case 1:
		return g.pullNumber(&n.Radius, source)
	case 2:
		if _, ok := Get[MaterialNode](g, source); !ok || n.Material.External() == source {
			return false
		}
		n.Material = ExternalMaterial(source)
		return true
	}
	return false
}

func (n *SphereNode) disconnectInput(_ *Graph, _ NodeID, pin int) bool {
	if pin == 2 && n.Material.IsExternal() {
		n.Material = InternalMaterial(NewLambertianNode())
		return true
	}
	return false
}

// SetCenter moves a sphere node.
//
// Returns:
//   - error: ErrNodeNotFound or ErrWrongKind
func (g *Graph) SetCenter(id NodeID, center common.Vec3) error {
	return update(g, id, func(n *SphereNode) bool { return setVec(&n.Center, center) })
}

// SetRadius resizes a sphere node.
func (g *Graph) SetRadius(id NodeID, radius float32) error {
	return update(g, id, func(n *SphereNode) bool { return setFloat(&n.Radius, radius) })
}

// SetInternalMaterial replaces the owned material of a sphere node. A sphere with a material node wired into it
// keeps the reference.
func (g *Graph) SetInternalMaterial(id NodeID, m MaterialNode) error {
	return update(g, id, func(n *SphereNode) bool {
		if n.Material.IsExternal() || m == nil {
			return false
		}
		n.Material = InternalMaterial(m)
		return true
	})
}
