package graph

import "github.com/Carmen-Shannon/reactor/common"

// valueNode is implemented by nodes that hold a plain value and push it through their outgoing wires.
type valueNode interface {
	Node
	value()
}

// NumberNode holds a scalar.
type NumberNode struct {
	Value float32
}

// StringNode holds a string.
type StringNode struct {
	Value string
}

// VectorNode holds a 3D vector.
type VectorNode struct {
	Value common.Vec3
}

// ColorNode holds a linear RGB color.
type ColorNode struct {
	Value common.Vec3
}

func (*NumberNode) Name() string { return "Number" }
func (*NumberNode) Inputs() []NodeFlags { return nil }
func (*NumberNode) Outputs() []NodeFlags { return []NodeFlags{FlagNumber} }
func (*StringNode) Name() string { return "String" }
func (*StringNode) Inputs() []NodeFlags { return nil }
func (*StringNode) Outputs() []NodeFlags { return []NodeFlags{FlagString} }
func (*VectorNode) Name() string { return "Vector" }
func (*VectorNode) Inputs() []NodeFlags { return nil }
func (*VectorNode) Outputs() []NodeFlags { return []NodeFlags{FlagVector} }
func (*ColorNode) Name() string { return "Color" }
func (*ColorNode) Inputs() []NodeFlags { return nil }
func (*ColorNode) Outputs() []NodeFlags { return []NodeFlags{FlagColor} }

func (*NumberNode) node() {}
func (*StringNode) node() {}
func (*VectorNode) node() {}
func (*ColorNode) node() {}
func (*NumberNode) value() {}
func (*StringNode) value() {}
func (*VectorNode) value() {}
func (*ColorNode) value() {}

// SetNumber replaces the value of a number node and pushes it downstream.
//
// Returns:
//   - error: ErrNodeNotFound or ErrWrongKind
func (g *Graph) SetNumber(id NodeID, v float32) error {
	return update(g, id, func(n *NumberNode) bool { return setFloat(&n.Value, v) })
}

// SetString replaces the value of a string node.
func (g *Graph) SetString(id NodeID, v string) error {
	return update(g, id, func(n *StringNode) bool {
		if n.Value == v {
			return false
		}
		n.Value = v
		return true
	})
}

// SetVector replaces the value of a vector node and pushes it downstream.
func (g *Graph) SetVector(id NodeID, v common.Vec3) error {
	return update(g, id, func(n *VectorNode) bool { return setVec(&n.Value, v) })
}

// SetColor replaces the value of a color node and pushes it downstream.
func (g *Graph) SetColor(id NodeID, v common.Vec3) error {
	return update(g, id, func(n *ColorNode) bool { return setVec(&n.Value, v) })
}
