package graph

import (
	"github.com/Carmen-Shannon/reactor/common"
)

// NodeID identifies a node within its Graph. Ids start at 1 and are never reused.
type NodeID uint64

// NoNode is the zero NodeID, used for unconnected reference pins.
const NoNode NodeID = 0

// OutPin addresses an output pin.
type OutPin struct {
	Node   NodeID
	Output int
}

// InPin addresses an input pin.
type InPin struct {
	Node  NodeID
	Input int
}

// Wire connects an output pin to an input pin.
type Wire struct {
	From OutPin
	To   InPin
}

// Node is one of the node kinds defined in this package.
type Node interface {
	// Name returns the display name of the node kind.
	Name() string
	// Inputs returns the capability flags of every input pin.
	Inputs() []NodeFlags
	// Outputs returns the capability flags of every output pin.
	Outputs() []NodeFlags

	node()
}

// inputHandler is implemented by nodes with input pins.
type inputHandler interface {
	// connectInput pulls the value or reference available at source into pin and reports whether the node changed.
	connectInput(g *Graph, self NodeID, pin int, source NodeID) bool
	// disconnectInput clears pin after its wire is removed and reports whether the node changed.
	disconnectInput(g *Graph, self NodeID, pin int) bool
}

// contributor is implemented by nodes whose referenced inputs take part in a traversal.
type contributor interface {
	// contributing returns the referenced node ids in traversal order. NoNode entries are skipped.
	contributing() []NodeID
}

// subscribable is implemented by nodes that publish events.
type subscribable interface {
	subscription() *Subscription
}

// Get returns the node with the given id as a T.
//
// Parameters:
//   - g: the graph
//   - id: the node id
//
// Returns:
//   - T: the node
//   - bool: false if the node is missing or not a T
func Get[T Node](g *Graph, id NodeID) (T, bool) {
	n, ok := g.nodes[id].(T)
	return n, ok
}

// lightGray is the default albedo of a lambertian material.
var lightGray = common.Vec3{160.0 / 255, 160.0 / 255, 160.0 / 255}

func setFloat(dst *float32, v float32) bool {
	if *dst == v {
		return false
	}
	*dst = v
	return true
}

func setVec(dst *common.Vec3, v common.Vec3) bool {
	if *dst == v {
		return false
	}
	*dst = v
	return true
}

func setID(dst *NodeID, v NodeID) bool {
	if *dst == v {
		return false
	}
	*dst = v
	return true
}

// number reads a scalar from a source node.
func (g *Graph) number(id NodeID) (float32, bool) {
	if n, ok := g.nodes[id].(*NumberNode); ok {
		return n.Value, true
	}
	return 0, false
}

// vector reads a vector from a source node. Numbers broadcast and colors pass their channels through.
func (g *Graph) vector(id NodeID) (common.Vec3, bool) {
	switch n := g.nodes[id].(type) {
	case *NumberNode:
		return common.Vec3{n.Value, n.Value, n.Value}, true
	case *VectorNode:
		return n.Value, true
	case *ColorNode:
		return n.Value, true
	}
	return common.Vec3{}, false
}

// color reads a color from a source node. Numbers become gray.
func (g *Graph) color(id NodeID) (common.Vec3, bool) {
	switch n := g.nodes[id].(type) {
	case *NumberNode:
		return common.Vec3{n.Value, n.Value, n.Value}, true
	case *VectorNode:
		return n.Value, true
	case *ColorNode:
		return n.Value, true
	}
	return common.Vec3{}, false
}

// pullNumber copies a scalar from source into dst.
func (g *Graph) pullNumber(dst *float32, source NodeID) bool {
	v, ok := g.number(source)
	return ok && setFloat(dst, v)
}

// pullVector copies a vector from source into dst.
func (g *Graph) pullVector(dst *common.Vec3, source NodeID) bool {
	v, ok := g.vector(source)
	return ok && setVec(dst, v)
}

// pullColor copies a color from source into dst.
func (g *Graph) pullColor(dst *common.Vec3, source NodeID) bool {
	v, ok := g.color(source)
	return ok && setVec(dst, v)
}
