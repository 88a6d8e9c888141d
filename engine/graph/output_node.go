package graph

import "sort"

// OutputNode shows a render in a named target such as a window.
type OutputNode struct {
	Target string
	Source NodeID
}

// NewOutputNode returns an unconnected output for target.
func NewOutputNode(target string) *OutputNode {
	return &OutputNode{Target: target}
}

func (*OutputNode) Name() string { return "Output" }
func (*OutputNode) Inputs() []NodeFlags { return []NodeFlags{FlagRenders} }
func (*OutputNode) Outputs() []NodeFlags { return nil }
func (*OutputNode) node() {}
func (n *OutputNode) contributing() []NodeID { return []NodeID{n.Source} }

func (n *OutputNode) connectInput(_ *Graph, _ NodeID, pin int, source NodeID) bool {
	if pin != 0 {
		return false
	}
	return setID(&n.Source, source)
}

func (n *OutputNode) disconnectInput(_ *Graph, _ NodeID, pin int) bool {
	if pin != 0 {
		return false
	}
	return setID(&n.Source, NoNode)
}

// Outputs returns the ids of every output node in ascending order.
func (g *Graph) Outputs() []NodeID {
	var ids []NodeID
	for id, n := range g.nodes {
		if _, ok := n.(*OutputNode); ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FindOutput returns the first output node showing target. An empty target matches any output.
func (g *Graph) FindOutput(target string) (NodeID, bool) {
	for _, id := range g.Outputs() {
		if out := g.nodes[id].(*OutputNode); target == "" || out.Target == target {
			return id, true
		}
	}
	return NoNode, false
}

// OutputSource returns the render node wired into the output node id.
func (g *Graph) OutputSource(id NodeID) (NodeID, bool) {
	out, ok := Get[*OutputNode](g, id)
	if !ok || out.Source == NoNode {
		return NoNode, false
	}
	return out.Source, true
}
