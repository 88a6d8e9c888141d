package graph

// CollectionNode groups any number of nodes. It always exposes one free input pin after its slots, and
// connecting into a slot inserts before it.
type CollectionNode struct {
	subject
	Nodes []NodeID
}

// NewCollectionNode returns an empty collection.
func NewCollectionNode() *CollectionNode {
	return &CollectionNode{}
}

func (*CollectionNode) Name() string { return "Collection" }

func (n *CollectionNode) Inputs() []NodeFlags {
	pins := make([]NodeFlags, len(n.Nodes)+1)
	for i := range pins {
		pins[i] = FlagAll
	}
	return pins
}

func (*CollectionNode) Outputs() []NodeFlags { return []NodeFlags{FlagCollection} }
func (*CollectionNode) node() {}

func (n *CollectionNode) contributing() []NodeID {
	return n.Nodes
}

func (n *CollectionNode) connectInput(_ *Graph, _ NodeID, pin int, source NodeID) bool {
	if pin < 0 || pin > len(n.Nodes) {
		return false
	}
	n.Nodes = append(n.Nodes, NoNode)
	copy(n.Nodes[pin+1:], n.Nodes[pin:])
	n.Nodes[pin] = source
	return true
}

func (n *CollectionNode) disconnectInput(_ *Graph, _ NodeID, pin int) bool {
	if pin < 0 || pin >= len(n.Nodes) {
		return false
	}
	n.Nodes = append(n.Nodes[:pin], n.Nodes[pin+1:]...)
	return true
}
