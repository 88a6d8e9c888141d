package graph

// IDSet is an insertion-ordered set of node ids.
type IDSet struct {
	order []NodeID
	index map[NodeID]struct{}
}

// NewIDSet returns an empty IDSet.
func NewIDSet() *IDSet {
	return &IDSet{index: make(map[NodeID]struct{})}
}

// Insert adds id if it is not already present.
//
// Returns:
//   - bool: true if id was added
func (s *IDSet) Insert(id NodeID) bool {
	if s.Contains(id) {
		return false
	}
	if s.index == nil {
		s.index = make(map[NodeID]struct{})
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Contains reports whether id is in the set.
func (s *IDSet) Contains(id NodeID) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

// Slice returns the ids in insertion order.
func (s *IDSet) Slice() []NodeID {
	if s == nil {
		return nil
	}
	return append([]NodeID(nil), s.order...)
}

// Len returns the number of ids.
func (s *IDSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// collector is the state of one traversal.
type collector struct {
	g         *Graph
	predicate func(Node) bool
	dest      *IDSet
	visited   map[NodeID]bool
}

// visit walks id and its contributing inputs. Dependencies land in dest before the nodes that use them.
// A node already visited in this traversal is skipped, which also cuts reference cycles.
func (c *collector) visit(id NodeID) {
	if id == NoNode || c.visited[id] {
		return
	}
	node, ok := c.g.nodes[id]
	if !ok {
		return
	}
	c.visited[id] = true

	insert := c.predicate(node)
	c.g.handleMessage(id, collectMessage{c: c})
	if insert {
		c.dest.Insert(id)
	}
}

// Collect walks the contributing inputs reachable from root and returns, in dependency order, every visited node
// for which predicate holds. root itself is included when it matches. A missing root yields an empty set.
//
// Parameters:
//   - root: the traversal start
//   - predicate: selects the nodes to return
//
// Returns:
//   - *IDSet: the matching node ids
func (g *Graph) Collect(root NodeID, predicate func(Node) bool) *IDSet {
	dest := NewIDSet()
	g.CollectInto(root, predicate, dest)
	return dest
}

// CollectInto is Collect appending to an existing set. Ids already in dest keep their position.
func (g *Graph) CollectInto(root NodeID, predicate func(Node) bool, dest *IDSet) {
	c := &collector{
		g:         g,
		predicate: predicate,
		dest:      dest,
		visited:   make(map[NodeID]bool),
	}
	c.visit(root)
}
