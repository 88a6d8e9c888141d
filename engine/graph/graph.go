// Package graph is the node graph edited by the user: typed pins, wires, change notification and the scene compiler
// that turns the reachable subgraph of a scene node into a render-ready scene.Scene.
package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/reactor/engine/texture"
	"github.com/Carmen-Shannon/reactor/log"
)

var (
	// ErrNodeNotFound is returned when an operation names a node id the graph does not hold.
	ErrNodeNotFound = errors.New("graph: node not found")
	// ErrPinOutOfRange is returned when a pin index exceeds the node's pin count.
	ErrPinOutOfRange = errors.New("graph: pin out of range")
	// ErrIncompatiblePins is returned by Connect when the output and input flags share no bit.
	ErrIncompatiblePins = errors.New("graph: incompatible pins")
	// ErrWireNotFound is returned by Disconnect when the wire does not exist.
	ErrWireNotFound = errors.New("graph: wire not found")
	// ErrWrongKind is returned when a node is not of the kind an operation requires.
	ErrWrongKind = errors.New("graph: wrong node kind")
)

type notifyKey struct {
	subject NodeID
	event   Event
}

// Graph owns the nodes and wires of one editing session. It is not safe for concurrent use.
type Graph struct {
	nodes       map[NodeID]Node
	nextID      NodeID
	wires       map[InPin]OutPin
	loader      texture.Loader
	logger      log.Logger
	compileLog  log.Logger
	dispatching map[notifyKey]bool
}

// NewGraph creates an empty Graph. Textures are loaded straight from disk unless WithTextureLoader is given.
//
// Parameters:
//   - options: functional options for configuring the graph
//
// Returns:
//   - *Graph: the new graph
func NewGraph(options ...GraphBuilderOption) *Graph {
	g := &Graph{
		nodes:       make(map[NodeID]Node),
		nextID:      1,
		wires:       make(map[InPin]OutPin),
		loader:      texture.FileLoader,
		logger:      log.New("graph"),
		compileLog:  log.New("compiler"),
		dispatching: make(map[notifyKey]bool),
	}

	for _, option := range options {
		option(g)
	}
	return g
}

// Add inserts a node and returns its id.
func (g *Graph) Add(n Node) NodeID {
	id := g.nextID
	g.nextID++
	g.nodes[id] = n
	g.logger.Debugf("added %s node %d", n.Name(), id)
	return id
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns every node id in ascending order.
func (g *Graph) Nodes() []NodeID {
	ids := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Wires returns every wire ordered by target node then target pin.
func (g *Graph) Wires() []Wire {
	wires := make([]Wire, 0, len(g.wires))
	for to, from := range g.wires {
		wires = append(wires, Wire{From: from, To: to})
	}
	sortWires(wires)
	return wires
}

// InputOf returns the output pin wired into to.
func (g *Graph) InputOf(to InPin) (OutPin, bool) {
	from, ok := g.wires[to]
	return from, ok
}

func sortWires(wires []Wire) {
	sort.Slice(wires, func(i, j int) bool {
		if wires[i].To.Node != wires[j].To.Node {
			return wires[i].To.Node < wires[j].To.Node
		}
		return wires[i].To.Input < wires[j].To.Input
	})
}

func (g *Graph) lookup(id NodeID) (Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return n, nil
}

// Connect wires an output pin into an input pin. A wire already feeding to is disconnected first.
// Connecting into a collection inserts a new slot at to.Input and shifts the later slots up.
//
// Parameters:
//   - from: the source output pin
//   - to: the target input pin
//
// Returns:
//   - error: ErrNodeNotFound, ErrPinOutOfRange or ErrIncompatiblePins
func (g *Graph) Connect(from OutPin, to InPin) error {
	src, err := g.lookup(from.Node)
	if err != nil {
		return err
	}
	dst, err := g.lookup(to.Node)
	if err != nil {
		return err
	}

	outputs, inputs := src.Outputs(), dst.Inputs()
	if from.Output < 0 || from.Output >= len(outputs) {
		return fmt.Errorf("%w: %s output %d of %d", ErrPinOutOfRange, src.Name(), from.Output, len(outputs))
	}
	if to.Input < 0 || to.Input >= len(inputs) {
		return fmt.Errorf("%w: %s input %d of %d", ErrPinOutOfRange, dst.Name(), to.Input, len(inputs))
	}
	if from.Node == to.Node {
		return fmt.Errorf("%w: node %d wired into itself", ErrIncompatiblePins, from.Node)
	}
	if !IsCompatible(outputs[from.Output], inputs[to.Input]) {
		return fmt.Errorf("%w: %s -> %s", ErrIncompatiblePins, outputs[from.Output], inputs[to.Input])
	}

	if _, isCollection := dst.(*CollectionNode); isCollection {
		g.shiftInputs(to.Node, to.Input, 1)
	} else if old, ok := g.wires[to]; ok {
		if old == from {
			return nil
		}
		if err := g.Disconnect(old, to); err != nil {
			return err
		}
	}

	g.wires[to] = from
	g.handleMessage(to.Node, connectMessage{pin: to.Input, source: from.Node})
	g.logger.Debugf("connected %d:%d -> %d:%d", from.Node, from.Output, to.Node, to.Input)
	return nil
}

// Disconnect removes the wire from -> to. Disconnecting a collection slot removes the slot.
//
// Returns:
//   - error: ErrWireNotFound if the wire does not exist
func (g *Graph) Disconnect(from OutPin, to InPin) error {
	if cur, ok := g.wires[to]; !ok || cur != from {
		return fmt.Errorf("%w: %d:%d -> %d:%d", ErrWireNotFound, from.Node, from.Output, to.Node, to.Input)
	}

	delete(g.wires, to)
	g.handleMessage(to.Node, disconnectMessage{pin: to.Input})
	if _, isCollection := g.nodes[to.Node].(*CollectionNode); isCollection {
		g.shiftInputs(to.Node, to.Input+1, -1)
	}
	g.logger.Debugf("disconnected %d:%d -> %d:%d", from.Node, from.Output, to.Node, to.Input)
	return nil
}

// shiftInputs moves every wire into node at pin >= from by delta.
func (g *Graph) shiftInputs(node NodeID, from, delta int) {
	var moved []Wire
	for to, out := range g.wires {
		if to.Node == node && to.Input >= from {
			moved = append(moved, Wire{From: out, To: to})
		}
	}
	for _, w := range moved {
		delete(g.wires, w.To)
	}
	for _, w := range moved {
		g.wires[InPin{Node: node, Input: w.To.Input + delta}] = w.From
	}
}

// RemoveNode disconnects every wire touching id and drops the node. Subscriptions the node held on other nodes
// are left behind and removed the next time they fire.
//
// Returns:
//   - error: ErrNodeNotFound if id is not in the graph
func (g *Graph) RemoveNode(id NodeID) error {
	n, err := g.lookup(id)
	if err != nil {
		return err
	}

	var touching []Wire
	for to, from := range g.wires {
		if to.Node == id || from.Node == id {
			touching = append(touching, Wire{From: from, To: to})
		}
	}
	// Highest pin first so collection slot removal does not shift wires still to be removed.
	sort.Slice(touching, func(i, j int) bool {
		if touching[i].To.Node != touching[j].To.Node {
			return touching[i].To.Node < touching[j].To.Node
		}
		return touching[i].To.Input > touching[j].To.Input
	})
	for _, w := range touching {
		if err := g.Disconnect(w.From, w.To); err != nil {
			return err
		}
	}

	delete(g.nodes, id)
	g.logger.Debugf("removed %s node %d", n.Name(), id)
	return nil
}

// outgoing returns every wire leaving id, ordered by target.
func (g *Graph) outgoing(id NodeID) []Wire {
	var wires []Wire
	for to, from := range g.wires {
		if from.Node == id {
			wires = append(wires, Wire{From: from, To: to})
		}
	}
	sortWires(wires)
	return wires
}

// Update runs fn on the node and, when fn reports a change, pushes value nodes through their outgoing wires and
// publishes EventOnChange.
//
// Parameters:
//   - id: the node to edit
//   - fn: edits the node and reports whether anything changed
//
// Returns:
//   - error: ErrNodeNotFound if id is not in the graph
func (g *Graph) Update(id NodeID, fn func(Node) bool) error {
	n, err := g.lookup(id)
	if err != nil {
		return err
	}
	if fn(n) {
		g.changed(id, n)
	}
	return nil
}

// update is Update restricted to nodes of kind T.
func update[T Node](g *Graph, id NodeID, fn func(T) bool) error {
	n, err := g.lookup(id)
	if err != nil {
		return err
	}
	t, ok := n.(T)
	if !ok {
		return fmt.Errorf("%w: node %d is a %s", ErrWrongKind, id, n.Name())
	}
	if fn(t) {
		g.changed(id, n)
	}
	return nil
}

func (g *Graph) changed(id NodeID, n Node) {
	if _, ok := n.(valueNode); ok {
		for _, w := range g.outgoing(id) {
			g.handleMessage(w.To.Node, refreshMessage{pin: w.To.Input, source: id})
		}
	}
	g.Notify(id, EventOnChange)
}

// Subscribe registers cb on subject for event on behalf of subscriber.
//
// Returns:
//   - bool: false if subject is missing or publishes no events
func (g *Graph) Subscribe(subject, subscriber NodeID, event Event, cb EventCallback) bool {
	return g.handleMessage(subject, subscribeMessage{subscriber: subscriber, event: event, callback: cb})
}

// Unsubscribe removes the callback of subscriber on subject. Removing an absent subscription is a no-op.
func (g *Graph) Unsubscribe(subject, subscriber NodeID, event Event) {
	g.handleMessage(subject, unsubscribeMessage{subscriber: subscriber, event: event})
}

// HasSubscription reports whether subscriber listens to event on subject.
func (g *Graph) HasSubscription(subject, subscriber NodeID, event Event) bool {
	return g.handleMessage(subject, hasSubscriptionMessage{subscriber: subscriber, event: event})
}

// Notify invokes every subscriber of event on subject. A Notify for the same subject and event issued while that
// dispatch is still running is dropped.
func (g *Graph) Notify(subject NodeID, event Event) {
	s, ok := g.nodes[subject].(subscribable)
	if !ok {
		return
	}
	call := s.subscription().Caller(event)
	if call == nil {
		return
	}

	key := notifyKey{subject: subject, event: event}
	if g.dispatching[key] {
		g.logger.Debugf("dropped re-entrant %s from node %d", event, subject)
		return
	}
	g.dispatching[key] = true
	defer delete(g.dispatching, key)

	call(g, subject)
}
