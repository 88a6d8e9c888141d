package graph

import (
	"testing"

	"github.com/Carmen-Shannon/reactor/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRejectsInvalidWires(t *testing.T) {
	g := NewGraph()
	num := g.Add(&NumberNode{Value: 2})
	sphere := g.Add(NewSphereNode())

	tests := []struct {
		name string
		from OutPin
		to   InPin
		want error
	}{
		{"missing source", OutPin{99, 0}, InPin{sphere, 1}, ErrNodeNotFound},
		{"missing target", OutPin{num, 0}, InPin{99, 0}, ErrNodeNotFound},
		{"output out of range", OutPin{num, 1}, InPin{sphere, 1}, ErrPinOutOfRange},
		{"input out of range", OutPin{num, 0}, InPin{sphere, 3}, ErrPinOutOfRange},
		{"number into material", OutPin{num, 0}, InPin{sphere, 2}, ErrIncompatiblePins},
		{"self wire", OutPin{sphere, 0}, InPin{sphere, 2}, ErrIncompatiblePins},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, g.Connect(tt.from, tt.to), tt.want)
		})
	}
	assert.Empty(t, g.Wires())
}

func TestValuesFlowThroughWires(t *testing.T) {
	g := NewGraph()
	radius := g.Add(&NumberNode{Value: 2})
	center := g.Add(&NumberNode{Value: 3})
	id := g.Add(NewSphereNode())
	sphere, _ := Get[*SphereNode](g, id)

	require.NoError(t, g.Connect(OutPin{radius, 0}, InPin{id, 1}))
	require.NoError(t, g.Connect(OutPin{center, 0}, InPin{id, 0}))
	assert.Equal(t, float32(2), sphere.Radius)
	assert.Equal(t, common.Vec3{3, 3, 3}, sphere.Center)

	require.NoError(t, g.SetNumber(radius, 5))
	assert.Equal(t, float32(5), sphere.Radius)

	require.NoError(t, g.Disconnect(OutPin{radius, 0}, InPin{id, 1}))
	assert.Equal(t, float32(5), sphere.Radius)
	require.NoError(t, g.SetNumber(radius, 7))
	assert.Equal(t, float32(5), sphere.Radius)
}

func TestConnectReplacesExistingWire(t *testing.T) {
	g := NewGraph()
	a := g.Add(&NumberNode{Value: 1})
	b := g.Add(&NumberNode{Value: 4})
	id := g.Add(NewTextureNode("x.png"))

	require.NoError(t, g.Connect(OutPin{a, 0}, InPin{id, 0}))
	require.NoError(t, g.Connect(OutPin{b, 0}, InPin{id, 0}))

	from, ok := g.InputOf(InPin{id, 0})
	require.True(t, ok)
	assert.Equal(t, OutPin{b, 0}, from)
	assert.Len(t, g.Wires(), 1)

	tex, _ := Get[*TextureNode](g, id)
	assert.Equal(t, float32(4), tex.Scale)
	assert.ErrorIs(t, g.Disconnect(OutPin{a, 0}, InPin{id, 0}), ErrWireNotFound)
}

func TestCollectionSlots(t *testing.T) {
	g := NewGraph()
	s1 := g.Add(NewSphereNode())
	s2 := g.Add(NewSphereNode())
	s3 := g.Add(NewSphereNode())
	id := g.Add(NewCollectionNode())
	c, _ := Get[*CollectionNode](g, id)

	assert.Len(t, c.Inputs(), 1)
	require.NoError(t, g.Connect(OutPin{s1, 0}, InPin{id, 0}))
	require.NoError(t, g.Connect(OutPin{s2, 0}, InPin{id, 1}))
	require.NoError(t, g.Connect(OutPin{s3, 0}, InPin{id, 0}))
	assert.Equal(t, []NodeID{s3, s1, s2}, c.Nodes)
	assert.Len(t, c.Inputs(), 4)

	for pin, want := range []NodeID{s3, s1, s2} {
		from, ok := g.InputOf(InPin{id, pin})
		require.True(t, ok)
		assert.Equal(t, want, from.Node)
	}

	require.NoError(t, g.Disconnect(OutPin{s1, 0}, InPin{id, 1}))
	assert.Equal(t, []NodeID{s3, s2}, c.Nodes)
	from, ok := g.InputOf(InPin{id, 1})
	require.True(t, ok)
	assert.Equal(t, s2, from.Node)
	_, ok = g.InputOf(InPin{id, 2})
	assert.False(t, ok)
}

func TestCollectionChangesNotify(t *testing.T) {
	g := NewGraph()
	s1 := g.Add(NewSphereNode())
	id := g.Add(NewCollectionNode())
	calls := 0
	g.Subscribe(id, 77, EventOnChange, func(*Graph, NodeID, NodeID) { calls++ })

	require.NoError(t, g.Connect(OutPin{s1, 0}, InPin{id, 0}))
	require.NoError(t, g.Disconnect(OutPin{s1, 0}, InPin{id, 0}))
	assert.Equal(t, 2, calls)
}

func TestRemoveNodeDropsWires(t *testing.T) {
	g := NewGraph()
	f := newSharedMaterial(t, g)
	extra := g.Add(NewSphereNode())
	require.NoError(t, g.Connect(OutPin{extra, 0}, InPin{f.group, 2}))

	require.NoError(t, g.RemoveNode(f.s1))
	c, _ := Get[*CollectionNode](g, f.group)
	assert.Equal(t, []NodeID{f.s2, extra}, c.Nodes)
	for _, w := range g.Wires() {
		assert.NotEqual(t, f.s1, w.From.Node)
		assert.NotEqual(t, f.s1, w.To.Node)
	}

	require.NoError(t, g.RemoveNode(f.mat))
	s2, _ := Get[*SphereNode](g, f.s2)
	assert.False(t, s2.Material.IsExternal())
	assert.IsType(t, &LambertianNode{}, s2.Material.Internal())

	assert.ErrorIs(t, g.RemoveNode(f.mat), ErrNodeNotFound)
	_, ok := g.Node(f.s1)
	assert.False(t, ok)
}

func TestNodeIDsAreNotReused(t *testing.T) {
	g := NewGraph()
	a := g.Add(&NumberNode{})
	require.NoError(t, g.RemoveNode(a))
	b := g.Add(&NumberNode{})
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, NoNode, a)
	assert.Equal(t, []NodeID{b}, g.Nodes())
}

func TestSettersCheckKind(t *testing.T) {
	g := NewGraph()
	num := g.Add(&NumberNode{})
	sphere := g.Add(NewSphereNode())

	assert.ErrorIs(t, g.SetRadius(num, 1), ErrWrongKind)
	assert.ErrorIs(t, g.SetNumber(sphere, 1), ErrWrongKind)
	assert.ErrorIs(t, g.SetNumber(99, 1), ErrNodeNotFound)
	assert.ErrorIs(t, g.SetAlbedo(sphere, common.Vec3{}), ErrWrongKind)
	assert.NoError(t, g.SetRadius(sphere, 3))
}

func TestUpdateNotifiesOnlyOnChange(t *testing.T) {
	g := NewGraph()
	id := g.Add(NewSphereNode())
	calls := 0
	g.Subscribe(id, 8, EventOnChange, func(*Graph, NodeID, NodeID) { calls++ })

	require.NoError(t, g.SetRadius(id, 1))
	assert.Equal(t, 0, calls)
	require.NoError(t, g.SetRadius(id, 2))
	assert.Equal(t, 1, calls)
	require.NoError(t, g.Update(id, func(Node) bool { return false }))
	assert.Equal(t, 1, calls)
}

func TestValueConversions(t *testing.T) {
	g := NewGraph()
	num := g.Add(&NumberNode{Value: 0.5})
	vec := g.Add(&VectorNode{Value: common.Vec3{1, 2, 3}})
	col := g.Add(&ColorNode{Value: common.Vec3{0.1, 0.2, 0.3}})
	str := g.Add(&StringNode{Value: "x"})

	v, ok := g.vector(num)
	assert.True(t, ok)
	assert.Equal(t, common.Vec3{0.5, 0.5, 0.5}, v)
	v, _ = g.color(vec)
	assert.Equal(t, common.Vec3{1, 2, 3}, v)
	v, _ = g.vector(col)
	assert.Equal(t, common.Vec3{0.1, 0.2, 0.3}, v)
	_, ok = g.number(vec)
	assert.False(t, ok)
	_, ok = g.vector(str)
	assert.False(t, ok)
}

func TestNodeKindsAnswerTheirMessages(t *testing.T) {
	tests := []struct {
		node                    Node
		inputs, refs, publishes bool
	}{
		{&NumberNode{}, false, false, false},
		{&StringNode{}, false, false, false},
		{&VectorNode{}, false, false, false},
		{&ColorNode{}, false, false, false},
		{NewCameraNode(), true, false, false},
		{NewTextureNode("bricks.png"), true, false, true},
		{NewLambertianNode(), true, true, true},
		{NewMetalNode(), true, true, true},
		{NewDielectricNode(), true, false, true},
		{NewEmissiveNode(), true, true, true},
		{NewCheckerboardNode(), true, false, true},
		{NewSphereNode(), true, true, true},
		{NewCollectionNode(), true, true, true},
		{NewSceneNode(), true, true, false},
		{NewXraysRenderNode(), true, true, false},
		{NewTriangleRenderNode(), true, false, false},
		{NewOutputNode("main"), true, true, false},
	}
	for _, tt := range tests {
		_, inputs := tt.node.(inputHandler)
		_, refs := tt.node.(contributor)
		_, publishes := tt.node.(subscribable)
		assert.Equal(t, tt.inputs, inputs, tt.node.Name())
		assert.Equal(t, len(tt.node.Inputs()) > 0, inputs, tt.node.Name())
		assert.Equal(t, tt.refs, refs, tt.node.Name())
		assert.Equal(t, tt.publishes, publishes, tt.node.Name())
		assert.Equal(t, compiledKinds(tt.node), publishes, tt.node.Name())

		g := NewGraph()
		id := g.Add(tt.node)
		assert.False(t, g.handleMessage(id+1, connectMessage{}), tt.node.Name())
		assert.Equal(t, publishes, g.handleMessage(id, subscribeMessage{subscriber: id + 1, event: EventOnChange,
			callback: func(*Graph, NodeID, NodeID) {}}), tt.node.Name())
		assert.Equal(t, publishes, g.HasSubscription(id, id+1, EventOnChange), tt.node.Name())
	}
}
