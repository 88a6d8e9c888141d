package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeIsIdempotent(t *testing.T) {
	var s Subscription
	calls := 0
	cb := func(*Graph, NodeID, NodeID) { calls++ }

	assert.Nil(t, s.Caller(EventOnChange))
	s.Unsubscribe(3, EventOnChange)

	s.Subscribe(3, EventOnChange, cb)
	s.Subscribe(3, EventOnChange, cb)
	assert.Equal(t, 1, s.Len(EventOnChange))
	assert.True(t, s.HasSubscription(3, EventOnChange))
	assert.False(t, s.HasSubscription(4, EventOnChange))

	call := s.Caller(EventOnChange)
	require.NotNil(t, call)
	call(nil, 1)
	assert.Equal(t, 1, calls)

	s.Unsubscribe(3, EventOnChange)
	s.Unsubscribe(3, EventOnChange)
	assert.Equal(t, 0, s.Len(EventOnChange))
	assert.Nil(t, s.Caller(EventOnChange))
}

func TestCallerOrderAndSnapshot(t *testing.T) {
	var s Subscription
	var order []NodeID
	cb := func(_ *Graph, subject, subscriber NodeID) {
		assert.Equal(t, NodeID(9), subject)
		order = append(order, subscriber)
		// Mutations during dispatch do not affect the running snapshot.
		s.Unsubscribe(5, EventOnChange)
		s.Subscribe(7, EventOnChange, func(*Graph, NodeID, NodeID) { order = append(order, 7) })
	}
	for _, id := range []NodeID{5, 1, 3} {
		s.Subscribe(id, EventOnChange, cb)
	}

	s.Caller(EventOnChange)(nil, 9)
	assert.Equal(t, []NodeID{1, 3, 5}, order)
	assert.False(t, s.HasSubscription(5, EventOnChange))
	assert.True(t, s.HasSubscription(7, EventOnChange))
}

func TestGraphSubscriptionMessages(t *testing.T) {
	g := NewGraph()
	sphere := g.Add(NewSphereNode())
	number := g.Add(&NumberNode{})
	noop := func(*Graph, NodeID, NodeID) {}

	assert.True(t, g.Subscribe(sphere, 100, EventOnChange, noop))
	assert.True(t, g.HasSubscription(sphere, 100, EventOnChange))
	assert.False(t, g.Subscribe(number, 100, EventOnChange, noop))
	assert.False(t, g.HasSubscription(number, 100, EventOnChange))
	assert.False(t, g.Subscribe(999, 100, EventOnChange, noop))

	g.Unsubscribe(sphere, 100, EventOnChange)
	g.Unsubscribe(number, 100, EventOnChange)
	assert.False(t, g.HasSubscription(sphere, 100, EventOnChange))
}

func TestNotifyDropsReentrantDispatch(t *testing.T) {
	g := NewGraph()
	sphere := g.Add(NewSphereNode())
	calls := 0
	g.Subscribe(sphere, 50, EventOnChange, func(g *Graph, subject, _ NodeID) {
		calls++
		g.Notify(subject, EventOnChange)
	})

	g.Notify(sphere, EventOnChange)
	assert.Equal(t, 1, calls)

	g.Notify(sphere, EventOnChange)
	assert.Equal(t, 2, calls)
}
