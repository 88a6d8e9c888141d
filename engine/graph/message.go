package graph

// message is delivered to a single node by handleMessage.
type message interface {
	message()
}

// connectMessage tells a node that source is now wired into pin.
type connectMessage struct {
	pin    int
	source NodeID
}

// refreshMessage tells a node that the value at the source of pin changed.
type refreshMessage struct {
	pin    int
	source NodeID
}

// disconnectMessage tells a node that the wire into pin was removed.
type disconnectMessage struct {
	pin int
}

// collectMessage asks a node to walk its contributing inputs.
type collectMessage struct {
	c *collector
}

type subscribeMessage struct {
	subscriber NodeID
	event      Event
	callback   EventCallback
}

type unsubscribeMessage struct {
	subscriber NodeID
	event      Event
}

type hasSubscriptionMessage struct {
	subscriber NodeID
	event      Event
}

func (connectMessage) message() {}
func (refreshMessage) message() {}
func (disconnectMessage) message() {}
func (collectMessage) message() {}
func (subscribeMessage) message() {}
func (unsubscribeMessage) message() {}
func (hasSubscriptionMessage) message() {}

// handleMessage delivers msg to the node id. Input changes that alter the node publish EventOnChange.
//
// Returns:
//   - bool: for input messages, whether the node changed; for subscription messages, whether the node
//     accepted the message or, for hasSubscriptionMessage, whether the subscription exists
func (g *Graph) handleMessage(id NodeID, msg message) bool {
	node, ok := g.nodes[id]
	if !ok {
		return false
	}

	switch m := msg.(type) {
	case connectMessage:
		h, ok := node.(inputHandler)
		if !ok {
			return false
		}
		return g.changedIf(id, h.connectInput(g, id, m.pin, m.source))

	case refreshMessage:
		h, ok := node.(inputHandler)
		if !ok {
			return false
		}
		// Collection slots hold references; a refresh would insert a duplicate slot.
		if _, isCollection := node.(*CollectionNode); isCollection {
			return false
		}
		return g.changedIf(id, h.connectInput(g, id, m.pin, m.source))

	case disconnectMessage:
		h, ok := node.(inputHandler)
		if !ok {
			return false
		}
		return g.changedIf(id, h.disconnectInput(g, id, m.pin))

	case collectMessage:
		if c, ok := node.(contributor); ok {
			for _, ref := range c.contributing() {
				m.c.visit(ref)
			}
		}
		return true

	case subscribeMessage:
		s, ok := node.(subscribable)
		if !ok {
			return false
		}
		s.subscription().Subscribe(m.subscriber, m.event, m.callback)
		return true

	case unsubscribeMessage:
		s, ok := node.(subscribable)
		if !ok {
			return false
		}
		s.subscription().Unsubscribe(m.subscriber, m.event)
		return true

	case hasSubscriptionMessage:
		s, ok := node.(subscribable)
		return ok && s.subscription().HasSubscription(m.subscriber, m.event)
	}
	return false
}

func (g *Graph) changedIf(id NodeID, changed bool) bool {
	if changed {
		g.Notify(id, EventOnChange)
	}
	return changed
}
