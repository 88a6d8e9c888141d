package graph

import "sort"

// Event identifies a kind of notification a node can publish.
type Event int

const (
	// EventOnChange fires when a node's compiled-scene relevant state changes.
	EventOnChange Event = iota
)

func (e Event) String() string {
	switch e {
	case EventOnChange:
		return "on-change"
	}
	return "unknown"
}

// EventCallback is invoked for each subscriber when subject publishes an event. Callbacks may mutate the graph,
// including subscribing and unsubscribing.
type EventCallback func(g *Graph, subject, subscriber NodeID)

// Subscription holds at most one callback per (event, subscriber) pair.
type Subscription struct {
	subscribers map[Event]map[NodeID]EventCallback
}

// Subscribe registers cb for subscriber, replacing any callback it already had for event.
//
// Parameters:
//   - subscriber: the node being called back
//   - event: the event to listen for
//   - cb: the callback
func (s *Subscription) Subscribe(subscriber NodeID, event Event, cb EventCallback) {
	if s.subscribers == nil {
		s.subscribers = make(map[Event]map[NodeID]EventCallback)
	}
	if s.subscribers[event] == nil {
		s.subscribers[event] = make(map[NodeID]EventCallback)
	}
	s.subscribers[event][subscriber] = cb
}

// Unsubscribe removes the callback of subscriber for event. Removing an absent entry is a no-op.
func (s *Subscription) Unsubscribe(subscriber NodeID, event Event) {
	delete(s.subscribers[event], subscriber)
}

// HasSubscription reports whether subscriber has a callback for event.
func (s *Subscription) HasSubscription(subscriber NodeID, event Event) bool {
	_, ok := s.subscribers[event][subscriber]
	return ok
}

// Len returns the number of subscribers for event.
func (s *Subscription) Len(event Event) int {
	return len(s.subscribers[event])
}

// Caller snapshots the subscribers of event and returns a function that invokes each of them, in ascending
// subscriber order, for the given subject. Changes made to the subscription while the returned function runs do not
// affect it.
//
// Parameters:
//   - event: the event being published
//
// Returns:
//   - func(g *Graph, subject NodeID): the dispatcher, or nil when nobody is subscribed
func (s *Subscription) Caller(event Event) func(g *Graph, subject NodeID) {
	subs := s.subscribers[event]
	if len(subs) == 0 {
		return nil
	}

	ids := make([]NodeID, 0, len(subs))
	callbacks := make(map[NodeID]EventCallback, len(subs))
	for id, cb := range subs {
		ids = append(ids, id)
		callbacks[id] = cb
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return func(g *Graph, subject NodeID) {
		for _, id := range ids {
			callbacks[id](g, subject, id)
		}
	}
}
