package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/juju/pubsub/v2"
)

// DefaultSubscriberBuffer is the channel capacity given to new subscribers.
const DefaultSubscriberBuffer = 16

// Change describes one write observed by a Notifying store. It is published
// with its Key as the topic.
type Change struct {
	Key     string          `json:"key"`
	Value   json.RawMessage `json:"value,omitempty"`
	Removed bool            `json:"removed,omitempty"`
}

// Broadcaster fans changes out to subscribers over a pubsub hub. Delivery is
// fire-and-forget: a subscriber whose buffer is full misses the change.
type Broadcaster struct {
	hub *pubsub.SimpleHub
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{hub: pubsub.NewSimpleHub(&pubsub.SimpleHubConfig{})}
}

// Subscribe registers a listener for every key. The returned func
// unsubscribes and closes the channel.
func (b *Broadcaster) Subscribe(buffer int) (<-chan Change, func()) {
	return b.SubscribeMatch(pubsub.MatchAll, buffer)
}

// SubscribeMatch registers a listener for the keys accepted by match.
func (b *Broadcaster) SubscribeMatch(match func(key string) bool, buffer int) (<-chan Change, func()) {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	sub := &subscriber{changes: make(chan Change, buffer)}
	unsub := b.hub.SubscribeMatch(match, sub.deliver)

	var once sync.Once
	return sub.changes, func() {
		once.Do(func() {
			unsub()
			sub.close()
		})
	}
}

// Publish hands c to the hub without blocking. The returned func waits
// until every subscriber has seen it.
func (b *Broadcaster) Publish(c Change) func() {
	return b.hub.Publish(c.Key, c)
}

// subscriber guards its channel so a late hub callback never sends on a
// closed channel.
type subscriber struct {
	mu      sync.Mutex
	closed  bool
	changes chan Change
}

func (s *subscriber) deliver(_ string, data any) {
	c, ok := data.(Change)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.changes <- c:
	default:
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	close(s.changes)
}

// Compile-time interface check
var _ Store = (*Notifying)(nil)

// Notifying wraps a Store and publishes every successful write.
type Notifying struct {
	Store
	events *Broadcaster
}

// NewNotifying wraps inner so writes are published on events.
func NewNotifying(inner Store, events *Broadcaster) *Notifying {
	return &Notifying{Store: inner, events: events}
}

// Events returns the broadcaster changes are published on.
func (n *Notifying) Events() *Broadcaster {
	return n.events
}

// Set writes through and publishes the new value.
func (n *Notifying) Set(ctx context.Context, key string, value any) error {
	if err := n.Store.Set(ctx, key, value); err != nil {
		return err
	}
	raw, _ := json.Marshal(value)
	n.events.Publish(Change{Key: key, Value: raw})
	return nil
}

// Remove deletes through and publishes the removal.
func (n *Notifying) Remove(ctx context.Context, key string) error {
	if err := n.Store.Remove(ctx, key); err != nil {
		return err
	}
	n.events.Publish(Change{Key: key, Removed: true})
	return nil
}
