package push

import (
	"sync"

	"github.com/google/uuid"
)

const defaultSubscriberBuffer = 16

// Subscriber receives messages for the topics it was subscribed with.
type Subscriber struct {
	id     string
	topics []string
	ch     chan Message
}

// C returns the subscriber's receive channel. It is closed on Unsubscribe.
func (s *Subscriber) C() <-chan Message { return s.ch }

// Topics returns the topics this subscriber was registered for.
func (s *Subscriber) Topics() []string { return s.topics }

// Hub is an in-process topic registry: topic name to subscriber set.
// Messages are not persisted or replayed; a subscriber that joins after a
// publish never sees it. Slow subscribers lose messages rather than block
// the publisher.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscriber]struct{}
	buffer int
}

// NewHub creates a hub. bufferSize <= 0 selects the default per-subscriber
// buffer.
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultSubscriberBuffer
	}
	return &Hub{
		topics: make(map[string]map[*Subscriber]struct{}),
		buffer: bufferSize,
	}
}

// Subscribe registers a new subscriber on the given topics.
func (h *Hub) Subscribe(topics ...string) *Subscriber {
	sub := &Subscriber{
		id:     uuid.NewString(),
		topics: topics,
		ch:     make(chan Message, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, topic := range topics {
		set, ok := h.topics[topic]
		if !ok {
			set = make(map[*Subscriber]struct{})
			h.topics[topic] = set
		}
		set[sub] = struct{}{}
	}
	return sub
}

// Unsubscribe removes the subscriber from all topics and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	removed := false
	for _, topic := range sub.topics {
		set, ok := h.topics[topic]
		if !ok {
			continue
		}
		if _, member := set[sub]; member {
			delete(set, sub)
			removed = true
		}
		if len(set) == 0 {
			delete(h.topics, topic)
		}
	}
	if removed {
		close(sub.ch)
	}
}

// Publish implements Channel. The send is non-blocking: a subscriber whose
// buffer is full misses the message.
func (h *Hub) Publish(topic string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.topics[topic] {
		select {
		case sub.ch <- msg:
		default:
		}
	}
}

// SubscriberCount reports how many subscribers a topic currently has.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
