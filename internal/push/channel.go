package push

import "time"

// Message types carried on topics.
const (
	MessageNewRequest       = "NEW_REQUEST"
	MessageStatusUpdate     = "STATUS_UPDATE"
	MessageRequestCancelled = "REQUEST_CANCELLED"
	MessageLocationUpdate   = "LOCATION_UPDATE"
)

// Message is the self-contained envelope delivered to subscribers. Delivery
// is at-most-once and unordered; the type tag and timestamp let clients
// handle each message in isolation.
type Message struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Channel is the push abstraction services publish through. Publish is
// fire-and-forget: it never blocks on subscriber presence and never returns
// an error to the caller.
type Channel interface {
	Publish(topic string, msg Message)
}

// Fanout publishes to every wrapped channel.
type Fanout []Channel

// Publish implements Channel.
func (f Fanout) Publish(topic string, msg Message) {
	for _, c := range f {
		c.Publish(topic, msg)
	}
}

// Topic names. Clients subscribe to these; services publish to them.
const TopicMechanicsPending = "mechanics.pending"

// TopicUser is the requester's private topic.
func TopicUser(userID string) string { return "user." + userID }

// TopicRequest is the per-request observer topic.
func TopicRequest(requestID string) string { return "request." + requestID }

// TopicMechanic is the mechanic's private topic.
func TopicMechanic(mechanicID string) string { return "mechanic." + mechanicID }
