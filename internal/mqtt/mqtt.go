// Package mqtt provides MQTT subscription with abstraction for testing.
package mqtt

// Message is an inbound topic/payload pair as delivered by the broker.
type Message struct {
	Topic   string
	Payload []byte
}

// Handler processes one inbound message. Handlers must not panic; parse
// failures are logged and dropped by the dispatch layer.
type Handler func(Message)

// Client receives messages from the broker.
type Client interface {
	// Subscribe registers a handler for the given topic filter.
	// Returns error if the subscription fails (should not crash the process).
	Subscribe(filter string, h Handler) error

	// IsConnected reports whether the broker connection is active.
	IsConnected() bool

	// Close disconnects from the broker.
	Close() error
}
