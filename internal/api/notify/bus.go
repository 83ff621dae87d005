package notify

import "context"

// Event is one outbound notification: a destination channel on the shared bus
// plus a pre-serialized payload. Delivery is at-most-once and best-effort.
type Event struct {
	Channel string
	Payload string
}

// Message is one inbound bus delivery.
type Message struct {
	Channel string
	Payload string
}

// Bus abstracts the shared message bus. Publish must be usable from a single
// goroutine at a time; the broker guarantees that by funnelling all publishes
// through its command loop.
type Bus interface {
	Publish(ctx context.Context, channel, payload string) error

	// Listen opens the dedicated inbound connection. The returned Stream
	// must tolerate Subscribe/Unsubscribe being called while Receive
	// blocks on another goroutine.
	Listen(ctx context.Context) (Stream, error)
}

// Stream is the broker's single inbound subscription connection.
type Stream interface {
	Subscribe(ctx context.Context, channels ...string) error
	Unsubscribe(ctx context.Context, channels ...string) error
	Receive(ctx context.Context) (Message, error)
	Close() error
}
