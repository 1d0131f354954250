// Package pubsub provides a fan-out broadcast abstraction used to tell every
// process sharing a system of record that derived data must be recomputed.
//
// Delivery is at-least-once per live subscriber. There is no acknowledgement
// protocol: a subscriber that is not connected when a notification is sent
// simply never sees it.
package pubsub

import (
	"context"
	"io"
	"time"
)

// Notification is a single broadcast received on a channel.
type Notification struct {
	Channel    string
	Payload    []byte
	ReceivedAt time.Time

	// Resync is set on synthetic notifications emitted after a transport
	// reconnected, since broadcasts sent while disconnected were lost.
	Resync bool
}

// Publisher broadcasts notifications.
type Publisher interface {
	// Publish sends payload to every current subscriber of channel.
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Subscriber receives notifications.
type Subscriber interface {
	// Subscribe starts receiving notifications for channel.
	// The returned channel is closed when ctx is canceled or the bus is closed.
	Subscribe(ctx context.Context, channel string) (<-chan Notification, error)
}

// Bus is a publisher and subscriber over one transport.
type Bus interface {
	io.Closer
	Publisher
	Subscriber
}

// Connectable is implemented by transports that must dial before use.
// In-memory buses don't implement it.
type Connectable interface {
	Connect(ctx context.Context) error
}
