package meta

import (
	"context"
	"fmt"

	"github.com/KruASe76/look/internal/core/pubsub"
)

// Notifier broadcasts facet invalidations to every process.
type Notifier struct {
	pub     pubsub.Publisher
	channel string
}

// NewNotifier creates a notifier publishing on channel.
func NewNotifier(pub pubsub.Publisher, channel string) *Notifier {
	return &Notifier{pub: pub, channel: channel}
}

// PublishInvalidation asks every listener, including this process's own, to
// recompute. The payload is empty.
func (n *Notifier) PublishInvalidation(ctx context.Context) error {
	if err := n.pub.Publish(ctx, n.channel, nil); err != nil {
		return fmt.Errorf("publish invalidation on %s: %w", n.channel, err)
	}
	return nil
}
