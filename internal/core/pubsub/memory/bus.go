// Package memory implements an in-process pubsub.Bus.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KruASe76/look/internal/core/pubsub"
)

var _ pubsub.Bus = (*Bus)(nil)

// Bus fans notifications out to every subscriber of a channel within the process.
type Bus struct {
	opts pubsub.Options

	mu     sync.RWMutex
	subs   map[string]map[*subscription]struct{}
	closed bool
}

type subscription struct {
	ch     chan pubsub.Notification
	cancel context.CancelFunc
	once   sync.Once
}

func (s *subscription) close() {
	s.once.Do(func() {
		s.cancel()
		close(s.ch)
	})
}

// New creates an in-memory bus.
func New(opts pubsub.Options) *Bus {
	return &Bus{
		opts: opts.Normalize(),
		subs: make(map[string]map[*subscription]struct{}),
	}
}

// Publish delivers payload to every subscriber of channel.
// A subscriber whose buffer is full already has a pending notification,
// so the new one is dropped for that subscriber.
func (b *Bus) Publish(ctx context.Context, channel string, payload []byte) (err error) {
	start := time.Now()
	defer func() { b.opts.ReportPublish(channel, err, start) }()

	if channel == "" {
		return pubsub.ErrInvalidChannel
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return pubsub.ErrClosed
	}

	n := pubsub.Notification{
		Channel:    channel,
		Payload:    append([]byte(nil), payload...),
		ReceivedAt: time.Now(),
	}
	for sub := range b.subs[channel] {
		select {
		case sub.ch <- n:
			b.opts.ReportReceive(channel)
		default:
			slog.Debug("Subscriber buffer full, notification coalesced", "channel", channel)
		}
	}
	return nil
}

// Subscribe registers a subscriber for channel until ctx is canceled.
func (b *Bus) Subscribe(ctx context.Context, channel string) (<-chan pubsub.Notification, error) {
	if channel == "" {
		return nil, pubsub.ErrInvalidChannel
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, pubsub.ErrClosed
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		ch:     make(chan pubsub.Notification, b.opts.BufferSize),
		cancel: cancel,
	}
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[*subscription]struct{})
	}
	b.subs[channel][sub] = struct{}{}

	go func() {
		<-subCtx.Done()
		b.mu.Lock()
		delete(b.subs[channel], sub)
		if len(b.subs[channel]) == 0 {
			delete(b.subs, channel)
		}
		b.mu.Unlock()
		sub.close()
	}()

	return sub.ch, nil
}

// Close closes every subscription. Further use returns pubsub.ErrClosed.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	var all []*subscription
	for _, subs := range b.subs {
		for sub := range subs {
			all = append(all, sub)
		}
	}
	b.subs = make(map[string]map[*subscription]struct{})
	b.mu.Unlock()

	for _, sub := range all {
		sub.close()
	}
	return nil
}

// Subscribers returns the number of live subscriptions on channel.
func (b *Bus) Subscribers(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[channel])
}
