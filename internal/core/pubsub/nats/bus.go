// Package nats implements pubsub.Bus over core NATS subjects.
package nats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KruASe76/look/internal/core/pubsub"
	"github.com/nats-io/nats.go"
)

var (
	_ pubsub.Bus         = (*Bus)(nil)
	_ pubsub.Connectable = (*Bus)(nil)
)

// unsubscriber is the part of *nats.Subscription the bus uses.
type unsubscriber interface {
	Unsubscribe() error
}

// natsConnection abstracts *nats.Conn for testing.
type natsConnection interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler nats.MsgHandler) (unsubscriber, error)
	FlushWithContext(ctx context.Context) error
	Close()
}

type conn struct {
	nc *nats.Conn
}

func (c conn) Publish(subject string, data []byte) error { return c.nc.Publish(subject, data) }

func (c conn) Subscribe(subject string, handler nats.MsgHandler) (unsubscriber, error) {
	return c.nc.Subscribe(subject, handler)
}

func (c conn) FlushWithContext(ctx context.Context) error { return c.nc.FlushWithContext(ctx) }

func (c conn) Close() { c.nc.Close() }

// natsConnectFunc connects to NATS (injectable for testing).
type natsConnectFunc func(url string, onReconnect func()) (natsConnection, error)

var defaultNatsConnect natsConnectFunc = func(url string, onReconnect func()) (natsConnection, error) {
	nc, err := nats.Connect(url,
		nats.Name("look"),
		nats.MaxReconnects(-1),
		nats.ReconnectHandler(func(*nats.Conn) { onReconnect() }),
	)
	if err != nil {
		return nil, err
	}
	return conn{nc}, nil
}

// Bus maps each channel to a NATS subject of the same name.
// After the client reconnects every live subscription receives a Resync notification.
type Bus struct {
	url         string
	opts        pubsub.Options
	natsConnect natsConnectFunc

	mu     sync.Mutex
	nc     natsConnection
	subs   map[*subscription]struct{}
	closed bool
}

type subscription struct {
	channel string
	out     chan pubsub.Notification
	sub     unsubscriber
	once    sync.Once
}

// New creates a bus for the NATS server at url. Connect must be called before use.
func New(url string, opts pubsub.Options) *Bus {
	return &Bus{
		url:         url,
		opts:        opts.Normalize(),
		natsConnect: defaultNatsConnect,
		subs:        make(map[*subscription]struct{}),
	}
}

// Connect establishes the NATS connection.
func (b *Bus) Connect(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return pubsub.ErrClosed
	}
	if b.nc != nil {
		return nil
	}
	nc, err := b.natsConnect(b.url, b.resync)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", b.url, err)
	}
	b.nc = nc
	slog.Info("Connected to NATS", "url", b.url)
	return nil
}

func (b *Bus) connection() (natsConnection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, pubsub.ErrClosed
	}
	if b.nc == nil {
		return nil, pubsub.ErrNotConnected
	}
	return b.nc, nil
}

// Publish sends payload on the channel's subject and flushes it to the server.
func (b *Bus) Publish(ctx context.Context, channel string, payload []byte) (err error) {
	start := time.Now()
	defer func() { b.opts.ReportPublish(channel, err, start) }()

	if channel == "" {
		return pubsub.ErrInvalidChannel
	}
	nc, err := b.connection()
	if err != nil {
		return err
	}
	if err := nc.Publish(channel, payload); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	if err := nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", channel, err)
	}
	return nil
}

// Subscribe forwards messages on the channel's subject until ctx is canceled
// or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, channel string) (<-chan pubsub.Notification, error) {
	if channel == "" {
		return nil, pubsub.ErrInvalidChannel
	}
	nc, err := b.connection()
	if err != nil {
		return nil, err
	}

	s := &subscription{
		channel: channel,
		out:     make(chan pubsub.Notification, b.opts.BufferSize),
	}
	sub, err := nc.Subscribe(channel, func(msg *nats.Msg) {
		b.deliver(s, pubsub.Notification{
			Channel:    msg.Subject,
			Payload:    msg.Data,
			ReceivedAt: time.Now(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}
	s.sub = sub

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = sub.Unsubscribe()
		return nil, pubsub.ErrClosed
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	context.AfterFunc(ctx, func() { b.remove(s) })
	return s.out, nil
}

// deliver holds the lock so that a concurrent remove cannot close out mid-send.
func (b *Bus) deliver(s *subscription, n pubsub.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s]; !ok {
		return
	}
	select {
	case s.out <- n:
		b.opts.ReportReceive(n.Channel)
	default:
		slog.Debug("Subscriber buffer full, notification coalesced", "channel", n.Channel)
	}
}

func (b *Bus) resync() {
	b.mu.Lock()
	subs := make([]*subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	slog.Info("NATS reconnected, requesting resync", "subscriptions", len(subs))
	for _, s := range subs {
		b.deliver(s, pubsub.Notification{Channel: s.channel, ReceivedAt: time.Now(), Resync: true})
	}
}

func (b *Bus) remove(s *subscription) {
	b.mu.Lock()
	_, ok := b.subs[s]
	delete(b.subs, s)
	b.mu.Unlock()
	if ok {
		b.end(s)
	}
}

func (b *Bus) end(s *subscription) {
	s.once.Do(func() {
		if s.sub != nil {
			if err := s.sub.Unsubscribe(); err != nil {
				slog.Debug("NATS unsubscribe failed", "channel", s.channel, "error", err)
			}
		}
		close(s.out)
	})
}

// Close ends every subscription and closes the connection.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[*subscription]struct{})
	nc := b.nc
	b.nc = nil
	b.mu.Unlock()

	for s := range subs {
		b.end(s)
	}
	if nc != nil {
		slog.Info("Closing NATS connection...")
		nc.Close()
	}
	return nil
}
