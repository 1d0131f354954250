package meta

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KruASe76/look/internal/core/pubsub"
	"github.com/KruASe76/look/internal/metrics"
)

// ListenerOptions tunes the invalidation listener.
type ListenerOptions struct {
	// Timeout bounds one recomputation. Zero means no bound.
	Timeout time.Duration

	// Coalesce drains notifications queued during a recomputation so a burst
	// triggers one more recomputation instead of one per notification.
	Coalesce bool
}

// Listener recomputes the cache once per received invalidation.
type Listener struct {
	cache   *Cache
	sub     pubsub.Subscriber
	channel string
	opts    ListenerOptions
	logger  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewListener creates a listener for channel.
func NewListener(cache *Cache, sub pubsub.Subscriber, channel string, opts ListenerOptions) *Listener {
	return &Listener{
		cache:   cache,
		sub:     sub,
		channel: channel,
		opts:    opts,
		logger:  slog.Default().With("component", "meta-listener", "channel", channel),
	}
}

// Start subscribes and runs the listener in the background until Stop is
// called or ctx is canceled.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return fmt.Errorf("meta listener already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	notifications, err := l.sub.Subscribe(ctx, l.channel)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe %s: %w", l.channel, err)
	}
	l.cancel = cancel

	l.wg.Add(1)
	go l.run(ctx, notifications)

	l.logger.Info("Meta invalidation listener started")
	return nil
}

// Stop cancels the listener and waits for an in-flight recomputation to
// finish. A stopped listener may be started again.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel == nil {
		return
	}
	l.cancel()
	l.wg.Wait()
	l.cancel = nil
	l.logger.Info("Meta invalidation listener stopped")
}

func (l *Listener) run(ctx context.Context, notifications <-chan pubsub.Notification) {
	defer l.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notifications:
			if !ok {
				if ctx.Err() == nil {
					l.logger.Warn("Invalidation subscription closed")
				}
				return
			}
			metrics.InvalidationsReceived.WithLabelValues(l.channel).Inc()
			if n.Resync {
				l.logger.Info("Transport reconnected, recomputing")
			}
			if l.opts.Coalesce {
				l.drain(notifications)
			}
			l.recompute(ctx)
		}
	}
}

// drain discards notifications already buffered; the recomputation about to
// run covers them.
func (l *Listener) drain(notifications <-chan pubsub.Notification) {
	for {
		select {
		case _, ok := <-notifications:
			if !ok {
				return
			}
			metrics.InvalidationsReceived.WithLabelValues(l.channel).Inc()
		default:
			return
		}
	}
}

func (l *Listener) recompute(ctx context.Context) {
	rctx := ctx
	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
	}

	// A failed recomputation keeps the previous value; the next
	// notification tries again.
	if err := l.cache.Recompute(rctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		l.logger.Error("Failed to recompute search meta", "error", err)
	}
}
