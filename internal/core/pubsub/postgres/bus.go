// Package postgres implements pubsub.Bus over PostgreSQL LISTEN/NOTIFY.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KruASe76/look/internal/core/pubsub"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	_ pubsub.Bus         = (*Bus)(nil)
	_ pubsub.Connectable = (*Bus)(nil)
)

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// listenConn is a connection dedicated to one LISTEN.
type listenConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Release()
}

// database abstracts the pool for testing.
type database interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	AcquireListener(ctx context.Context) (listenConn, error)
	Close()
}

type poolDatabase struct {
	*pgxpool.Pool
}

func (p poolDatabase) AcquireListener(ctx context.Context) (listenConn, error) {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return pooledConn{conn}, nil
}

type pooledConn struct {
	*pgxpool.Conn
}

func (c pooledConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	return c.Conn.Conn().WaitForNotification(ctx)
}

// connectFunc dials the database (injectable for testing).
type connectFunc func(ctx context.Context, url string) (database, error)

var defaultConnect connectFunc = func(ctx context.Context, url string) (database, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return poolDatabase{pool}, nil
}

// Bus publishes with pg_notify and holds one pooled connection per subscription.
// A subscription that loses its connection reconnects with backoff and then
// emits a Resync notification.
type Bus struct {
	url     string
	opts    pubsub.Options
	connect connectFunc

	mu     sync.Mutex
	db     database
	root   context.Context
	stop   context.CancelFunc
	closed bool
	wg     sync.WaitGroup

	minBackoff time.Duration
	maxBackoff time.Duration
}

// New creates a bus for the database at url. Connect must be called before use.
func New(url string, opts pubsub.Options) *Bus {
	root, stop := context.WithCancel(context.Background())
	return &Bus{
		url:        url,
		opts:       opts.Normalize(),
		connect:    defaultConnect,
		root:       root,
		stop:       stop,
		minBackoff: minBackoff,
		maxBackoff: maxBackoff,
	}
}

// Connect opens the connection pool.
func (b *Bus) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return pubsub.ErrClosed
	}
	if b.db != nil {
		return nil
	}
	db, err := b.connect(ctx, b.url)
	if err != nil {
		return fmt.Errorf("failed to connect notification pool: %w", err)
	}
	b.db = db
	slog.Info("Connected to PostgreSQL notifications")
	return nil
}

func (b *Bus) database() (database, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, pubsub.ErrClosed
	}
	if b.db == nil {
		return nil, pubsub.ErrNotConnected
	}
	return b.db, nil
}

// Publish issues NOTIFY on channel.
func (b *Bus) Publish(ctx context.Context, channel string, payload []byte) (err error) {
	start := time.Now()
	defer func() { b.opts.ReportPublish(channel, err, start) }()

	if channel == "" {
		return pubsub.ErrInvalidChannel
	}
	db, err := b.database()
	if err != nil {
		return err
	}
	if _, err := db.Exec(ctx, "SELECT pg_notify($1, $2)", channel, string(payload)); err != nil {
		return fmt.Errorf("notify %s: %w", channel, err)
	}
	return nil
}

// Subscribe issues LISTEN on a dedicated connection and forwards notifications
// until ctx is canceled or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, channel string) (<-chan pubsub.Notification, error) {
	if channel == "" {
		return nil, pubsub.ErrInvalidChannel
	}
	db, err := b.database()
	if err != nil {
		return nil, err
	}

	conn, err := listen(ctx, db, channel)
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	stopAfter := context.AfterFunc(b.root, cancel)

	out := make(chan pubsub.Notification, b.opts.BufferSize)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer stopAfter()
		defer cancel()
		b.forward(subCtx, db, channel, conn, out)
	}()
	return out, nil
}

func listen(ctx context.Context, db database, channel string) (listenConn, error) {
	conn, err := db.AcquireListener(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listener connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", channel, err)
	}
	return conn, nil
}

func unlisten(conn listenConn, channel string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := conn.Exec(ctx, "UNLISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		slog.Debug("UNLISTEN failed, connection will be discarded", "channel", channel, "error", err)
	}
	conn.Release()
}

func (b *Bus) forward(ctx context.Context, db database, channel string, conn listenConn, out chan<- pubsub.Notification) {
	defer close(out)
	backoff := b.minBackoff

	for {
		if conn == nil {
			var err error
			conn, err = listen(ctx, db, channel)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("Re-listen failed", "channel", channel, "retry_in", backoff, "error", err)
				if !sleep(ctx, backoff) {
					return
				}
				backoff = min(backoff*2, b.maxBackoff)
				continue
			}
			backoff = b.minBackoff
			slog.Info("Notification listener reconnected", "channel", channel)
			b.deliver(out, pubsub.Notification{Channel: channel, ReceivedAt: time.Now(), Resync: true})
		}

		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			unlisten(conn, channel)
			conn = nil
			if ctx.Err() != nil {
				return
			}
			slog.Warn("Notification connection lost", "channel", channel, "error", err)
			continue
		}
		if n.Channel != channel {
			continue
		}
		b.deliver(out, pubsub.Notification{
			Channel:    n.Channel,
			Payload:    []byte(n.Payload),
			ReceivedAt: time.Now(),
		})
	}
}

// deliver drops the notification when the subscriber already has one pending.
func (b *Bus) deliver(out chan<- pubsub.Notification, n pubsub.Notification) {
	select {
	case out <- n:
		b.opts.ReportReceive(n.Channel)
	default:
		slog.Debug("Subscriber buffer full, notification coalesced", "channel", n.Channel)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close ends every subscription, waits for them to release their connections
// and closes the pool.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	db := b.db
	b.db = nil
	b.mu.Unlock()

	b.stop()
	b.wg.Wait()
	if db != nil {
		slog.Info("Closing PostgreSQL notification pool")
		db.Close()
	}
	return nil
}
