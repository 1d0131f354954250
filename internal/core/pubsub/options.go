package pubsub

import "time"

// Options configures a bus.
type Options struct {
	// BufferSize is the per-subscription notification buffer.
	BufferSize int

	// OnPublish is called after each publish attempt (for metrics).
	OnPublish func(channel string, err error, latency time.Duration)

	// OnReceive is called for every notification handed to a subscriber (for metrics).
	OnReceive func(channel string)
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{BufferSize: 16}
}

// Normalize fills unset fields with defaults.
func (o Options) Normalize() Options {
	if o.BufferSize <= 0 {
		o.BufferSize = DefaultOptions().BufferSize
	}
	return o
}

// ReportPublish invokes OnPublish if set.
func (o Options) ReportPublish(channel string, err error, start time.Time) {
	if o.OnPublish != nil {
		o.OnPublish(channel, err, time.Since(start))
	}
}

// ReportReceive invokes OnReceive if set.
func (o Options) ReportReceive(channel string) {
	if o.OnReceive != nil {
		o.OnReceive(channel)
	}
}
