package pubsub

import "errors"

var (
	// ErrClosed is returned when the bus has been closed.
	ErrClosed = errors.New("pubsub: bus closed")

	// ErrNotConnected is returned when a Connectable bus is used before Connect.
	ErrNotConnected = errors.New("pubsub: not connected")

	// ErrInvalidChannel is returned for an empty channel name.
	ErrInvalidChannel = errors.New("pubsub: invalid channel name")
)
