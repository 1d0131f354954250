// Package testing provides pubsub doubles for tests of code that publishes
// or subscribes.
package testing

import (
	"context"
	"sync"

	"github.com/KruASe76/look/internal/core/pubsub"
)

// PublishedMessage is a notification recorded by MockPublisher.
type PublishedMessage struct {
	Channel string
	Payload []byte
}

// MockPublisher records every publish.
type MockPublisher struct {
	mu       sync.Mutex
	messages []PublishedMessage
	err      error
}

var _ pubsub.Publisher = (*MockPublisher)(nil)

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish records the message, or returns the configured error.
func (m *MockPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, PublishedMessage{
		Channel: channel,
		Payload: append([]byte(nil), payload...),
	})
	return nil
}

// Messages returns all recorded messages.
func (m *MockPublisher) Messages() []PublishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PublishedMessage(nil), m.messages...)
}

// SetError makes subsequent publishes fail with err.
func (m *MockPublisher) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// ChannelSubscriber hands out a caller-controlled notification channel.
type ChannelSubscriber struct {
	C   chan pubsub.Notification
	Err error

	mu       sync.Mutex
	channels []string
}

var _ pubsub.Subscriber = (*ChannelSubscriber)(nil)

// NewChannelSubscriber creates a subscriber whose stream is fed through C.
func NewChannelSubscriber(buffer int) *ChannelSubscriber {
	return &ChannelSubscriber{C: make(chan pubsub.Notification, buffer)}
}

// Subscribe returns C, or Err when set.
func (s *ChannelSubscriber) Subscribe(_ context.Context, channel string) (<-chan pubsub.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.channels = append(s.channels, channel)
	return s.C, nil
}

// Channels returns the channel names subscribed to so far.
func (s *ChannelSubscriber) Channels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.channels...)
}
