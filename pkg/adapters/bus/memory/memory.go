package memory

import (
	"context"
	"path"
	"sync"

	"github.com/ebarrios-ai/trivium/pkg/ports"
)

// InMemoryBus implements the progress bus with in-process fan-out.
// This is for testing purposes only.
type InMemoryBus struct {
	mu          sync.RWMutex
	subscribers []*subscription
	closed      bool
}

// subscription is one subscriber, possibly matching several patterns.
// Messages are pumped through a buffered channel by a single goroutine so
// publish order is preserved across all its patterns, matching the Redis
// Pub/Sub delivery contract for a shared subscription.
type subscription struct {
	patterns []string
	msgs     chan message
	ctx      context.Context
}

func (s *subscription) matches(channel string) bool {
	for _, pattern := range s.patterns {
		if matchPattern(pattern, channel) {
			return true
		}
	}
	return false
}

type message struct {
	channel string
	payload []byte
}

// NewInMemoryBus creates a new in-memory progress bus
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{}
}

// Publish fans the payload out to all matching subscribers without blocking.
// Publishing with no subscriber is a no-op.
func (b *InMemoryBus) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil
	}

	// Copy so subscribers cannot observe later mutations
	data := make([]byte, len(payload))
	copy(data, payload)

	for _, sub := range b.subscribers {
		if !sub.matches(channel) {
			continue
		}
		select {
		case sub.msgs <- message{channel: channel, payload: data}:
		default:
			// Subscriber is too slow; drop rather than block the publisher
		}
	}

	return nil
}

// PSubscribe registers a handler for all channels matching any of the
// patterns. Glob patterns use the same syntax as Redis ("prefix:*").
func (b *InMemoryBus) PSubscribe(ctx context.Context, handler ports.MessageHandler, patterns ...string) error {
	sub := &subscription{
		patterns: patterns,
		msgs:     make(chan message, 256),
		ctx:      ctx,
	}

	b.mu.Lock()
	b.subscribers = append(b.subscribers, sub)
	b.mu.Unlock()

	go func() {
		defer b.remove(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-sub.msgs:
				handler(ctx, msg.channel, msg.payload)
			}
		}
	}()

	return nil
}

// Close stops accepting publishes
func (b *InMemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.subscribers = nil
	return nil
}

// remove drops a subscription after its context ends
func (b *InMemoryBus) remove(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subscribers {
		if s == sub {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			break
		}
	}
}

// matchPattern matches a Redis-style glob pattern against a channel name
func matchPattern(pattern, channel string) bool {
	ok, err := path.Match(pattern, channel)
	return err == nil && ok
}
