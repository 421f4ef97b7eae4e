package redis

import (
	"context"
	"fmt"

	"github.com/ebarrios-ai/trivium/pkg/ports"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PubSubBus implements the progress bus on Redis Pub/Sub. Each client has its
// own activity and results channels; delivery within one channel is FIFO,
// which is what gives each client an ordered progress stream.
type PubSubBus struct {
	client *redis.Client
	logger *zap.Logger
}

// NewPubSubBus creates a new Redis Pub/Sub progress bus
func NewPubSubBus(client *redis.Client, logger *zap.Logger) *PubSubBus {
	return &PubSubBus{
		client: client,
		logger: logger,
	}
}

// Publish publishes a payload to a channel. Fire-and-forget: a channel with
// no subscriber is not an error.
func (b *PubSubBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}

	b.logger.Debug("event published",
		zap.String("channel", channel),
		zap.Int("bytes", len(payload)))

	return nil
}

// PSubscribe subscribes to all channels matching any of the patterns and
// feeds messages to handler until ctx is cancelled. All patterns share one
// subscription and one pump goroutine, so delivery order is publish order
// even across patterns.
func (b *PubSubBus) PSubscribe(ctx context.Context, handler ports.MessageHandler, patterns ...string) error {
	pubsub := b.client.PSubscribe(ctx, patterns...)

	// Force the subscription to be established before returning so callers
	// never publish into a window where nothing is listening.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe to %v: %w", patterns, err)
	}

	b.logger.Info("subscribed to bus patterns", zap.Strings("patterns", patterns))

	go b.readMessages(ctx, pubsub, patterns, handler)

	return nil
}

// readMessages pumps messages from the subscription to the handler
func (b *PubSubBus) readMessages(ctx context.Context, pubsub *redis.PubSub, patterns []string, handler ports.MessageHandler) {
	defer func() { _ = pubsub.Close() }()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				b.logger.Warn("bus subscription closed", zap.Strings("patterns", patterns))
				return
			}
			handler(ctx, msg.Channel, []byte(msg.Payload))
		}
	}
}

// Close closes the bus. The Redis client is owned by the caller.
func (b *PubSubBus) Close() error {
	return nil
}
