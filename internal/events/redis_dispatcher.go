package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// envelope is the wire form on the Redis channel. Origin lets an instance
// skip its own publications, which it already delivered locally.
type envelope struct {
	Origin string          `json:"origin"`
	Event  json.RawMessage `json:"event"`
}

// RedisDispatcher fans events out to every API instance through Redis pub/sub.
// Publish delivers to local handlers first, then broadcasts; Run relays events
// published by other instances to the local handlers with Remote set.
type RedisDispatcher struct {
	client  *redis.Client
	channel string
	origin  string
	local   *inMemoryDispatcher
	logger  *zap.Logger
}

// NewRedisDispatcher builds a dispatcher publishing on channel.
func NewRedisDispatcher(client *redis.Client, channel string, logger *zap.Logger) *RedisDispatcher {
	return &RedisDispatcher{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		local:   newInMemoryDispatcher(),
		logger:  logger,
	}
}

// Subscribe registers a local handler.
func (d *RedisDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.local.Subscribe(eventType, handler)
}

// Publish delivers locally and broadcasts to peers.
func (d *RedisDispatcher) Publish(ctx context.Context, event Event) error {
	localErr := d.local.Publish(ctx, event)

	data, err := encodeEnvelope(d.origin, event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := d.client.Publish(ctx, d.channel, data).Err(); err != nil {
		return fmt.Errorf("publish event %s: %w", event.Type, err)
	}
	return localErr
}

// Run relays peer events until ctx is cancelled.
func (d *RedisDispatcher) Run(ctx context.Context) error {
	sub := d.client.Subscribe(ctx, d.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", d.channel, err)
	}
	d.logger.Info("event relay subscribed", zap.String("channel", d.channel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			d.relay(ctx, []byte(msg.Payload))
		}
	}
}

func (d *RedisDispatcher) relay(ctx context.Context, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		d.logger.Warn("dropping malformed event", zap.Error(err))
		return
	}
	if env.Origin == d.origin {
		return
	}
	event, err := DecodeEvent(env.Event)
	if err != nil {
		d.logger.Warn("dropping malformed event", zap.Error(err))
		return
	}
	event.Remote = true
	if err := d.local.Publish(ctx, event); err != nil {
		d.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}

func encodeEnvelope(origin string, event Event) ([]byte, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Origin: origin, Event: raw})
}
