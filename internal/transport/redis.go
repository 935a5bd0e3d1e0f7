package transport

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher fans payloads out over Redis pub/sub channels
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := p.rdb.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("transport: redis publish %s: %w", topic, err)
	}
	return nil
}

func (p *RedisPublisher) SendToSubscriber(ctx context.Context, subscriberID string, payload []byte) error {
	return p.Publish(ctx, SubscriberChannel(subscriberID), payload)
}
