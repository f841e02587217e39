package push

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisChannel mirrors publishes onto Redis pub/sub channels named after the
// topic, so fanout reaches clients connected to other instances. Failures
// are logged and dropped; they never surface to the publisher.
type RedisChannel struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisChannel wraps a connected client.
func NewRedisChannel(client *redis.Client, logger *zap.Logger) *RedisChannel {
	return &RedisChannel{client: client, logger: logger}
}

// Publish implements Channel.
func (r *RedisChannel) Publish(topic string, msg Message) {
	if r == nil || r.client == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		r.logger.Warn("marshal push message", zap.String("topic", topic), zap.Error(err))
		return
	}
	if err := r.client.Publish(context.Background(), topic, data).Err(); err != nil {
		r.logger.Warn("redis publish", zap.String("topic", topic), zap.Error(err))
	}
}
