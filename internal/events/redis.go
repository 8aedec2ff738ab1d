package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/adplanner/internal/config"
)

// RedisSink appends events to a Redis stream, one XADD per event.
type RedisSink struct {
	client *redis.Client
	stream string
}

// NewRedisSink connects to Redis and verifies the connection.
func NewRedisSink(ctx context.Context, cfg config.RedisConfig) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisSink{client: client, stream: cfg.Stream}, nil
}

// NewRedisSinkFromClient wraps an existing client, used by tests.
func NewRedisSinkFromClient(client *redis.Client, stream string) *RedisSink {
	return &RedisSink{client: client, stream: stream}
}

func (s *RedisSink) Append(ctx context.Context, e Event) (string, error) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	id, err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"run_id": e.RunID,
			"type":   e.Type,
			"event":  string(payload),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("append event: %w", err)
	}
	return id, nil
}

// Close releases the Redis connection.
func (s *RedisSink) Close() error { return s.client.Close() }
