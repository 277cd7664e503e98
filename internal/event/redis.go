package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Envelope is the wire form of an event published to Redis.
type Envelope struct {
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    Event     `json:"payload"`
}

// RedisSink forwards every event to a Redis pub/sub channel for external
// consumers.
type RedisSink struct {
	client  *redis.Client
	channel string
	now     func() time.Time
}

// NewRedisSink connects to the Redis server at url.
func NewRedisSink(ctx context.Context, url, channel string) (*RedisSink, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisSink{client: client, channel: channel, now: time.Now}, nil
}

// Encode builds the JSON envelope of e.
func (s *RedisSink) Encode(e Event) ([]byte, error) {
	return json.Marshal(Envelope{Name: e.Name(), OccurredAt: s.now().UTC(), Payload: e})
}

// Handle publishes e; it is meant for Dispatcher.SubscribeAll.
func (s *RedisSink) Handle(ctx context.Context, e Event) error {
	payload, err := s.Encode(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return s.client.Publish(ctx, s.channel, payload).Err()
}

// Close releases the connection pool.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
