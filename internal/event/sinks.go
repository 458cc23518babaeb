package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LogSink writes events to the application log.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Deliver(_ context.Context, e Event) error {
	s.log.Info("booking event",
		zap.String("type", string(e.Type)),
		zap.String("slot_id", e.SlotID),
		zap.String("user_id", e.UserID),
		zap.Int("position", e.Position),
		zap.Time("at", e.At),
	)
	return nil
}

// RedisChannel is the pub/sub channel events are published on.
const RedisChannel = "booking.events"

// RedisSink publishes events as JSON to a Redis pub/sub channel.
type RedisSink struct {
	client *redis.Client
}

func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{client: client}
}

func (s *RedisSink) Deliver(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event failed: %w", err)
	}
	if err := s.client.Publish(ctx, RedisChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish event failed: %w", err)
	}
	return nil
}
