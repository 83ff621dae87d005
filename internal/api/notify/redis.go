package notify

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisBus adapts a Redis client to the Bus interface using Redis pub/sub.
type RedisBus struct {
	rdb *redis.Client
}

func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

func (b *RedisBus) Publish(ctx context.Context, channel, payload string) error {
	return b.rdb.Publish(ctx, channel, payload).Err()
}

// Listen opens a pub/sub connection with no channels yet; the broker adds
// them as local subscribers appear. go-redis allows Subscribe/Unsubscribe
// concurrently with a blocked ReceiveMessage, which is exactly what the
// broker's two loops need.
func (b *RedisBus) Listen(ctx context.Context) (Stream, error) {
	return &redisStream{ps: b.rdb.Subscribe(ctx)}, nil
}

type redisStream struct {
	ps *redis.PubSub
}

func (s *redisStream) Subscribe(ctx context.Context, channels ...string) error {
	return s.ps.Subscribe(ctx, channels...)
}

func (s *redisStream) Unsubscribe(ctx context.Context, channels ...string) error {
	return s.ps.Unsubscribe(ctx, channels...)
}

func (s *redisStream) Receive(ctx context.Context) (Message, error) {
	msg, err := s.ps.ReceiveMessage(ctx)
	if err != nil {
		return Message{}, err
	}
	return Message{Channel: msg.Channel, Payload: msg.Payload}, nil
}

func (s *redisStream) Close() error {
	return s.ps.Close()
}
