package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisBus maps each game to its own Redis pub/sub channel. Redis delivers
// only to connections subscribed at publish time, which matches the bus
// contract exactly: no queueing for absent subscribers, no replay.
type RedisBus struct {
	rdb *redis.Client
}

func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

func (b *RedisBus) channel(gameID string) string {
	return fmt.Sprintf("game:%s:events", gameID)
}

type redisSub struct {
	ps     *redis.PubSub
	tokens chan struct{}
	once   sync.Once
	err    error
}

func (s *redisSub) C() <-chan struct{} {
	return s.tokens
}

func (s *redisSub) Close() error {
	s.once.Do(func() {
		s.err = s.ps.Close()
	})
	return s.err
}

func (b *RedisBus) Subscribe(ctx context.Context, gameID string) (Subscription, error) {
	ps := b.rdb.Subscribe(ctx, b.channel(gameID))

	// Wait for the subscription confirmation so that a publish issued
	// after Subscribe returns is guaranteed to be observed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	sub := &redisSub{
		ps:     ps,
		tokens: make(chan struct{}, 8),
	}

	msgs := ps.Channel()
	go func() {
		defer close(sub.tokens)
		for range msgs {
			select {
			case sub.tokens <- struct{}{}:
			default:
			}
		}
	}()

	return sub, nil
}

func (b *RedisBus) Publish(ctx context.Context, gameID string) error {
	return b.rdb.Publish(ctx, b.channel(gameID), "1").Err()
}
