package bus

import (
	"context"
	"sync"
)

// Subscription is one live registration on a game's topic. Tokens are
// content-free; receivers re-read current state from the game store.
type Subscription interface {
	// C delivers one token per publish made while the subscription is
	// active. The channel closes when the subscription is closed.
	C() <-chan struct{}

	// Close releases the registration. Idempotent.
	Close() error
}

// Bus is a topic-per-game publish/subscribe fan-out. Publishing to a topic
// with no active subscriptions is a no-op; a subscription never observes
// publishes made before it existed.
type Bus interface {
	Subscribe(ctx context.Context, gameID string) (Subscription, error)
	Publish(ctx context.Context, gameID string) error
}

// MemoryBus is the in-process Bus. Delivery is best-effort: a subscriber
// whose buffer is full loses the token, which is safe because receivers
// re-read full state rather than consuming deltas.
type MemoryBus struct {
	mu   sync.Mutex
	subs map[string][]*memorySub
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		subs: make(map[string][]*memorySub),
	}
}

type memorySub struct {
	bus    *MemoryBus
	gameID string
	ch     chan struct{}
	once   sync.Once
}

func (s *memorySub) C() <-chan struct{} {
	return s.ch
}

func (s *memorySub) Close() error {
	s.once.Do(func() {
		s.bus.remove(s)
		close(s.ch)
	})
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, gameID string) (Subscription, error) {
	sub := &memorySub{
		bus:    b,
		gameID: gameID,
		ch:     make(chan struct{}, 8),
	}

	b.mu.Lock()
	b.subs[gameID] = append(b.subs[gameID], sub)
	b.mu.Unlock()

	return sub, nil
}

func (b *MemoryBus) Publish(ctx context.Context, gameID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs[gameID] {
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// remove runs under the bus lock, so no publish can race the channel close.
func (b *MemoryBus) remove(sub *memorySub) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[sub.gameID]
	for i, s := range subs {
		if s == sub {
			b.subs[sub.gameID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[sub.gameID]) == 0 {
		delete(b.subs, sub.gameID)
	}
}
