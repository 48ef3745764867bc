package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveToken(t *testing.T, sub Subscription) bool {
	t.Helper()
	select {
	case _, ok := <-sub.C():
		return ok
	case <-time.After(100 * time.Millisecond):
		return false
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	b := NewMemoryBus()
	require.NoError(t, b.Publish(context.Background(), "g1"))
}

func TestSubscribeReceivesPublish(t *testing.T) {
	b := NewMemoryBus()

	sub, err := b.Subscribe(context.Background(), "g1")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, b.Publish(context.Background(), "g1"))
	assert.True(t, receiveToken(t, sub), "expected a token after publish")
}

func TestNoReplayForLateSubscriber(t *testing.T) {
	b := NewMemoryBus()

	require.NoError(t, b.Publish(context.Background(), "g1"))

	sub, err := b.Subscribe(context.Background(), "g1")
	require.NoError(t, err)
	defer sub.Close()

	select {
	case <-sub.C():
		t.Fatal("subscription observed a publish made before it existed")
	case <-time.After(50 * time.Millisecond):
	}

	// A fresh publish does arrive.
	require.NoError(t, b.Publish(context.Background(), "g1"))
	assert.True(t, receiveToken(t, sub))
}

func TestEachSubscriberGetsItsOwnToken(t *testing.T) {
	b := NewMemoryBus()

	sub1, err := b.Subscribe(context.Background(), "g1")
	require.NoError(t, err)
	defer sub1.Close()
	sub2, err := b.Subscribe(context.Background(), "g1")
	require.NoError(t, err)
	defer sub2.Close()

	require.NoError(t, b.Publish(context.Background(), "g1"))
	assert.True(t, receiveToken(t, sub1))
	assert.True(t, receiveToken(t, sub2))
}

func TestTopicsAreIsolated(t *testing.T) {
	b := NewMemoryBus()

	sub, err := b.Subscribe(context.Background(), "g1")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, b.Publish(context.Background(), "g2"))

	select {
	case <-sub.C():
		t.Fatal("received a token published on another game's topic")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := NewMemoryBus()

	sub, err := b.Subscribe(context.Background(), "g1")
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	// Channel is closed after Close.
	_, ok := <-sub.C()
	assert.False(t, ok)

	// Publishing after close neither panics nor delivers.
	require.NoError(t, b.Publish(context.Background(), "g1"))
}
