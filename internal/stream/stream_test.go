package stream

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bus "vortfluo/internal/bus"
	constants "vortfluo/internal/constants"
	game "vortfluo/internal/game"
	models "vortfluo/internal/models"
	render "vortfluo/internal/render"
	store "vortfluo/internal/store"
)

type stubSource struct{ word string }

func (s stubSource) Draw(ctx context.Context) (string, error) {
	return s.word, nil
}

type recordingPusher struct {
	mu     sync.Mutex
	events []string
	data   []string
}

func (p *recordingPusher) Push(event, data string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	p.data = append(p.data, data)
	return nil
}

func (p *recordingPusher) snapshot() ([]string, []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...), append([]string(nil), p.data...)
}

func (p *recordingPusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func newFixture(t *testing.T) (*store.MemoryGameStore, *bus.MemoryBus, *Controller, models.Game) {
	t.Helper()
	s := store.NewMemoryGameStore(stubSource{word: "PLANET"})
	b := bus.NewMemoryBus()
	g, err := s.CreateGame(context.Background())
	require.NoError(t, err)
	c := &Controller{
		Store:    s,
		Bus:      b,
		Renderer: render.HTML{},
		EndDelay: 0,
	}
	return s, b, c, g
}

func TestRunPushesInitialState(t *testing.T) {
	_, _, c, g := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	push := &recordingPusher{}
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx, g.ID, push)
	}()

	require.Eventually(t, func() bool { return push.count() >= 2 }, time.Second, 5*time.Millisecond)

	events, data := push.snapshot()
	assert.Equal(t, EventSignalReset, events[0])
	assert.Equal(t, EventFragment, events[1])
	assert.Contains(t, data[1], `id="main"`)

	cancel()
	require.NoError(t, <-done)
}

func TestRunReactsToPublish(t *testing.T) {
	s, b, c, g := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	push := &recordingPusher{}
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx, g.ID, push)
	}()

	require.Eventually(t, func() bool { return push.count() >= 2 }, time.Second, 5*time.Millisecond)

	result, err := game.CheckGuess("PLANET", "SILVER")
	require.NoError(t, err)
	_, err = s.AppendAttempt(ctx, g.ID, result)
	require.NoError(t, err)
	require.NoError(t, b.Publish(ctx, g.ID))

	require.Eventually(t, func() bool { return push.count() >= 4 }, time.Second, 5*time.Millisecond)

	events, data := push.snapshot()
	assert.Equal(t, EventSignalReset, events[2])
	assert.Equal(t, EventFragment, events[3])
	assert.Contains(t, data[3], constants.GuessStatusAbsent)

	cancel()
	require.NoError(t, <-done)
}

func TestRunPushesWonMessage(t *testing.T) {
	s, b, c, g := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	push := &recordingPusher{}
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx, g.ID, push)
	}()

	require.Eventually(t, func() bool { return push.count() >= 2 }, time.Second, 5*time.Millisecond)

	result, err := game.CheckGuess("PLANET", "PLANET")
	require.NoError(t, err)
	_, err = s.AppendAttempt(ctx, g.ID, result)
	require.NoError(t, err)
	require.NoError(t, b.Publish(ctx, g.ID))

	// Board update plus the terminal message.
	require.Eventually(t, func() bool { return push.count() >= 5 }, time.Second, 5*time.Millisecond)

	_, data := push.snapshot()
	assert.Contains(t, data[4], "found the word in 1 tries")

	cancel()
	require.NoError(t, <-done)
}

func TestRunPushesLostMessageWithWord(t *testing.T) {
	s, b, c, g := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	push := &recordingPusher{}
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx, g.ID, push)
	}()

	require.Eventually(t, func() bool { return push.count() >= 2 }, time.Second, 5*time.Millisecond)

	result, err := game.CheckGuess("PLANET", "SILVER")
	require.NoError(t, err)
	for i := 0; i < constants.MaxAttempts; i++ {
		_, err = s.AppendAttempt(ctx, g.ID, result)
		require.NoError(t, err)
	}
	require.NoError(t, b.Publish(ctx, g.ID))

	require.Eventually(t, func() bool { return push.count() >= 5 }, time.Second, 5*time.Millisecond)

	_, data := push.snapshot()
	assert.Contains(t, data[4], "the word was PLANET")

	cancel()
	require.NoError(t, <-done)
}

type failingReader struct {
	inner GameReader
	calls int
}

func (r *failingReader) GetGame(ctx context.Context, id string) (models.Game, error) {
	r.calls++
	if r.calls > 1 {
		return models.Game{}, errors.New("store unavailable")
	}
	return r.inner.GetGame(ctx, id)
}

func TestRunStoreFailureIsFatal(t *testing.T) {
	s, b, c, g := newFixture(t)
	c.Store = &failingReader{inner: s}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	push := &recordingPusher{}
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx, g.ID, push)
	}()

	require.Eventually(t, func() bool { return push.count() >= 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, b.Publish(ctx, g.ID))

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "store unavailable"))
	case <-time.After(time.Second):
		t.Fatal("stream did not terminate on store failure")
	}
}

func TestRunUnsubscribesOnCancel(t *testing.T) {
	_, b, c, g := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	push := &recordingPusher{}
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx, g.ID, push)
	}()

	require.Eventually(t, func() bool { return push.count() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	// After the loop exits the bus registration is gone: a publish
	// delivers nothing and the pusher sees no further events.
	before := push.count()
	require.NoError(t, b.Publish(context.Background(), g.ID))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, push.count())
}
