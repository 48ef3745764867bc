package stream

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	bus "vortfluo/internal/bus"
	game "vortfluo/internal/game"
	models "vortfluo/internal/models"
)

const (
	EventSignalReset = "signal-reset"
	EventFragment    = "fragment"
)

// Pusher sends one outbound message on the server-to-client push stream.
// The wire framing belongs to the transport adapter.
type Pusher interface {
	Push(event, data string) error
}

// Renderer turns stored game state into push payloads.
type Renderer interface {
	Board(g models.Game) (string, error)
	ResetSignal() string
	WonMessage(tries int) string
	LostMessage(word string) string
}

// GameReader is the slice of the store the stream loop needs.
type GameReader interface {
	GetGame(ctx context.Context, id string) (models.Game, error)
}

// Controller drives one client's live view of one game: subscribe to the
// game's topic, push the current state, then re-read and re-push on every
// notification until the connection goes away.
type Controller struct {
	Store    GameReader
	Bus      bus.Bus
	Renderer Renderer

	// EndDelay is how long the final board stays visible before the
	// terminal message replaces it.
	EndDelay time.Duration
}

// Run blocks until ctx is cancelled or the stream fails. Store read
// failures are fatal for the stream: skipping an update would leave the
// client display out of sync with durable state.
func (c *Controller) Run(ctx context.Context, gameID string, push Pusher) error {
	sub, err := c.Bus.Subscribe(ctx, gameID)
	if err != nil {
		return err
	}
	defer func() {
		_ = sub.Close()
	}()

	log.Info().Str("game", gameID).Msg("update stream opened")

	if err := c.pushState(ctx, gameID, push); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("game", gameID).Msg("update stream closed")
			return nil
		case _, ok := <-sub.C():
			if !ok {
				return nil
			}
			if err := c.pushState(ctx, gameID, push); err != nil {
				return err
			}
		}
	}
}

func (c *Controller) pushState(ctx context.Context, gameID string, push Pusher) error {
	g, err := c.Store.GetGame(ctx, gameID)
	if err != nil {
		return err
	}

	if err := push.Push(EventSignalReset, c.Renderer.ResetSignal()); err != nil {
		return err
	}
	board, err := c.Renderer.Board(g)
	if err != nil {
		return err
	}
	if err := push.Push(EventFragment, board); err != nil {
		return err
	}

	switch game.Resolve(g.Attempts) {
	case models.OutcomeWon:
		// Display delay before the terminal message; deliberately not
		// cancellable. A disconnect mid-delay just drops the push.
		time.Sleep(c.EndDelay)
		return push.Push(EventFragment, c.Renderer.WonMessage(g.AttemptCount()))
	case models.OutcomeLost:
		time.Sleep(c.EndDelay)
		return push.Push(EventFragment, c.Renderer.LostMessage(g.Word))
	}
	return nil
}
