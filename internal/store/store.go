package store

import (
	"context"
	"errors"

	models "vortfluo/internal/models"
)

var (
	ErrNotFound     = errors.New("game not found")
	ErrAttemptLimit = errors.New("attempt limit reached")
)

// WordSource draws the secret word for a new game.
type WordSource interface {
	Draw(ctx context.Context) (string, error)
}

// GameStore is the per-game document store. It is the single source of
// truth: readers notified over the bus always come back here for state.
type GameStore interface {
	// CreateGame persists a new game with an empty attempt history and
	// returns it. It always creates; callers decide whether one already
	// exists for their session.
	CreateGame(ctx context.Context) (models.Game, error)

	GetGame(ctx context.Context, id string) (models.Game, error)

	// AppendAttempt stores the result at the next attempt index. The
	// read-modify-write is atomic per game id, and fails with
	// ErrAttemptLimit once the game holds MaxAttempts attempts.
	AppendAttempt(ctx context.Context, id string, result models.AttemptResult) (models.Game, error)
}
