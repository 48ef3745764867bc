package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	constants "vortfluo/internal/constants"
	models "vortfluo/internal/models"
)

// MemoryGameStore keeps games in a map. Same contract as the Redis store;
// used in tests and for running without a backing server.
type MemoryGameStore struct {
	mu    sync.Mutex
	games map[string]*models.Game
	words WordSource
}

func NewMemoryGameStore(words WordSource) *MemoryGameStore {
	return &MemoryGameStore{
		games: make(map[string]*models.Game),
		words: words,
	}
}

func (s *MemoryGameStore) CreateGame(ctx context.Context) (models.Game, error) {
	word, err := s.words.Draw(ctx)
	if err != nil {
		return models.Game{}, err
	}

	g := &models.Game{
		ID:        uuid.NewString(),
		Word:      word,
		Attempts:  make([]models.AttemptResult, 0, constants.MaxAttempts),
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.games[g.ID] = g
	s.mu.Unlock()

	return copyGame(g), nil
}

func (s *MemoryGameStore) GetGame(ctx context.Context, id string) (models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[id]
	if !ok {
		return models.Game{}, ErrNotFound
	}
	return copyGame(g), nil
}

func (s *MemoryGameStore) AppendAttempt(ctx context.Context, id string, result models.AttemptResult) (models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[id]
	if !ok {
		return models.Game{}, ErrNotFound
	}
	if len(g.Attempts) >= constants.MaxAttempts {
		return models.Game{}, ErrAttemptLimit
	}

	g.Attempts = append(g.Attempts, result)
	return copyGame(g), nil
}

func copyGame(g *models.Game) models.Game {
	out := *g
	out.Attempts = make([]models.AttemptResult, len(g.Attempts))
	for i, a := range g.Attempts {
		out.Attempts[i] = append(models.AttemptResult(nil), a...)
	}
	return out
}
