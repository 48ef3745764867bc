package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	constants "vortfluo/internal/constants"
	models "vortfluo/internal/models"
)

type stubSource struct {
	word string
}

func (s stubSource) Draw(ctx context.Context) (string, error) {
	return s.word, nil
}

func losingAttempt() models.AttemptResult {
	result := make(models.AttemptResult, constants.WordLength)
	for i := range result {
		result[i] = models.GuessResult{Letter: "X", Status: constants.GuessStatusAbsent}
	}
	return result
}

func TestMemoryStoreCreateGame(t *testing.T) {
	s := NewMemoryGameStore(stubSource{word: "PLANET"})

	g, err := s.CreateGame(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, "PLANET", g.Word)
	assert.Equal(t, 0, g.AttemptCount())

	// Always creates: two calls yield two independent games.
	g2, err := s.CreateGame(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, g.ID, g2.ID)
}

func TestMemoryStoreGetGameNotFound(t *testing.T) {
	s := NewMemoryGameStore(stubSource{word: "PLANET"})

	_, err := s.GetGame(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreAppendAttempt(t *testing.T) {
	s := NewMemoryGameStore(stubSource{word: "PLANET"})
	g, err := s.CreateGame(context.Background())
	require.NoError(t, err)

	updated, err := s.AppendAttempt(context.Background(), g.ID, losingAttempt())
	require.NoError(t, err)
	assert.Equal(t, 1, updated.AttemptCount())

	stored, err := s.GetGame(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.AttemptCount())
}

func TestMemoryStoreAppendAttemptUnknownGame(t *testing.T) {
	s := NewMemoryGameStore(stubSource{word: "PLANET"})

	_, err := s.AppendAttempt(context.Background(), "missing", losingAttempt())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreAttemptLimit(t *testing.T) {
	s := NewMemoryGameStore(stubSource{word: "PLANET"})
	g, err := s.CreateGame(context.Background())
	require.NoError(t, err)

	for i := 0; i < constants.MaxAttempts; i++ {
		_, err := s.AppendAttempt(context.Background(), g.ID, losingAttempt())
		require.NoError(t, err)
	}

	_, err = s.AppendAttempt(context.Background(), g.ID, losingAttempt())
	assert.ErrorIs(t, err, ErrAttemptLimit)

	stored, err := s.GetGame(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.MaxAttempts, stored.AttemptCount())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryGameStore(stubSource{word: "PLANET"})
	g, err := s.CreateGame(context.Background())
	require.NoError(t, err)

	_, err = s.AppendAttempt(context.Background(), g.ID, losingAttempt())
	require.NoError(t, err)

	first, err := s.GetGame(context.Background(), g.ID)
	require.NoError(t, err)
	first.Attempts[0][0].Status = constants.GuessStatusExact

	second, err := s.GetGame(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.GuessStatusAbsent, second.Attempts[0][0].Status,
		"mutating a returned game must not leak into the store")
}
