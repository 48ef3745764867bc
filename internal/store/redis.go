package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	constants "vortfluo/internal/constants"
	models "vortfluo/internal/models"
)

// RedisGameStore persists each game as a JSON document under its own key.
// AppendAttempt serializes writers per game id with an in-process lock, so
// racing appends from the same session stay monotonic and gap-free.
type RedisGameStore struct {
	rdb   *redis.Client
	words WordSource
	ttl   time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRedisGameStore(rdb *redis.Client, words WordSource, ttl time.Duration) *RedisGameStore {
	return &RedisGameStore{
		rdb:   rdb,
		words: words,
		ttl:   ttl,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *RedisGameStore) key(id string) string {
	return fmt.Sprintf("game:%s:doc", id)
}

func (s *RedisGameStore) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *RedisGameStore) CreateGame(ctx context.Context) (models.Game, error) {
	word, err := s.words.Draw(ctx)
	if err != nil {
		return models.Game{}, err
	}

	g := models.Game{
		ID:        uuid.NewString(),
		Word:      word,
		Attempts:  make([]models.AttemptResult, 0, constants.MaxAttempts),
		CreatedAt: time.Now(),
	}
	if err := s.save(ctx, g); err != nil {
		return models.Game{}, err
	}
	return g, nil
}

func (s *RedisGameStore) GetGame(ctx context.Context, id string) (models.Game, error) {
	val, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return models.Game{}, ErrNotFound
	}
	if err != nil {
		return models.Game{}, err
	}

	var g models.Game
	if err := json.Unmarshal(val, &g); err != nil {
		return models.Game{}, err
	}
	return g, nil
}

func (s *RedisGameStore) AppendAttempt(ctx context.Context, id string, result models.AttemptResult) (models.Game, error) {
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()

	g, err := s.GetGame(ctx, id)
	if err != nil {
		return models.Game{}, err
	}
	if len(g.Attempts) >= constants.MaxAttempts {
		return models.Game{}, ErrAttemptLimit
	}

	g.Attempts = append(g.Attempts, result)
	if err := s.save(ctx, g); err != nil {
		return models.Game{}, err
	}
	return g, nil
}

func (s *RedisGameStore) save(ctx context.Context, g models.Game) error {
	b, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(g.ID), b, s.ttl).Err()
}
