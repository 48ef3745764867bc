package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	constants "vortfluo/internal/constants"
	models "vortfluo/internal/models"
)

// GameCreator is the slice of the store the session boundary needs.
type GameCreator interface {
	CreateGame(ctx context.Context) (models.Game, error)
}

type entry struct {
	gameID     string
	lastAccess time.Time
}

// Manager owns the mapping from browsing session to game id. The core
// never sees session identity; every store and bus operation below this
// layer takes an explicit game id.
type Manager struct {
	mu    sync.Mutex
	games map[string]entry

	store        GameCreator
	cookieMaxAge time.Duration
	ttl          time.Duration
	secure       bool
}

func NewManager(store GameCreator, cookieMaxAge, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		games:        make(map[string]entry),
		store:        store,
		cookieMaxAge: cookieMaxAge,
		ttl:          ttl,
		secure:       secure,
	}
}

// SessionID returns the session cookie, issuing a fresh one if absent.
func (m *Manager) SessionID(c *gin.Context) string {
	sessionID, err := c.Cookie(constants.SessionCookieName)
	if err != nil || len(sessionID) < 10 {
		sessionID = uuid.NewString()
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(constants.SessionCookieName, sessionID, int(m.cookieMaxAge.Seconds()), "/", "", m.secure, true)
		log.Info().Str("session", sessionID).Msg("created new session")
	}
	return sessionID
}

// EnsureGame returns the session's game id, creating the game on first
// contact. At most one game is ever created per session; the lock covers
// the create so concurrent first contacts cannot double-create.
func (m *Manager) EnsureGame(ctx context.Context, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.games[sessionID]; ok {
		e.lastAccess = time.Now()
		m.games[sessionID] = e
		return e.gameID, nil
	}

	g, err := m.store.CreateGame(ctx)
	if err != nil {
		return "", err
	}
	m.games[sessionID] = entry{gameID: g.ID, lastAccess: time.Now()}
	log.Info().Str("session", sessionID).Str("game", g.ID).Msg("created game for session")
	return g.ID, nil
}

// Lookup returns the session's game id without creating one.
func (m *Manager) Lookup(sessionID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.games[sessionID]
	if ok {
		e.lastAccess = time.Now()
		m.games[sessionID] = e
	}
	return e.gameID, ok
}

// Reset drops the session's mapping; the next EnsureGame starts a fresh
// game. The old game document stays in the store until its TTL expires.
func (m *Manager) Reset(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, sessionID)
	log.Info().Str("session", sessionID).Msg("reset session game")
}

func (m *Manager) CleanupExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-m.ttl)
	removed := 0
	for sessionID, e := range m.games {
		if e.lastAccess.Before(cutoff) {
			delete(m.games, sessionID)
			removed++
		}
	}

	if removed > 0 {
		log.Info().Int("count", removed).Msg("cleaned up stale sessions")
	}
}

func (m *Manager) StartCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	go func() {
		defer ticker.Stop()
		for range ticker.C {
			m.CleanupExpired()
		}
	}()
	log.Info().Msg("started session cleanup goroutine")
}
