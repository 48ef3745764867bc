package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	bus "vortfluo/internal/bus"
	constants "vortfluo/internal/constants"
	game "vortfluo/internal/game"
	models "vortfluo/internal/models"
	session "vortfluo/internal/session"
	stats "vortfluo/internal/stats"
	store "vortfluo/internal/store"
	stream "vortfluo/internal/stream"
)

type Handler struct {
	Store    store.GameStore
	Bus      bus.Bus
	Stream   *stream.Controller
	Sessions *session.Manager
	Results  *stats.Store

	StartTime time.Time
}

// Home serves the page shell. The board itself arrives over the update
// stream once the client connects to it.
func (h *Handler) Home(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := h.Sessions.SessionID(c)
	if _, err := h.Sessions.EnsureGame(ctx, sessionID); err != nil {
		log.Error().Err(err).Str("session", sessionID).Msg("failed to ensure game")
		c.String(http.StatusInternalServerError, "failed to start game")
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"title":       "Vortfluo",
		"message":     fmt.Sprintf("Guess the %d-letter word!", constants.WordLength),
		"wordLength":  constants.WordLength,
		"maxAttempts": constants.MaxAttempts,
	})
}

// Updates is the server-push stream: one long-lived SSE connection per
// session, driven by the stream controller until the client disconnects.
func (h *Handler) Updates(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := h.Sessions.SessionID(c)
	gameID, err := h.Sessions.EnsureGame(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Str("session", sessionID).Msg("failed to ensure game")
		c.String(http.StatusInternalServerError, "failed to start game")
		return
	}

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Writer.Flush()

	if err := h.Stream.Run(ctx, gameID, &ssePusher{w: c.Writer}); err != nil {
		// Fatal for this connection only; the client sees a dead stream.
		log.Error().Err(err).Str("game", gameID).Msg("update stream failed")
	}
}

type ssePusher struct {
	mu sync.Mutex
	w  gin.ResponseWriter
}

func (p *ssePusher) Push(event, data string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := sse.Encode(p.w, sse.Event{Event: event, Data: data}); err != nil {
		return err
	}
	p.w.Flush()
	return nil
}

type attemptPayload struct {
	Guess string `json:"guess"`
}

// Attempt scores a guess, appends it to the game document and then, only
// after the write is durable, publishes a notification on the game's topic.
func (h *Handler) Attempt(c *gin.Context) {
	ctx := c.Request.Context()

	var payload attemptPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrorCodeInvalidLength, "message": "invalid request body"})
		return
	}

	sessionID, err := c.Cookie(constants.SessionCookieName)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": constants.ErrorCodeNotFound, "message": "no active game"})
		return
	}
	gameID, ok := h.Sessions.Lookup(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": constants.ErrorCodeNotFound, "message": "no active game"})
		return
	}

	g, err := h.Store.GetGame(ctx, gameID)
	if err != nil {
		h.storeError(c, gameID, err)
		return
	}

	guess := strings.ToUpper(strings.TrimSpace(payload.Guess))
	result, err := game.CheckGuess(g.Word, guess)
	if err != nil {
		if errors.Is(err, game.ErrInvalidGuessLength) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": constants.ErrorCodeInvalidLength, "message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": constants.ErrorCodeStoreFailure, "message": err.Error()})
		return
	}

	updated, err := h.Store.AppendAttempt(ctx, gameID, result)
	if err != nil {
		h.storeError(c, gameID, err)
		return
	}

	h.recordIfFinished(c, updated)

	// The write stands even when the publish fails; the stream just
	// misses this update.
	if err := h.Bus.Publish(ctx, gameID); err != nil {
		log.Warn().Err(err).Str("game", gameID).Msg("publish failed after durable write")
	}

	c.Status(http.StatusOK)
}

func (h *Handler) recordIfFinished(c *gin.Context, g models.Game) {
	outcome := game.Resolve(g.Attempts)
	if outcome == models.OutcomeOngoing || h.Results == nil {
		return
	}
	won := outcome == models.OutcomeWon
	if err := h.Results.RecordResult(c.Request.Context(), g.ID, won, g.AttemptCount(), g.Word); err != nil {
		log.Warn().Err(err).Str("game", g.ID).Msg("failed to record result")
	}
}

func (h *Handler) storeError(c *gin.Context, gameID string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": constants.ErrorCodeNotFound, "message": "game not found"})
	case errors.Is(err, store.ErrAttemptLimit):
		c.JSON(http.StatusConflict, gin.H{"error": constants.ErrorCodeAttemptLimit, "message": "no attempts left"})
	default:
		log.Error().Err(err).Str("game", gameID).Msg("store failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": constants.ErrorCodeStoreFailure, "message": "storage error"})
	}
}

// NewGame drops the session's current game mapping and starts a fresh one.
func (h *Handler) NewGame(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := h.Sessions.SessionID(c)
	h.Sessions.Reset(sessionID)

	if _, err := h.Sessions.EnsureGame(ctx, sessionID); err != nil {
		log.Error().Err(err).Str("session", sessionID).Msg("failed to create game")
		c.JSON(http.StatusInternalServerError, gin.H{"error": constants.ErrorCodeStoreFailure, "message": "failed to create game"})
		return
	}
	c.Redirect(http.StatusSeeOther, constants.RouteHome)
}

func (h *Handler) Stats(c *gin.Context) {
	summary, err := h.Results.Summary(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to read stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": constants.ErrorCodeStoreFailure, "message": "storage error"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": formatUptime(time.Since(h.StartTime)),
	})
}

func formatUptime(d time.Duration) string {
	seconds := int(d.Seconds()) % 60
	minutes := int(d.Minutes()) % 60
	hours := int(d.Hours())
	switch {
	case hours > 0:
		return fmt.Sprintf("%d hour%s, %d minute%s, %d second%s",
			hours, plural(hours),
			minutes, plural(minutes),
			seconds, plural(seconds))
	case minutes > 0:
		return fmt.Sprintf("%d minute%s, %d second%s",
			minutes, plural(minutes),
			seconds, plural(seconds))
	default:
		return fmt.Sprintf("%d second%s", seconds, plural(seconds))
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
