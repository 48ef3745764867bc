package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	constants "vortfluo/internal/constants"
)

var cspTemplate = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'; object-src 'none'; base-uri 'self'; form-action 'self'; frame-ancestors 'none';"

func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Security-Policy", cspTemplate)
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
		}
		c.Next()
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.Request.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := context.WithValue(c.Request.Context(), constants.RequestIDKey, reqID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-Id", reqID)
		c.Next()
	}
}

func (app *App) getLimiter(key string) *rate.Limiter {
	app.LimiterMutex.RLock()
	limWithTime, ok := app.LimiterMap[key]
	app.LimiterMutex.RUnlock()
	if ok {
		app.LimiterMutex.Lock()
		if limWithTime, ok = app.LimiterMap[key]; ok {
			limWithTime.LastAccess = time.Now()
		}
		app.LimiterMutex.Unlock()
		return limWithTime.Limiter
	}

	app.LimiterMutex.Lock()
	defer app.LimiterMutex.Unlock()
	if limWithTime, ok = app.LimiterMap[key]; ok {
		limWithTime.LastAccess = time.Now()
		return limWithTime.Limiter
	}

	rps := app.Cfg.RateLimitRPS
	if rps <= 0 {
		rps = 1
	}
	lim := rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), app.Cfg.RateLimitBurst)
	app.LimiterMap[key] = &RateLimiterWithTime{
		Limiter:    lim,
		LastAccess: time.Now(),
	}
	return lim
}

func (app *App) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !app.getLimiter(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please slow down."})
			return
		}
		c.Next()
	}
}

func (app *App) applyCacheHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == constants.RouteUpdates {
			// The update stream sets its own no-cache headers.
			c.Next()
			return
		}
		if app.Cfg.IsProduction && strings.HasPrefix(c.Request.URL.Path, "/static/") {
			cachecontrol.New(cachecontrol.Config{
				Public: true,
				MaxAge: cachecontrol.Duration(app.Cfg.StaticCacheAge),
			})(c)
			c.Header("Vary", "Accept-Encoding")
			return
		}
		cachecontrol.New(cachecontrol.Config{
			NoStore:        true,
			NoCache:        true,
			MustRevalidate: true,
		})(c)
	}
}

func (app *App) cleanupStaleRateLimiters() {
	app.LimiterMutex.Lock()
	defer app.LimiterMutex.Unlock()

	cutoffTime := time.Now().Add(-app.Cfg.RateLimiterTTL)
	removedCount := 0

	for key, limWithTime := range app.LimiterMap {
		if limWithTime.LastAccess.Before(cutoffTime) {
			delete(app.LimiterMap, key)
			removedCount++
		}
	}

	if removedCount > 0 {
		log.Info().Int("count", removedCount).Msg("cleaned up stale rate limiters")
	}
}

func (app *App) startLimiterCleanup() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			app.cleanupStaleRateLimiters()
		}
	}()
}
