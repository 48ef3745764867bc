package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	bus "vortfluo/internal/bus"
	constants "vortfluo/internal/constants"
	handlers "vortfluo/internal/handlers"
	render "vortfluo/internal/render"
	session "vortfluo/internal/session"
	stats "vortfluo/internal/stats"
	store "vortfluo/internal/store"
	stream "vortfluo/internal/stream"
	words "vortfluo/internal/words"
)

func main() {
	_ = godotenv.Load()

	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	isProduction := os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production"
	log.Info().Bool("production", isProduction).Msg("starting vortfluo")

	cfg := loadConfig(isProduction)

	source, err := words.Load(cfg.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load words")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
	}

	results, err := stats.Open(cfg.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SQLitePath).Msg("failed to open stats store")
	}
	defer func() {
		_ = results.Close()
	}()

	gameStore := store.NewRedisGameStore(rdb, source, cfg.GameTTL)
	notifyBus := bus.NewRedisBus(rdb)
	sessions := session.NewManager(gameStore, cfg.CookieMaxAge, cfg.SessionTTL, cfg.IsProduction)

	controller := &stream.Controller{
		Store:    gameStore,
		Bus:      notifyBus,
		Renderer: render.HTML{},
		EndDelay: cfg.WinDisplayDelay,
	}

	h := &handlers.Handler{
		Store:     gameStore,
		Bus:       notifyBus,
		Stream:    controller,
		Sessions:  sessions,
		Results:   results,
		StartTime: time.Now(),
	}

	app := &App{
		Cfg:        cfg,
		StartTime:  time.Now(),
		LimiterMap: make(map[string]*RateLimiterWithTime),
	}

	router := gin.Default()

	router.Use(requestIDMiddleware())
	router.Use(securityHeadersMiddleware())
	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedPaths([]string{constants.RouteUpdates})))
	router.Use(app.applyCacheHeaders())

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		log.Warn().Err(err).Msg("failed to set trusted proxies")
	}

	router.LoadHTMLGlob("templates/*.html")
	router.Static("/static", "./static")

	router.GET(constants.RouteHome, h.Home)
	router.GET(constants.RouteUpdates, h.Updates)
	router.POST(constants.RouteAttempt, app.rateLimitMiddleware(), h.Attempt)
	router.POST(constants.RouteNewGame, app.rateLimitMiddleware(), h.NewGame)
	router.GET(constants.RouteStats, h.Stats)
	router.GET(constants.RouteHealthz, h.Healthz)

	sessions.StartCleanup()
	app.startLimiterCleanup()

	app.startServer(router)
}

func loadConfig(isProduction bool) Config {
	return Config{
		Port:            getEnv("PORT", "8080"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		GameTTL:         getEnvDuration("GAME_TTL", 24*time.Hour),
		SQLitePath:      getEnv("SQLITE_PATH", "data/vortfluo.db"),
		WordsFile:       getEnv("WORDS_FILE", "data/words.json"),
		CookieMaxAge:    getEnvDuration("COOKIE_MAX_AGE", 2*time.Hour),
		SessionTTL:      getEnvDuration("SESSION_TTL", 3*time.Hour),
		RateLimitRPS:    getEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 10),
		RateLimiterTTL:  getEnvDuration("RATE_LIMITER_TTL", 1*time.Hour),
		WinDisplayDelay: getEnvDuration("WIN_DISPLAY_DELAY", 3*time.Second),
		StaticCacheAge:  getEnvDuration("STATIC_CACHE_AGE", 5*time.Minute),
		IsProduction:    isProduction,
	}
}

func (app *App) startServer(router *gin.Engine) {
	srv := &http.Server{
		Addr:              ":" + app.Cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// WriteTimeout stays 0: the update stream holds connections open
		// for the whole session.
		IdleTimeout: 120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		log.Info().Msg("shutdown signal received, shutting down server gracefully")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("http server shutdown")
		}
		close(idleConnsClosed)
	}()

	log.Info().Str("port", app.Cfg.Port).Msg("server starting")
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed to start")
	}
	<-idleConnsClosed
	log.Info().Msg("server shutdown complete")
}
