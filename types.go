package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Config struct {
	Port            string
	RedisAddr       string
	RedisDB         int
	GameTTL         time.Duration
	SQLitePath      string
	WordsFile       string
	CookieMaxAge    time.Duration
	SessionTTL      time.Duration
	RateLimitRPS    int
	RateLimitBurst  int
	RateLimiterTTL  time.Duration
	WinDisplayDelay time.Duration
	StaticCacheAge  time.Duration
	IsProduction    bool
}

type RateLimiterWithTime struct {
	Limiter    *rate.Limiter
	LastAccess time.Time
}

type App struct {
	Cfg          Config
	StartTime    time.Time
	LimiterMap   map[string]*RateLimiterWithTime
	LimiterMutex sync.RWMutex
}
