package main

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		log.Warn().Str("key", key).Err(err).Dur("fallback", fallback).Msg("invalid duration, using default")
		return fallback
	}
	return d
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Warn().Str("key", key).Err(err).Int("fallback", fallback).Msg("invalid int, using default")
		return fallback
	}
	return i
}
