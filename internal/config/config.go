// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the process reads from the environment.
type Config struct {
	// StoreBackend selects the shared store: "memory" or "redis".
	StoreBackend string
	RedisAddr    string
	RedisPass    string

	LogLevel logrus.Level

	// Seed for deterministic deals and AI decisions. Zero means use the
	// clock.
	Seed int64

	// Players is the table size for the local simulation, 3 to 6.
	Players int

	ThinkDelayMin    time.Duration
	ThinkDelayMax    time.Duration
	TrickResultDelay time.Duration
}

// Load reads the environment, after merging in a .env file if present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		StoreBackend:     envStr("KINGSIR_STORE", "memory"),
		RedisAddr:        envStr("KINGSIR_REDIS_ADDR", "localhost:6379"),
		RedisPass:        os.Getenv("KINGSIR_REDIS_PASSWORD"),
		LogLevel:         envLevel("KINGSIR_LOG_LEVEL", logrus.InfoLevel),
		Seed:             envInt64("KINGSIR_SEED", 0),
		Players:          envInt("KINGSIR_PLAYERS", 4),
		ThinkDelayMin:    envDuration("KINGSIR_THINK_DELAY_MIN", 500*time.Millisecond),
		ThinkDelayMax:    envDuration("KINGSIR_THINK_DELAY_MAX", 1500*time.Millisecond),
		TrickResultDelay: envDuration("KINGSIR_TRICK_RESULT_DELAY", 3*time.Second),
	}
	return cfg
}

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envLevel(key string, def logrus.Level) logrus.Level {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if lvl, err := logrus.ParseLevel(v); err == nil {
			return lvl
		}
	}
	return def
}
