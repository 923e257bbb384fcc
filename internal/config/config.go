package config

import (
	"os"
	"strconv"
	"time"
)

// Config is everything the server reads from the environment. Values come
// from the process env, optionally seeded from a .env file by main.
type Config struct {
	Addr           string
	BoardPin       string
	AuthTTL        time.Duration
	MaxCards       int
	MaxSubscribers int
	SettingsFile   string
	PatternCycle   time.Duration
}

func FromEnv() Config {
	return Config{
		Addr:           getString("BINGO_ADDR", ":8080"),
		BoardPin:       getString("BINGO_BOARD_PIN", "8472"),
		AuthTTL:        getDuration("BINGO_AUTH_TTL", 10*time.Minute),
		MaxCards:       getInt("BINGO_MAX_CARDS", 32),
		MaxSubscribers: getInt("BINGO_MAX_SUBSCRIBERS", 16),
		SettingsFile:   getString("BINGO_SETTINGS_FILE", "bingo-settings.json"),
		PatternCycle:   getDuration("BINGO_PATTERN_CYCLE", 1500*time.Millisecond),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
