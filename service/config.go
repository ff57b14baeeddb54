package service

import (
	"os"
	"strings"
	"time"
)

// Config is the environment-driven service configuration.
type Config struct {
	Port        string        // PORT, default 8080
	LogMode     string        // LOG_MODE, "dev" or "prod"
	RedisAddr   string        // REDIS_ADDR, empty = in-memory stores
	RedisPrefix string        // REDIS_PREFIX, default "bw"
	CatalogFile string        // CATALOG_FILE, optional JSON seed
	NudgeEvery  time.Duration // NUDGE_INTERVAL, 0 = scheduler off
}

// LoadConfig reads configuration from the environment, applying defaults.
func LoadConfig() Config {
	return Config{
		Port:        getEnv("PORT", "8080"),
		LogMode:     getEnv("LOG_MODE", "dev"),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "bw"),
		CatalogFile: getEnv("CATALOG_FILE", ""),
		NudgeEvery:  getEnvDuration("NUDGE_INTERVAL", 0),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
