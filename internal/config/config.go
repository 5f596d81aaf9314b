package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port        string
	DatabaseURL string
	EnableDB    bool

	RedisAddr     string
	RedisPassword string

	StrokeModelURL     string
	AlzheimersModelURL string
	TumorModelURL      string
	InferenceTimeout   time.Duration

	Workers  int
	LogLevel string
}

// Load reads the optional .env file and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		EnableDB:           strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		StrokeModelURL:     os.Getenv("STROKE_MODEL_URL"),
		AlzheimersModelURL: os.Getenv("ALZHEIMERS_MODEL_URL"),
		TumorModelURL:      os.Getenv("TUMOR_MODEL_URL"),
		InferenceTimeout:   getEnvDuration("INFERENCE_TIMEOUT", 10*time.Second),
		Workers:            getEnvInt("ANALYSIS_WORKERS", 2),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
