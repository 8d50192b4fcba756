package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, sourced from environment variables
// with an optional .env file for local development.
type Config struct {
	Environment string
	LogLevel    slog.Level

	OllamaURL   string
	ModelName   string
	Temperature float64
	MaxRetries  int

	RedisURL string
	DataDir  string

	MemoryEnabled bool
}

// Load reads configuration from the environment. A missing .env file is
// not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      parseLogLevel(getEnv("LOG_LEVEL", "info")),
		OllamaURL:     getEnv("OLLAMA_URL", "http://localhost:11434"),
		ModelName:     getEnv("MODEL_NAME", "llama3.2:latest"),
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		DataDir:       getEnv("DATA_DIR", "./data"),
		MemoryEnabled: parseBool(getEnv("MEMORY_ENABLED", "true")),
	}

	var err error
	cfg.Temperature, err = strconv.ParseFloat(getEnv("TEMPERATURE", "0.8"), 64)
	if err != nil {
		return nil, err
	}
	cfg.MaxRetries, err = strconv.Atoi(getEnv("MAX_RETRIES", "2"))
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
