package config

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Default values for testing.
const (
	defaultTimeoutSeconds = 300
	defaultMongoURI       = "mongodb://localhost:27017"
	defaultDatabase       = "warframe"
	defaultJSONDir        = "json"
	envMongoURI           = "MONGO_URI"
	envDatabase           = "MONGO_DATABASE"
	envJSONDir            = "JSON_DIR"
)

// LoadConfig loads the application configuration from environment variables or uses default values.
// A .env file in the working directory is read first when present.
func LoadConfig(ctx context.Context, logger *slog.Logger) *Config {
	// The .env file is optional; absence is not an error.
	_ = godotenv.Load()

	return &Config{
		MongoURI: getEnv(ctx, logger, envMongoURI, defaultMongoURI),
		Database: getEnv(ctx, logger, envDatabase, defaultDatabase),
		JSONDir:  getEnv(ctx, logger, envJSONDir, defaultJSONDir),
		Timeout:  defaultTimeoutSeconds * time.Second,
	}
}

// getEnv fetches an environment variable or falls back to a default value.
func getEnv(ctx context.Context, logger *slog.Logger, key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		logger.DebugContext(ctx, "Using default value", "key", key, "value", fallback)
		return fallback
	}

	logger.DebugContext(ctx, "Using value from environment variable", "key", key, "value", value)
	return value
}
