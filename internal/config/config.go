package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort    int
	DatabasePath  string
	PruneSchedule string // cron expression for the activity-feed pruner
	PruneMaxAge   int    // days of activity to keep
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is applied first, if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	maxAgeStr := getEnv("ACTIVITY_MAX_AGE_DAYS", "30")
	maxAge, err := strconv.Atoi(maxAgeStr)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:    port,
		DatabasePath:  getEnv("DATABASE_PATH", "./roomio.db"),
		PruneSchedule: getEnv("ACTIVITY_PRUNE_SCHEDULE", "0 3 * * *"),
		PruneMaxAge:   maxAge,
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
