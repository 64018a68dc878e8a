// Package config loads the CLI configuration from environment variables.
package config

import (
	"os"
	"path/filepath"
)

// Config holds the CLI configuration
type Config struct {
	// DBPath is where run history is stored.
	DBPath string

	// FileName is the workflow file name searched for upwards from the
	// working directory.
	FileName string

	// DefaultEvent is the trigger event used when none is given.
	DefaultEvent string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		DBPath:       getEnv("GANTRY_DB", filepath.Join(".gantry", "history.db")),
		FileName:     getEnv("GANTRY_FILE", "gantry.yml"),
		DefaultEvent: getEnv("GANTRY_EVENT", "push"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
