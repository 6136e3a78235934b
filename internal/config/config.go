// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/dltmtt/viaggiatreno-api/internal/viaggiatreno"
)

// Config holds all application configuration.
type Config struct {
	BaseURL        string        `validate:"required,url"`
	HTTPTimeout    time.Duration `validate:"gt=0"`
	Concurrency    int           `validate:"min=1,max=64"`
	MaxRetries     int           `validate:"min=1,max=10"`
	InitialBackoff time.Duration `validate:"gt=0"`
	OutputDir      string        `validate:"required"`
	StationsFile   string        `validate:"required"`
	MetricsAddr    string        `validate:"omitempty,hostname_port"`
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file is honored when present; real environment wins.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		BaseURL:        getEnv("VT_BASE_URL", viaggiatreno.DefaultBaseURL),
		HTTPTimeout:    getDurationEnv("VT_HTTP_TIMEOUT_SECONDS", 30) * time.Second,
		Concurrency:    getIntEnv("VT_CONCURRENCY", 16),
		MaxRetries:     getIntEnv("VT_MAX_RETRIES", 6),
		InitialBackoff: getDurationEnv("VT_INITIAL_BACKOFF_SECONDS", 4) * time.Second,
		OutputDir:      getEnv("VT_OUTPUT_DIR", "dumps"),
		StationsFile:   getEnv("VT_STATIONS_FILE", "dumps/autocompletaStazione.csv"),
		MetricsAddr:    getEnv("VT_METRICS_ADDR", ""),
	}
}

// Validate checks bounds and formats.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultSeconds int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds)
		}
	}
	return time.Duration(defaultSeconds)
}
