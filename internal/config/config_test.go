package config

import (
	"strings"
	"testing"
	"time"

	"github.com/dltmtt/viaggiatreno-api/internal/viaggiatreno"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"VT_BASE_URL", "VT_HTTP_TIMEOUT_SECONDS", "VT_CONCURRENCY",
		"VT_MAX_RETRIES", "VT_INITIAL_BACKOFF_SECONDS", "VT_OUTPUT_DIR",
		"VT_STATIONS_FILE", "VT_METRICS_ADDR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.BaseURL != viaggiatreno.DefaultBaseURL {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	if cfg.Concurrency != 16 {
		t.Errorf("Concurrency = %d, want 16", cfg.Concurrency)
	}
	if cfg.MaxRetries != 6 {
		t.Errorf("MaxRetries = %d, want 6", cfg.MaxRetries)
	}
	if cfg.InitialBackoff != 4*time.Second {
		t.Errorf("InitialBackoff = %v, want 4s", cfg.InitialBackoff)
	}
	if cfg.OutputDir != "dumps" {
		t.Errorf("OutputDir = %q, want dumps", cfg.OutputDir)
	}
	if cfg.StationsFile != "dumps/autocompletaStazione.csv" {
		t.Errorf("StationsFile = %q", cfg.StationsFile)
	}
	if cfg.MetricsAddr != "" {
		t.Errorf("MetricsAddr = %q, want empty", cfg.MetricsAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("VT_BASE_URL", "http://localhost:8089/vt")
	t.Setenv("VT_HTTP_TIMEOUT_SECONDS", "10")
	t.Setenv("VT_CONCURRENCY", "4")
	t.Setenv("VT_INITIAL_BACKOFF_SECONDS", "2")
	t.Setenv("VT_METRICS_ADDR", ":9090")

	cfg := Load()

	if cfg.BaseURL != "http://localhost:8089/vt" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want 10s", cfg.HTTPTimeout)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.InitialBackoff != 2*time.Second {
		t.Errorf("InitialBackoff = %v, want 2s", cfg.InitialBackoff)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("MetricsAddr = %q", cfg.MetricsAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("overridden config failed validation: %v", err)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("VT_CONCURRENCY", "not a number")

	if cfg := Load(); cfg.Concurrency != 16 {
		t.Errorf("Concurrency = %d, want default 16", cfg.Concurrency)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"base url not a url", func(c *Config) { c.BaseURL = "not a url" }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"oversized concurrency", func(c *Config) { c.Concurrency = 500 }},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }},
		{"bad metrics addr", func(c *Config) { c.MetricsAddr = "no port here" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg := Load()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate accepted a bad config")
			}
			if !strings.Contains(err.Error(), "invalid configuration") {
				t.Errorf("error = %v", err)
			}
		})
	}
}
