package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.GoogleRequestLimit != 2500 {
		t.Errorf("GoogleRequestLimit = %d, want 2500", cfg.GoogleRequestLimit)
	}
	if cfg.GoogleFetchTimeout != 20*time.Second {
		t.Errorf("GoogleFetchTimeout = %v, want 20s", cfg.GoogleFetchTimeout)
	}
	if cfg.ConfirmedColorToken != "10" || cfg.MissedColorToken != "11" {
		t.Errorf("color tokens = %q/%q, want 10/11", cfg.ConfirmedColorToken, cfg.MissedColorToken)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("GOOGLE_REQUEST_LIMIT", "100")
	t.Setenv("GOOGLE_FETCH_TIMEOUT", "5s")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CONFIRMED_COLOR_TOKEN", " 2 ")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.GoogleRequestLimit != 100 {
		t.Errorf("GoogleRequestLimit = %d, want 100", cfg.GoogleRequestLimit)
	}
	if cfg.GoogleFetchTimeout != 5*time.Second {
		t.Errorf("GoogleFetchTimeout = %v, want 5s", cfg.GoogleFetchTimeout)
	}
	if !cfg.RedisTLS {
		t.Error("RedisTLS = false, want true")
	}
	if cfg.ConfirmedColorToken != "2" {
		t.Errorf("ConfirmedColorToken = %q, want trimmed 2", cfg.ConfirmedColorToken)
	}
}

func TestLoadCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://app.example.com , https://admin.example.com ,")

	cfg := Load()

	want := []string{"https://app.example.com", "https://admin.example.com"}
	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("CORSAllowedOrigins = %v, want %v", cfg.CORSAllowedOrigins, want)
	}
	for i := range want {
		if cfg.CORSAllowedOrigins[i] != want[i] {
			t.Errorf("origin[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], want[i])
		}
	}
}
