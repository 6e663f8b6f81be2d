package main

import (
	"testing"

	"github.com/pitwall-ai/pitwall/engine/openf1"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := loadConfig()
	if cfg.Port != "8000" {
		t.Fatalf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.OpenF1URL != openf1.DefaultBaseURL {
		t.Fatalf("expected default OpenF1 URL, got %s", cfg.OpenF1URL)
	}
	if cfg.CORSOrigin != "*" {
		t.Fatalf("expected default CORS *, got %s", cfg.CORSOrigin)
	}
	if cfg.LoadYear != 2024 {
		t.Fatalf("expected default load year 2024, got %d", cfg.LoadYear)
	}
	if cfg.RateRPS != 50 || cfg.RateBurst != 100 {
		t.Fatalf("unexpected rate limits: %v rps, %d burst", cfg.RateRPS, cfg.RateBurst)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOAD_YEAR", "2023")
	t.Setenv("NATS_URL", "nats://localhost:4222")

	cfg := loadConfig()
	if cfg.Port != "9000" {
		t.Fatalf("port = %s", cfg.Port)
	}
	if cfg.LoadYear != 2023 {
		t.Fatalf("load year = %d", cfg.LoadYear)
	}
	if cfg.NATSURL != "nats://localhost:4222" {
		t.Fatalf("nats url = %s", cfg.NATSURL)
	}
}

func TestEnvIntOrIgnoresGarbage(t *testing.T) {
	t.Setenv("TEST_INT_VAR", "not-a-number")
	if v := envIntOr("TEST_INT_VAR", 7); v != 7 {
		t.Fatalf("expected fallback 7, got %d", v)
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("TEST_ENV_VAR_XYZ", "custom")
	if v := envOr("TEST_ENV_VAR_XYZ", "default"); v != "custom" {
		t.Fatalf("expected custom, got %s", v)
	}
	if v := envOr("NONEXISTENT_VAR_ABC", "fallback"); v != "fallback" {
		t.Fatalf("expected fallback, got %s", v)
	}
}
