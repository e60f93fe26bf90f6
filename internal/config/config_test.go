package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8080")
	}
	if cfg.ReasoningMode != "auto" {
		t.Fatalf("ReasoningMode = %q, want %q", cfg.ReasoningMode, "auto")
	}
	if cfg.DefaultLanguage != "English" {
		t.Fatalf("DefaultLanguage = %q, want %q", cfg.DefaultLanguage, "English")
	}
	if cfg.SynthesisSampleRate != 24000 || cfg.SynthesisChannels != 1 {
		t.Fatalf("synthesis format = %d/%d, want 24000/1", cfg.SynthesisSampleRate, cfg.SynthesisChannels)
	}
	if cfg.SessionInactivityTimeout != 30*time.Minute {
		t.Fatalf("SessionInactivityTimeout = %v, want 30m", cfg.SessionInactivityTimeout)
	}
	if cfg.AllowAnyOrigin {
		t.Fatal("AllowAnyOrigin should default to false")
	}
}

func TestLoadExplicitValues(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9090")
	t.Setenv("REASONING_HTTP_URL", "http://localhost:7777/reason")
	t.Setenv("APP_SESSION_INACTIVITY_TIMEOUT", "10m")
	t.Setenv("APP_ALLOW_ANY_ORIGIN", "yes")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":9090")
	}
	if cfg.ReasoningHTTPURL != "http://localhost:7777/reason" {
		t.Fatalf("ReasoningHTTPURL = %q, want explicit value", cfg.ReasoningHTTPURL)
	}
	if cfg.SessionInactivityTimeout != 10*time.Minute {
		t.Fatalf("SessionInactivityTimeout = %v, want 10m", cfg.SessionInactivityTimeout)
	}
	if !cfg.AllowAnyOrigin {
		t.Fatal("AllowAnyOrigin should be true")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_SESSION_INACTIVITY_TIMEOUT", "1s")
	if _, err := Load(); err == nil {
		t.Fatal("expected a too-short inactivity timeout to fail")
	}

	setCoreEnvEmpty(t)
	t.Setenv("SYNTHESIS_SAMPLE_RATE", "-1")
	if _, err := Load(); err == nil {
		t.Fatal("expected a negative sample rate to fail")
	}

	setCoreEnvEmpty(t)
	t.Setenv("APP_ALLOW_ANY_ORIGIN", "maybe")
	if _, err := Load(); err == nil {
		t.Fatal("expected a bad bool to fail")
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_SESSION_INACTIVITY_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"APP_DEFAULT_LANGUAGE",
		"APP_USER_RECORD_TTL",
		"REASONING_MODE",
		"REASONING_HTTP_URL",
		"OPENAI_API_KEY",
		"OPENAI_MODEL",
		"SYNTHESIS_URL",
		"SYNTHESIS_VOICE",
		"SYNTHESIS_SAMPLE_RATE",
		"SYNTHESIS_CHANNELS",
		"DATABASE_URL",
		"REDIS_ADDR",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}
