package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the care navigation service.
type Config struct {
	BindAddr                 string
	ShutdownTimeout          time.Duration
	SessionInactivityTimeout time.Duration
	MetricsNamespace         string

	AllowAnyOrigin bool

	DefaultLanguage string

	ReasoningMode    string
	ReasoningHTTPURL string
	OpenAIAPIKey     string
	OpenAIModel      string

	SynthesisURL        string
	SynthesisVoice      string
	SynthesisSampleRate int
	SynthesisChannels   int

	DatabaseURL   string
	RedisAddr     string
	UserRecordTTL time.Duration
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:                 envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:         envOrDefault("APP_METRICS_NAMESPACE", "navicare"),
		AllowAnyOrigin:           false,
		DefaultLanguage:          envOrDefault("APP_DEFAULT_LANGUAGE", "English"),
		ReasoningMode:            envOrDefault("REASONING_MODE", "auto"),
		ReasoningHTTPURL:         stringsTrimSpace("REASONING_HTTP_URL"),
		OpenAIAPIKey:             stringsTrimSpace("OPENAI_API_KEY"),
		OpenAIModel:              envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		SynthesisURL:             stringsTrimSpace("SYNTHESIS_URL"),
		SynthesisVoice:           envOrDefault("SYNTHESIS_VOICE", "af_heart"),
		SynthesisSampleRate:      24000,
		SynthesisChannels:        1,
		DatabaseURL:              stringsTrimSpace("DATABASE_URL"),
		RedisAddr:                stringsTrimSpace("REDIS_ADDR"),
		UserRecordTTL:            90 * 24 * time.Hour,
		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 30 * time.Minute,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionInactivityTimeout, err = durationFromEnv("APP_SESSION_INACTIVITY_TIMEOUT", cfg.SessionInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.UserRecordTTL, err = durationFromEnv("APP_USER_RECORD_TTL", cfg.UserRecordTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.SynthesisSampleRate, err = intFromEnv("SYNTHESIS_SAMPLE_RATE", cfg.SynthesisSampleRate)
	if err != nil {
		return Config{}, err
	}
	cfg.SynthesisChannels, err = intFromEnv("SYNTHESIS_CHANNELS", cfg.SynthesisChannels)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionInactivityTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if cfg.SynthesisSampleRate <= 0 {
		return Config{}, fmt.Errorf("SYNTHESIS_SAMPLE_RATE must be positive")
	}
	if cfg.SynthesisChannels <= 0 {
		return Config{}, fmt.Errorf("SYNTHESIS_CHANNELS must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
