package reasoning

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kwabenadarko/navicare/internal/triage"
)

// Config controls engine construction.
type Config struct {
	Mode         string
	OpenAIAPIKey string
	OpenAIModel  string
	HTTPURL      string
}

// NewEngine builds a triage.Engine from configuration. Mode "auto" picks the
// best backend available: a hosted model when a key is configured, a remote
// reasoning service when a URL is configured, and the deterministic mock
// otherwise.
func NewEngine(cfg Config) (triage.Engine, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
			return NewOpenAIEngine(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
		}
		if strings.TrimSpace(cfg.HTTPURL) != "" {
			return NewRemoteEngine(cfg.HTTPURL), nil
		}
		return NewMockEngine(), nil
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return nil, errors.New("an API key is required for openai mode")
		}
		return NewOpenAIEngine(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	case "http":
		if strings.TrimSpace(cfg.HTTPURL) == "" {
			return nil, errors.New("a reasoning HTTP url is required for http mode")
		}
		return NewRemoteEngine(cfg.HTTPURL), nil
	case "mock":
		return NewMockEngine(), nil
	default:
		return nil, fmt.Errorf("unsupported reasoning mode %q", cfg.Mode)
	}
}
