package agents

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// NewProviders builds adapters for names in order. Providers without an
// API key are skipped with a warning, since every call would fail.
func NewProviders(ctx context.Context, names []string, key func(string) string, timeout time.Duration, logger *zap.Logger) ([]Provider, error) {
	var providers []Provider
	for _, name := range names {
		apiKey := key(name)
		if apiKey == "" {
			logger.Warn("No API key configured, provider disabled", zap.String("provider", name))
			continue
		}

		switch name {
		case "openai":
			cfg := DefaultOpenAIConfig(apiKey)
			cfg.Timeout = timeout
			providers = append(providers, NewOpenAIProvider(cfg, logger))
		case "cohere":
			cfg := DefaultCohereConfig(apiKey)
			cfg.Timeout = timeout
			providers = append(providers, NewCohereProvider(cfg, logger))
		case "anthropic":
			cfg := DefaultAnthropicConfig(apiKey)
			cfg.Timeout = timeout
			providers = append(providers, NewAnthropicProvider(cfg, logger))
		case "gemini":
			cfg := DefaultGeminiConfig(apiKey)
			cfg.Timeout = timeout
			p, err := NewGeminiProvider(ctx, cfg, logger)
			if err != nil {
				return nil, err
			}
			providers = append(providers, p)
		default:
			return nil, fmt.Errorf("unknown provider %q", name)
		}
	}

	if len(providers) == 0 {
		logger.Warn("No classification providers configured, every dump will use the offline fallback")
	}
	return providers, nil
}
