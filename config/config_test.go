package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "PORT", "OPENAI_API_KEY", "COHERE_API_KEY",
		"ANTHROPIC_API_KEY", "GEMINI_API_KEY", "PROVIDER_ORDER",
		"PROVIDER_TIMEOUT", "FALLBACK_ON_ANY_ERROR", "SLACK_BOT_TOKEN",
		"SLACK_SIGNING_SECRET", "LOG_LEVEL", "LOG_DEV",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite://decluttr.db", cfg.DatabaseURL)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, []string{"openai", "cohere"}, cfg.ProviderOrder)
	assert.Equal(t, 30*time.Second, cfg.ProviderTimeout)
	assert.False(t, cfg.FallbackOnAnyError)
	assert.False(t, cfg.SlackEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROVIDER_ORDER", " OpenAI , gemini,,cohere ")
	t.Setenv("PROVIDER_TIMEOUT", "12s")
	t.Setenv("FALLBACK_ON_ANY_ERROR", "true")
	t.Setenv("GEMINI_API_KEY", "gm-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"openai", "gemini", "cohere"}, cfg.ProviderOrder)
	assert.Equal(t, 12*time.Second, cfg.ProviderTimeout)
	assert.True(t, cfg.FallbackOnAnyError)
	assert.Equal(t, "gm-key", cfg.ProviderKey("gemini"))
	assert.Empty(t, cfg.ProviderKey("mistral"))
}

func TestLoadConfig_BadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROVIDER_TIMEOUT", "soon")
	_, err := LoadConfig()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("LOG_DEV", "maybe")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DatabaseURL:     "sqlite://x.db",
			Port:            "5000",
			ProviderOrder:   []string{"openai", "cohere"},
			ProviderTimeout: time.Second,
		}
	}

	cfg := base()
	cfg.ProviderOrder = []string{"openai", "mistral"}
	assert.ErrorContains(t, cfg.Validate(), "unknown provider")

	cfg = base()
	cfg.ProviderOrder = []string{"cohere", "cohere"}
	assert.ErrorContains(t, cfg.Validate(), "listed twice")

	cfg = base()
	cfg.SlackToken = "xoxb"
	assert.ErrorContains(t, cfg.Validate(), "must be set together")

	cfg = base()
	cfg.SlackToken = "xoxb"
	cfg.SlackSigningSecret = "secret"
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.SlackEnabled())

	cfg = base()
	cfg.DatabaseURL = ""
	assert.Error(t, cfg.Validate())
}
