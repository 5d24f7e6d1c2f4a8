package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL        string
	Port               string
	OpenAIKey          string
	CohereKey          string
	AnthropicKey       string
	GeminiKey          string
	ProviderOrder      []string
	ProviderTimeout    time.Duration
	FallbackOnAnyError bool
	SlackToken         string
	SlackSigningSecret string
	LogLevel           string
	LogDev             bool

	// EnvFileLoaded records whether a .env file was found, so the caller
	// can log it once its logger exists.
	EnvFileLoaded bool
}

// LoadConfig loads configuration from environment variables
// It first tries to load from .env file, then falls back to system environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (ignore error if file doesn't exist)
	envErr := godotenv.Load()

	timeout, err := getDuration("PROVIDER_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	anyError, err := getBool("FALLBACK_ON_ANY_ERROR", false)
	if err != nil {
		return nil, err
	}
	logDev, err := getBool("LOG_DEV", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:        getEnv("DATABASE_URL", "sqlite://decluttr.db"),
		Port:               getEnv("PORT", "5000"),
		OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
		CohereKey:          getEnv("COHERE_API_KEY", ""),
		AnthropicKey:       getEnv("ANTHROPIC_API_KEY", ""),
		GeminiKey:          getEnv("GEMINI_API_KEY", ""),
		ProviderOrder:      splitList(getEnv("PROVIDER_ORDER", "openai,cohere")),
		ProviderTimeout:    timeout,
		FallbackOnAnyError: anyError,
		SlackToken:         getEnv("SLACK_BOT_TOKEN", ""),
		SlackSigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogDev:             logDev,
		EnvFileLoaded:      envErr == nil,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return b, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ProviderKey returns the API key configured for a provider name
func (c *Config) ProviderKey(name string) string {
	switch name {
	case "openai":
		return c.OpenAIKey
	case "cohere":
		return c.CohereKey
	case "anthropic":
		return c.AnthropicKey
	case "gemini":
		return c.GeminiKey
	}
	return ""
}

// SlackEnabled reports whether the Slack intake should be started
func (c *Config) SlackEnabled() bool {
	return c.SlackToken != "" && c.SlackSigningSecret != ""
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	seen := make(map[string]bool)
	for _, name := range c.ProviderOrder {
		switch name {
		case "openai", "cohere", "anthropic", "gemini":
		default:
			return fmt.Errorf("PROVIDER_ORDER: unknown provider %q", name)
		}
		if seen[name] {
			return fmt.Errorf("PROVIDER_ORDER: provider %q listed twice", name)
		}
		seen[name] = true
	}
	if (c.SlackToken == "") != (c.SlackSigningSecret == "") {
		return fmt.Errorf("SLACK_BOT_TOKEN and SLACK_SIGNING_SECRET must be set together")
	}
	return nil
}
