package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/shubh-37/decluttr/internal/models"
)

type AnthropicProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
	Error   *anthropicError    `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func DefaultAnthropicConfig(apiKey string) ProviderConfig {
	return ProviderConfig{
		APIKey:  apiKey,
		BaseURL: "https://api.anthropic.com/v1",
		Model:   "claude-sonnet-4-5-20250929",
	}
}

func NewAnthropicProvider(cfg ProviderConfig, logger *zap.Logger) *AnthropicProvider {
	return &AnthropicProvider{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: httpClient(cfg),
		logger:     logger,
	}
}

func (a *AnthropicProvider) Name() string { return "anthropic" }

func (a *AnthropicProvider) Classify(ctx context.Context, rawText string) (models.ClassificationResult, error) {
	reqBody := anthropicRequest{
		Model:     a.model,
		MaxTokens: 1000,
		System:    classificationInstruction,
		Messages: []anthropicMessage{
			{
				Role:    "user",
				Content: rawText,
			},
		},
	}

	body, err := postJSON(ctx, a.httpClient, a.Name(), a.baseURL+"/messages", map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": "2023-06-01",
	}, reqBody)
	if err != nil {
		return models.ClassificationResult{}, err
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return models.ClassificationResult{}, otherError(a.Name(), http.StatusOK, fmt.Errorf("failed to parse response: %w", err))
	}

	if apiResp.Error != nil {
		return models.ClassificationResult{}, otherError(a.Name(), http.StatusOK, fmt.Errorf("API error: %s - %s", apiResp.Error.Type, apiResp.Error.Message))
	}

	if len(apiResp.Content) == 0 || apiResp.Content[0].Type != "text" {
		return models.ClassificationResult{}, otherError(a.Name(), http.StatusOK, fmt.Errorf("unexpected response format"))
	}

	return parseReply(a.logger, a.Name(), apiResp.Content[0].Text), nil
}
