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

// OpenAIProvider calls the chat completions endpoint.
type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// DefaultOpenAIConfig returns the primary provider settings.
func DefaultOpenAIConfig(apiKey string) ProviderConfig {
	return ProviderConfig{
		APIKey:  apiKey,
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-3.5-turbo",
	}
}

func NewOpenAIProvider(cfg ProviderConfig, logger *zap.Logger) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: httpClient(cfg),
		logger:     logger,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Classify sends the instruction as the system message and the dump as the
// user message.
func (p *OpenAIProvider) Classify(ctx context.Context, rawText string) (models.ClassificationResult, error) {
	reqBody := openAIRequest{
		Model: p.model,
		Messages: []openAIMessage{
			{Role: "system", Content: classificationInstruction},
			{Role: "user", Content: rawText},
		},
		Temperature: 0.7,
		MaxTokens:   400,
	}

	body, err := postJSON(ctx, p.httpClient, p.Name(), p.baseURL+"/chat/completions", map[string]string{
		"Authorization": "Bearer " + p.apiKey,
	}, reqBody)
	if err != nil {
		return models.ClassificationResult{}, err
	}

	var apiResp openAIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return models.ClassificationResult{}, otherError(p.Name(), http.StatusOK, fmt.Errorf("failed to parse response: %w", err))
	}
	if apiResp.Error != nil {
		return models.ClassificationResult{}, otherError(p.Name(), http.StatusOK, fmt.Errorf("API error: %s", apiResp.Error.Message))
	}
	if len(apiResp.Choices) == 0 {
		return models.ClassificationResult{}, otherError(p.Name(), http.StatusOK, fmt.Errorf("no completion returned"))
	}

	return parseReply(p.logger, p.Name(), apiResp.Choices[0].Message.Content), nil
}
