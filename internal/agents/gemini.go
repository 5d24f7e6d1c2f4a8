package agents

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/shubh-37/decluttr/internal/models"
)

// GeminiProvider classifies through Google's Gemini API using the genai SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func DefaultGeminiConfig(apiKey string) ProviderConfig {
	return ProviderConfig{
		APIKey: apiKey,
		Model:  "gemini-2.0-flash",
	}
}

// NewGeminiProvider creates the SDK client. An empty BaseURL keeps the
// SDK default endpoint.
func NewGeminiProvider(ctx context.Context, cfg ProviderConfig, logger *zap.Logger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient(cfg),
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  cfg.Model,
		logger: logger,
	}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Classify(ctx context.Context, rawText string) (models.ClassificationResult, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(rawText), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(classificationInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.7),
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			if apiErr.Code == http.StatusTooManyRequests {
				return models.ClassificationResult{}, &ProviderError{
					Provider:   p.Name(),
					Kind:       ErrorRateLimit,
					StatusCode: apiErr.Code,
					Err:        err,
				}
			}
			return models.ClassificationResult{}, otherError(p.Name(), apiErr.Code, err)
		}
		return models.ClassificationResult{}, otherError(p.Name(), 0, err)
	}

	return parseReply(p.logger, p.Name(), resp.Text()), nil
}
