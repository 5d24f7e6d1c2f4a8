package agents

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/shubh-37/decluttr/internal/models"
)

// CohereProvider calls the v1 chat endpoint, which takes one message.
type CohereProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

type cohereRequest struct {
	Model   string `json:"model"`
	Message string `json:"message"`
}

type cohereResponse struct {
	Text    string `json:"text"`
	Message string `json:"message"`
}

func DefaultCohereConfig(apiKey string) ProviderConfig {
	return ProviderConfig{
		APIKey:  apiKey,
		BaseURL: "https://api.cohere.ai/v1",
		Model:   "command",
	}
}

func NewCohereProvider(cfg ProviderConfig, logger *zap.Logger) *CohereProvider {
	return &CohereProvider{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: httpClient(cfg),
		logger:     logger,
	}
}

func (p *CohereProvider) Name() string { return "cohere" }

func (p *CohereProvider) Classify(ctx context.Context, rawText string) (models.ClassificationResult, error) {
	reqBody := cohereRequest{
		Model:   p.model,
		Message: inlinePrompt(rawText),
	}

	body, err := postJSON(ctx, p.httpClient, p.Name(), p.baseURL+"/chat", map[string]string{
		"Authorization": "Bearer " + p.apiKey,
	}, reqBody)
	if err != nil {
		return models.ClassificationResult{}, err
	}

	// a non-JSON body has no reply text and parses as an empty result
	var apiResp cohereResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		p.logger.Warn("Cohere reply is not a JSON envelope", zap.Error(err), zap.Int("body_len", len(body)))
	}

	// older deployments put the reply in "message"
	content := apiResp.Text
	if content == "" {
		content = apiResp.Message
	}
	return parseReply(p.logger, p.Name(), content), nil
}
