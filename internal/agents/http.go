package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/shubh-37/decluttr/internal/models"
)

const maxErrorBody = 512

// postJSON sends reqBody and returns the raw response body. Any failure is
// a *ProviderError; status 429 is reported as a rate limit.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, reqBody any) ([]byte, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, otherError(provider, 0, fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, otherError(provider, 0, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, otherError(provider, 0, fmt.Errorf("failed to call %s API: %w", provider, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, otherError(provider, resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &ProviderError{
			Provider:   provider,
			Kind:       ErrorRateLimit,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("rate limit exceeded: %s", truncate(body)),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, otherError(provider, resp.StatusCode, fmt.Errorf("API request failed: %s", truncate(body)))
	}

	return body, nil
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}

// parseReply wraps ParsePayload and logs replies that degrade to empty.
func parseReply(logger *zap.Logger, provider, text string) models.ClassificationResult {
	result, err := ParsePayload(provider, text)
	if err != nil {
		logger.Warn("Provider returned an unusable payload",
			zap.String("provider", provider),
			zap.Error(err),
			zap.Int("reply_len", len(text)))
	}
	return result
}

func httpClient(cfg ProviderConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}
