// Package client talks to the decluttr REST backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shubh-37/decluttr/internal/declutter"
	"github.com/shubh-37/decluttr/internal/models"
)

const DefaultBaseURL = "http://localhost:5000"

// StatusError is a non-2xx reply from the backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Body)
}

// Client implements declutter.Persister over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func New(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// WithHTTPClient replaces the underlying http.Client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) userURL(userID string, suffix ...string) string {
	parts := append([]string{c.baseURL, "api", "user", url.PathEscape(userID)}, suffix...)
	return strings.Join(parts, "/")
}

// Load fetches the stored data for userID. Unknown ids come back as empty
// data.
func (c *Client) Load(ctx context.Context, userID string) (models.UserData, error) {
	var rec models.UserRecord
	if err := c.do(ctx, http.MethodGet, c.userURL(userID), nil, &rec); err != nil {
		return models.UserData{}, err
	}
	rec.Normalize()
	return rec.UserData, nil
}

// Save replaces the stored data for userID and returns what was stored
func (c *Client) Save(ctx context.Context, userID string, data models.UserData) (models.UserData, error) {
	data.Normalize()
	var rec models.UserRecord
	if err := c.do(ctx, http.MethodPost, c.userURL(userID), data, &rec); err != nil {
		return models.UserData{}, err
	}
	rec.Normalize()
	return rec.UserData, nil
}

// Dump runs a thought dump on the server. 400 and 409 replies map to
// declutter.ErrEmptyThought and declutter.ErrSubmissionInFlight.
func (c *Client) Dump(ctx context.Context, userID, text string) (declutter.Outcome, error) {
	var out declutter.Outcome
	err := c.do(ctx, http.MethodPost, c.userURL(userID, "dump"), map[string]string{"text": text}, &out)

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusBadRequest:
			return out, fmt.Errorf("%w: %s", declutter.ErrEmptyThought, statusErr.Body)
		case http.StatusConflict:
			return out, declutter.ErrSubmissionInFlight
		}
	}
	return out, err
}

// NewGuest asks the backend for a fresh guest id
func (c *Client) NewGuest(ctx context.Context) (string, error) {
	var resp struct {
		UserID string `json:"userId"`
	}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/guest", nil, &resp); err != nil {
		return "", err
	}
	if resp.UserID == "" {
		return "", fmt.Errorf("backend returned an empty guest id")
	}
	return resp.UserID, nil
}

// Health reports whether the backend answers /health with 200
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.baseURL+"/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("Backend call",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
