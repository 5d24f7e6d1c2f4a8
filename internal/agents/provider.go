package agents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shubh-37/decluttr/internal/models"
)

// Provider classifies a thought dump through one external API.
//
// A nil error means the provider answered; the result may still be the
// empty variant when the payload was unusable. A non-nil error is a
// *ProviderError describing why the call failed.
type Provider interface {
	Name() string
	Classify(ctx context.Context, rawText string) (models.ClassificationResult, error)
}

// ProviderConfig holds the connection settings shared by all adapters.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ErrorKind separates quota exhaustion from every other failure.
type ErrorKind int

const (
	ErrorOther ErrorKind = iota
	ErrorRateLimit
)

func (k ErrorKind) String() string {
	if k == ErrorRateLimit {
		return "rate_limit"
	}
	return "other"
}

// ProviderError is returned by adapters when the call itself failed.
type ProviderError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s failure (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s failure: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRateLimit reports whether err is a provider quota failure
func IsRateLimit(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.Kind == ErrorRateLimit
}

func otherError(provider string, status int, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: ErrorOther, StatusCode: status, Err: err}
}
