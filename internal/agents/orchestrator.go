package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shubh-37/decluttr/internal/models"
)

const (
	// DefaultProviderTimeout bounds a single provider call.
	DefaultProviderTimeout = 30 * time.Second

	stubSource     = "stub"
	stubSuggestion = "Try breaking your thoughts into categories for better clarity."
)

// Orchestrator tries providers in order and falls back to an offline stub.
//
// The first provider to answer wins. A rate-limited provider hands over to
// the next one; any other failure goes straight to the stub unless
// FallbackOnAnyError is set. Calls are sequential, never raced.
type Orchestrator struct {
	providers          []Provider
	timeout            time.Duration
	fallbackOnAnyError bool
	logger             *zap.Logger
}

type Option func(*Orchestrator)

// WithTimeout sets the per-provider call timeout
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithFallbackOnAnyError lets non-quota failures advance to the next
// provider instead of going to the stub.
func WithFallbackOnAnyError(enabled bool) Option {
	return func(o *Orchestrator) {
		o.fallbackOnAnyError = enabled
	}
}

func NewOrchestrator(logger *zap.Logger, providers []Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		providers: providers,
		timeout:   DefaultProviderTimeout,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Providers returns the provider names in the order they are tried
func (o *Orchestrator) Providers() []string {
	names := make([]string, len(o.providers))
	for i, p := range o.providers {
		names[i] = p.Name()
	}
	return names
}

// Classify never fails: when no provider answers it returns StubResult.
func (o *Orchestrator) Classify(ctx context.Context, rawText string) models.ClassificationResult {
	if strings.TrimSpace(rawText) == "" {
		return StubResult(rawText)
	}

	for _, p := range o.providers {
		start := time.Now()
		result, err := o.call(ctx, p, rawText)
		if err == nil {
			o.logger.Info("Thought dump classified",
				zap.String("provider", p.Name()),
				zap.String("kind", string(result.Kind)),
				zap.Int("categories", len(result.Categories)),
				zap.Int("tasks", len(result.Tasks)),
				zap.Duration("elapsed", time.Since(start)))
			return result
		}

		if IsRateLimit(err) {
			o.logger.Warn("Provider rate limited, trying next provider",
				zap.String("provider", p.Name()), zap.Error(err))
			continue
		}
		if o.fallbackOnAnyError {
			o.logger.Warn("Provider failed, trying next provider",
				zap.String("provider", p.Name()), zap.Error(err))
			continue
		}

		o.logger.Warn("Provider failed, using offline fallback",
			zap.String("provider", p.Name()), zap.Error(err))
		break
	}

	return StubResult(rawText)
}

func (o *Orchestrator) call(ctx context.Context, p Provider, rawText string) (result models.ClassificationResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = otherError(p.Name(), 0, fmt.Errorf("provider panicked: %v", r))
		}
	}()

	result, err = p.Classify(ctx, rawText)
	if err != nil {
		return models.ClassificationResult{}, err
	}
	normalizeResult(&result, p.Name())
	return result, nil
}

// normalizeResult fills in nil collections so callers never see a
// partially shaped result.
func normalizeResult(r *models.ClassificationResult, source string) {
	if r.Kind == "" {
		r.Kind = models.ResultValid
	}
	if r.Source == "" {
		r.Source = source
	}
	if r.Categories == nil {
		r.Categories = models.CategoryMap{}
	}
	if r.Suggestions == nil {
		r.Suggestions = models.SuggestionMap{}
	}
	if r.Tasks == nil {
		r.Tasks = []string{}
	}
}

// StubResult is the deterministic offline classification.
func StubResult(rawText string) models.ClassificationResult {
	return models.ClassificationResult{
		Kind:   models.ResultStub,
		Source: stubSource,
		Categories: models.CategoryMap{
			models.CategoryOther: {rawText},
		},
		Tasks: []string{"Mock task 1", "Mock task 2"},
		Suggestions: models.SuggestionMap{
			models.CategoryOther: {models.FormatSuggestion(rawText, stubSuggestion)},
		},
	}
}
