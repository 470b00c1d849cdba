package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"career-coach/config"
	"career-coach/domain"
)

// NewCompleter builds the provider client named by cfg and wraps it with
// per-attempt timeouts and retries.
func NewCompleter(ctx context.Context, cfg config.CapabilityConfig, logger logrus.FieldLogger, metrics domain.UsageMetrics) (domain.Completer, error) {
	var (
		inner domain.Completer
		err   error
	)
	switch cfg.Provider {
	case config.ProviderGemini:
		inner, err = NewGeminiClient(cfg, logger)
	case config.ProviderGenAI:
		inner, err = NewGenAIClient(ctx, cfg, logger)
	case config.ProviderVertex:
		inner, err = NewVertexClient(ctx, cfg, logger)
	case config.ProviderOpenAI:
		inner, err = NewOpenAIClient(cfg, logger)
	default:
		return nil, fmt.Errorf("%s: unknown provider %q", cfg.Name, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewRetryingCompleter(inner, cfg, logger, metrics), nil
}

// RetryingCompleter bounds every attempt with a timeout and retries failed
// or empty completions with a linear backoff.
type RetryingCompleter struct {
	inner    domain.Completer
	name     string
	provider string
	attempts int
	timeout  time.Duration
	backoff  time.Duration
	log      logrus.FieldLogger
	metrics  domain.UsageMetrics
}

func NewRetryingCompleter(inner domain.Completer, cfg config.CapabilityConfig, logger logrus.FieldLogger, metrics domain.UsageMetrics) *RetryingCompleter {
	attempts := cfg.Retries
	if attempts < 1 {
		attempts = 1
	}
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	return &RetryingCompleter{
		inner:    inner,
		name:     cfg.Name,
		provider: cfg.Provider,
		attempts: attempts,
		timeout:  cfg.Timeout,
		backoff:  500 * time.Millisecond,
		log:      logger.WithField("capability", cfg.Name),
		metrics:  metrics,
	}
}

func (r *RetryingCompleter) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	var lastErr error
	for i := 0; i < r.attempts; i++ {
		if i > 0 {
			wait := r.backoff * time.Duration(i)
			select {
			case <-ctx.Done():
				return "", &domain.CapabilityError{Provider: r.provider, Err: ctx.Err()}
			case <-time.After(wait):
			}
		}

		text, err := r.attempt(ctx, req)
		r.metrics.IncrementAPICall(err == nil)
		if err == nil {
			return text, nil
		}
		lastErr = err
		r.log.WithError(err).WithField("attempt", i+1).Warn("completion attempt failed")
		if ctx.Err() != nil {
			break
		}
	}

	var capErr *domain.CapabilityError
	if errors.As(lastErr, &capErr) {
		return "", capErr
	}
	return "", &domain.CapabilityError{Provider: r.provider, Err: lastErr}
}

func (r *RetryingCompleter) attempt(ctx context.Context, req domain.CompletionRequest) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	text, err := r.inner.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", &domain.CapabilityError{Provider: r.provider, Err: domain.ErrEmptyOutput}
	}
	return text, nil
}
