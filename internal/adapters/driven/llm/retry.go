package llm

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
	"github.com/custodia-labs/refrag/internal/logger"
)

// Ensure Retrying implements the interface.
var _ driven.LLMService = (*Retrying)(nil)

const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 8 * time.Second
)

// Retrying paces and retries chat calls on an inner LLMService.
type Retrying struct {
	inner      driven.LLMService
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

// NewRetrying wraps inner. requestsPerSecond <= 0 disables pacing;
// maxRetries is the number of extra attempts after the first.
func NewRetrying(inner driven.LLMService, requestsPerSecond float64, maxRetries int) *Retrying {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Retrying{
		inner:      inner,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: max(maxRetries, 0),
		backoff:    initialBackoff,
	}
}

// Chat forwards to the inner service, retrying transient failures.
func (r *Retrying) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	backoff := r.backoff
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("Retrying %s chat (attempt %d) after %v: %v", r.inner.ModelName(), attempt+1, backoff, lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
		}

		if err := r.limiter.Wait(ctx); err != nil {
			if lastErr != nil {
				return "", lastErr
			}
			return "", err
		}

		reply, err := r.inner.Chat(ctx, messages, opts)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if !retryable(ctx, err) {
			return "", err
		}
	}
	return "", lastErr
}

// ModelName returns the inner model name.
func (r *Retrying) ModelName() string {
	return r.inner.ModelName()
}

// Ping forwards without retrying.
func (r *Retrying) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// Close closes the inner service.
func (r *Retrying) Close() error {
	return r.inner.Close()
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, domain.ErrAuthInvalid) || errors.Is(err, domain.ErrInvalidInput) {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.Retryable()
	}
	// Transport failures.
	return true
}
