package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
)

type scriptedLLM struct {
	errs  []error
	calls int
}

func (s *scriptedLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return "reply", nil
}

func (s *scriptedLLM) ModelName() string            { return "scripted" }
func (s *scriptedLLM) Ping(_ context.Context) error { return nil }
func (s *scriptedLLM) Close() error                 { return nil }

func fastRetrying(inner driven.LLMService, retries int) *Retrying {
	r := NewRetrying(inner, 0, retries)
	r.backoff = time.Millisecond
	return r
}

func TestRetrying_RetriesTransientErrors(t *testing.T) {
	inner := &scriptedLLM{errs: []error{
		NewStatusError("groq", http.StatusTooManyRequests, nil),
		NewStatusError("groq", http.StatusBadGateway, []byte("upstream")),
	}}

	reply, err := fastRetrying(inner, 2).Chat(context.Background(), nil, driven.ChatOptions{})

	require.NoError(t, err)
	assert.Equal(t, "reply", reply)
	assert.Equal(t, 3, inner.calls)
}

func TestRetrying_GivesUpAfterMaxRetries(t *testing.T) {
	inner := &scriptedLLM{errs: []error{
		NewStatusError("groq", http.StatusTooManyRequests, nil),
		NewStatusError("groq", http.StatusTooManyRequests, nil),
	}}

	_, err := fastRetrying(inner, 1).Chat(context.Background(), nil, driven.ChatOptions{})

	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 2, inner.calls)
}

func TestRetrying_DoesNotRetryAuthFailures(t *testing.T) {
	inner := &scriptedLLM{errs: []error{NewStatusError("openai", http.StatusUnauthorized, []byte("bad key"))}}

	_, err := fastRetrying(inner, 3).Chat(context.Background(), nil, driven.ChatOptions{})

	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	assert.Equal(t, 1, inner.calls)
}

func TestRetrying_DoesNotRetryClientErrors(t *testing.T) {
	inner := &scriptedLLM{errs: []error{NewStatusError("openai", http.StatusBadRequest, nil)}}

	_, err := fastRetrying(inner, 3).Chat(context.Background(), nil, driven.ChatOptions{})

	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestRetrying_StopsOnCancelledContext(t *testing.T) {
	inner := &scriptedLLM{errs: []error{errors.New("connection reset"), errors.New("connection reset")}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fastRetrying(inner, 3).Chat(ctx, nil, driven.ChatOptions{})

	assert.Error(t, err)
	assert.LessOrEqual(t, inner.calls, 1)
}

func TestStatusError(t *testing.T) {
	err := NewStatusError("anthropic", http.StatusForbidden, []byte("  forbidden \n"))

	assert.Equal(t, "anthropic: API returned status 403: forbidden", err.Error())
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	assert.False(t, err.Retryable())
	assert.True(t, NewStatusError("x", http.StatusServiceUnavailable, nil).Retryable())
	assert.Equal(t, "x: API returned status 500", NewStatusError("x", 500, nil).Error())
}
