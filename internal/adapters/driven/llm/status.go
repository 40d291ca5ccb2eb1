// Package llm holds the JSON client and status classification shared by the
// provider adapters, plus a retrying, rate-limited LLM decorator.
package llm

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

// maxBodyInError bounds how much of a provider error body is quoted.
const maxBodyInError = 512

// StatusError is a non-2xx response from a provider API.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

// NewStatusError builds a StatusError, trimming the body.
func NewStatusError(provider string, code int, body []byte) *StatusError {
	text := strings.TrimSpace(string(body))
	if len(text) > maxBodyInError {
		text = text[:maxBodyInError] + "..."
	}
	return &StatusError{Provider: provider, Code: code, Body: text}
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: API returned status %d", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s: API returned status %d: %s", e.Provider, e.Code, e.Body)
}

// Unwrap maps credential and quota failures onto domain sentinels.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrAuthInvalid
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	default:
		return nil
	}
}

// Retryable reports whether the request may succeed if repeated.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}
