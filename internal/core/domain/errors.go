package domain

import (
	"context"
	"errors"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Side-table lookups return it for a miss, which is not a failure.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown provider or backend type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Pipeline Errors.

	// ErrConfiguration indicates a required startup resource is missing or malformed.
	// It is fatal: the process must not serve queries.
	ErrConfiguration = errors.New("configuration error")

	// ErrRetrieval indicates the vector index, embedding service, or side table failed.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGeneration indicates the language model call failed.
	ErrGeneration = errors.New("generation failed")

	// Service Availability Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// Authentication Errors.

	// ErrAuthInvalid indicates credentials were rejected.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// ErrorCode is a stable, machine-readable error class carried in answers.
type ErrorCode string

// Error codes surfaced in failed answers.
const (
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrorCodeRetrieval    ErrorCode = "RETRIEVAL_ERROR"
	ErrorCodeGeneration   ErrorCode = "GENERATION_ERROR"
	ErrorCodeAuth         ErrorCode = "AUTH_ERROR"
	ErrorCodeRateLimited  ErrorCode = "RATE_LIMITED"
	ErrorCodeTimeout      ErrorCode = "TIMEOUT"
	ErrorCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// String returns the string representation.
func (c ErrorCode) String() string {
	return string(c)
}

// AnswerError is the error half of an AnswerResult.
type AnswerError struct {
	// Code classifies the failure.
	Code ErrorCode

	// Message is the human-readable description.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *AnswerError) Error() string {
	return "[" + string(e.Code) + "] " + e.Message
}

// Unwrap returns the underlying cause.
func (e *AnswerError) Unwrap() error {
	return e.Cause
}

// ClassifyError maps an error chain onto a stable ErrorCode.
// Authentication and rate limiting take precedence over the stage
// sentinels so callers can react to them specifically.
func ClassifyError(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorCodeTimeout
	case errors.Is(err, ErrInvalidInput):
		return ErrorCodeInvalidInput
	case errors.Is(err, ErrAuthInvalid):
		return ErrorCodeAuth
	case errors.Is(err, ErrRateLimited):
		return ErrorCodeRateLimited
	case errors.Is(err, ErrRetrieval):
		return ErrorCodeRetrieval
	case errors.Is(err, ErrGeneration):
		return ErrorCodeGeneration
	default:
		return ErrorCodeInternal
	}
}

// NewAnswerError builds an AnswerError from an error chain.
func NewAnswerError(err error) *AnswerError {
	if err == nil {
		return nil
	}
	return &AnswerError{
		Code:    ClassifyError(err),
		Message: err.Error(),
		Cause:   err,
	}
}
