package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
	"github.com/custodia-labs/refrag/internal/core/ports/driving"
	"github.com/custodia-labs/refrag/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

const outcomeOK = "ok"

// AnswerService runs retrieval, reference resolution and generation
// for one question and packages the result.
type AnswerService struct {
	retriever driving.RetrievalService
	resolver  driving.ReferenceResolver
	generator driven.Generator
	metrics   driven.AnswerMetrics
	k         int
	timeout   time.Duration
}

// NewAnswerService creates an answer service.
// k <= 0 defers to the retriever's default; timeout <= 0 uses the default query timeout.
func NewAnswerService(
	retriever driving.RetrievalService,
	resolver driving.ReferenceResolver,
	generator driven.Generator,
	k int,
	timeout time.Duration,
) *AnswerService {
	if timeout <= 0 {
		timeout = domain.DefaultRetrievalSettings().Timeout
	}
	return &AnswerService{
		retriever: retriever,
		resolver:  resolver,
		generator: generator,
		metrics:   driven.NopMetrics{},
		k:         k,
		timeout:   timeout,
	}
}

// SetMetrics sets the metrics sink.
func (s *AnswerService) SetMetrics(m driven.AnswerMetrics) {
	if m == nil {
		m = driven.NopMetrics{}
	}
	s.metrics = m
}

// Answer answers query. Failures are reported through the result's Err
// with an error-shaped record; the retrieved chunks used for generation
// are the same ones used for evidence resolution.
func (s *AnswerService) Answer(ctx context.Context, query string) domain.AnswerResult {
	start := time.Now()
	logger.Section("Answer")
	logger.Debug("Query: %q", query)

	result := s.answer(ctx, strings.TrimSpace(query))

	outcome := outcomeOK
	if !result.OK() {
		outcome = string(result.Err.Code)
		logger.Error("answer failed: %v", result.Err)
	}
	s.metrics.ObserveAnswer(outcome, time.Since(start))
	return result
}

func (s *AnswerService) answer(ctx context.Context, query string) domain.AnswerResult {
	if query == "" {
		return domain.FailureResult(domain.NewAnswerError(fmt.Errorf("%w: empty query", domain.ErrInvalidInput)))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	chunks, err := s.retriever.Retrieve(ctx, query, s.k)
	if err != nil {
		if !errors.Is(err, domain.ErrRetrieval) {
			err = fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
		}
		return domain.FailureResult(domain.NewAnswerError(err))
	}

	evidence, err := s.resolver.Resolve(ctx, chunks)
	if err != nil {
		return domain.FailureResult(domain.NewAnswerError(fmt.Errorf("%w: %w", domain.ErrRetrieval, err)))
	}
	s.metrics.ObserveRetrieval(len(chunks), len(evidence.Tables), len(evidence.Images))

	done := logger.Timed("generation")
	text, err := s.generator.Complete(ctx, domain.GroundedContext{Query: query, Passages: chunks})
	done()
	if err != nil {
		return domain.FailureResult(domain.NewAnswerError(fmt.Errorf("%w: %w", domain.ErrGeneration, err)))
	}

	evidence.Images = normaliseImages(evidence.Images)
	return domain.SuccessResult(text, evidence, chunks)
}

// normaliseImages strips whitespace from base64 payloads and re-encodes
// them in padded standard form. Undecodable payloads are dropped.
func normaliseImages(images map[string]string) map[string]string {
	out := make(map[string]string, len(images))
	for ref, payload := range images {
		data, err := decodeImage(payload)
		if err != nil {
			logger.Warn("Dropping image %s: %v", ref, err)
			continue
		}
		out[ref] = base64.StdEncoding.EncodeToString(data)
	}
	return out
}

func decodeImage(payload string) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, payload)
	if compact == "" {
		return nil, fmt.Errorf("empty payload")
	}
	data, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(compact, "="))
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("payload decodes to no bytes")
	}
	return data, nil
}
