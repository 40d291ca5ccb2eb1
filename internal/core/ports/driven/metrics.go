package driven

import "time"

// AnswerMetrics records pipeline outcomes.
// Implementations must be safe for concurrent use.
type AnswerMetrics interface {
	// ObserveAnswer records one answer with its outcome code ("ok" on success).
	ObserveAnswer(outcome string, elapsed time.Duration)

	// ObserveRetrieval records the size of a retrieval batch and its evidence.
	ObserveRetrieval(chunks, tables, images int)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

// ObserveAnswer implements AnswerMetrics.
func (NopMetrics) ObserveAnswer(string, time.Duration) {}

// ObserveRetrieval implements AnswerMetrics.
func (NopMetrics) ObserveRetrieval(int, int, int) {}
