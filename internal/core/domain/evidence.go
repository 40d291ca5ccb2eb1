package domain

import "strings"

// SideTableRow is one rendered artifact keyed by (Source, SelfRef).
type SideTableRow struct {
	// Source is the origin document identifier.
	Source string `json:"source"`

	// SelfRef is a single reference token.
	SelfRef string `json:"self_ref"`

	// Type is either ChunkTypeTable or ChunkTypePicture.
	Type ChunkType `json:"chunk_type"`

	// Content is markdown for tables and base64 image data for pictures.
	Content string `json:"content"`
}

// ResolvedEvidence holds the artifacts referenced by a retrieval batch.
// A token appears in at most one of the two maps.
type ResolvedEvidence struct {
	Tables map[string]string `json:"tables"`
	Images map[string]string `json:"images"`
}

// NewResolvedEvidence returns evidence with empty, non-nil maps.
func NewResolvedEvidence() ResolvedEvidence {
	return ResolvedEvidence{
		Tables: make(map[string]string),
		Images: make(map[string]string),
	}
}

// IsEmpty returns true when nothing was resolved.
func (e ResolvedEvidence) IsEmpty() bool {
	return len(e.Tables) == 0 && len(e.Images) == 0
}

// GroundedContext is the payload handed to the generator.
type GroundedContext struct {
	// Query is the user's question.
	Query string

	// Passages are the retrieved chunks in ranking order.
	Passages []Chunk
}

// ContextText joins passage contents with blank lines.
func (g GroundedContext) ContextText() string {
	parts := make([]string, 0, len(g.Passages))
	for _, p := range g.Passages {
		parts = append(parts, p.Content)
	}
	return strings.Join(parts, "\n\n")
}

// AnswerRecord is the uniform response of the answer pipeline.
type AnswerRecord struct {
	AnswerText      string            `json:"answer"`
	Tables          map[string]string `json:"tables"`
	Images          map[string]string `json:"images"`
	RetrievedChunks []Chunk           `json:"retrieved_chunks"`
}

// AnswerResult is either a successful record or an error.
// Record is always well formed; on failure it carries the error message
// and empty evidence.
type AnswerResult struct {
	Record AnswerRecord
	Err    *AnswerError
}

// OK reports whether the answer succeeded.
func (r AnswerResult) OK() bool {
	return r.Err == nil
}

// SuccessResult builds a successful result.
func SuccessResult(answer string, evidence ResolvedEvidence, chunks []Chunk) AnswerResult {
	if chunks == nil {
		chunks = []Chunk{}
	}
	return AnswerResult{
		Record: AnswerRecord{
			AnswerText:      answer,
			Tables:          evidence.Tables,
			Images:          evidence.Images,
			RetrievedChunks: chunks,
		},
	}
}

// FailureResult builds an error-shaped result.
func FailureResult(err *AnswerError) AnswerResult {
	return AnswerResult{
		Record: AnswerRecord{
			AnswerText:      "Error: " + err.Error(),
			Tables:          map[string]string{},
			Images:          map[string]string{},
			RetrievedChunks: []Chunk{},
		},
		Err: err,
	}
}
