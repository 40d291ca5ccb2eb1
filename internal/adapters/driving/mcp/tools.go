package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string            `json:"answer"`
	Tables    map[string]string `json:"tables"`
	Images    map[string]string `json:"images"`
	Documents []DocumentOutput  `json:"documents"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the query to find relevant passages"`
	K     int    `json:"k,omitempty" jsonschema:"number of passages to return (default from settings)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput represents a single retrieved passage.
type DocumentOutput struct {
	Source     string  `json:"source"`
	ChunkIndex int     `json:"chunk_index"`
	Type       string  `json:"chunk_type"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed documents, with referenced tables and images",
	}, s.handleAsk)

	if s.ports.Retrieval != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "retrieve",
			Description: "Retrieve the passages most relevant to a query",
		}, s.handleRetrieve)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	result := s.ports.Answer.Answer(ctx, input.Question)
	if !result.OK() {
		return nil, AskOutput{}, errors.New(result.Record.AnswerText)
	}

	rec := result.Record
	return nil, AskOutput{
		Answer:    rec.AnswerText,
		Tables:    rec.Tables,
		Images:    rec.Images,
		Documents: documentsOutput(rec.RetrievedChunks),
	}, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	if input.Query == "" {
		return nil, RetrieveOutput{}, domain.ErrInvalidInput
	}

	chunks, err := s.ports.Retrieval.Retrieve(ctx, input.Query, input.K)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	docs := documentsOutput(chunks)
	return nil, RetrieveOutput{Documents: docs, Count: len(docs)}, nil
}

func documentsOutput(chunks []domain.Chunk) []DocumentOutput {
	out := make([]DocumentOutput, len(chunks))
	for i, c := range chunks {
		out[i] = DocumentOutput{
			Source:     c.Metadata.Source,
			ChunkIndex: c.Metadata.ChunkIndex,
			Type:       c.Metadata.Type.String(),
			Score:      c.Score,
			Content:    c.Content,
		}
	}
	return out
}
