package mcp

import (
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
	"github.com/custodia-labs/refrag/internal/core/ports/driving"
)

// Ports aggregates the port interfaces required by the MCP server.
type Ports struct {
	// Answer runs the full question answering pipeline.
	Answer driving.AnswerService

	// Retrieval returns ranked passages without generation.
	Retrieval driving.RetrievalService

	// Settings reports the active configuration.
	Settings driving.SettingsService

	// Prompts exposes the prompt templates.
	Prompts driven.PromptStore
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
