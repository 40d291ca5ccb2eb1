// Package generator renders RAG prompts and sends them to an LLM.
package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
	"github.com/custodia-labs/refrag/internal/logger"
)

// Ensure Generator implements the interface.
var _ driven.Generator = (*Generator)(nil)

// Placeholders substituted into the user prompt template.
const (
	PlaceholderContext  = "{context}"
	PlaceholderQuestion = "{question}"
)

// Generator fills the prompt templates from a PromptStore and asks the LLM.
type Generator struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	opts    driven.ChatOptions
}

// New creates a generator.
func New(llm driven.LLMService, prompts driven.PromptStore, opts driven.ChatOptions) *Generator {
	return &Generator{llm: llm, prompts: prompts, opts: opts}
}

// Complete implements driven.Generator.
func (g *Generator) Complete(ctx context.Context, gc domain.GroundedContext) (string, error) {
	if g.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	messages, err := g.Messages(gc)
	if err != nil {
		return "", err
	}

	logger.Debug("Sending %d passages to %s", len(gc.Passages), g.llm.ModelName())
	reply, err := g.llm.Chat(ctx, messages, g.opts)
	if err != nil {
		return "", fmt.Errorf("generator: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// Validate loads both prompts and checks the user template. Startup calls
// it so a broken prompt file stops the service before any query.
func (g *Generator) Validate() error {
	_, _, err := g.templates()
	return err
}

func (g *Generator) templates() (system, user string, err error) {
	system, err = g.prompts.Load(driven.PromptRAGSystem)
	if err != nil {
		return "", "", fmt.Errorf("load system prompt: %w", err)
	}
	user, err = g.prompts.Load(driven.PromptRAGUser)
	if err != nil {
		return "", "", fmt.Errorf("load user prompt: %w", err)
	}
	if !strings.Contains(user, PlaceholderQuestion) {
		return "", "", fmt.Errorf("%w: user prompt template has no %s placeholder",
			domain.ErrConfiguration, PlaceholderQuestion)
	}
	return system, user, nil
}

// Messages renders the system and user messages for gc.
func (g *Generator) Messages(gc domain.GroundedContext) ([]driven.ChatMessage, error) {
	system, template, err := g.templates()
	if err != nil {
		return nil, err
	}

	r := strings.NewReplacer(
		PlaceholderContext, gc.ContextText(),
		PlaceholderQuestion, gc.Query,
	)

	var messages []driven.ChatMessage
	if strings.TrimSpace(system) != "" {
		messages = append(messages, driven.ChatMessage{Role: driven.RoleSystem, Content: system})
	}
	messages = append(messages, driven.ChatMessage{Role: driven.RoleUser, Content: r.Replace(template)})
	return messages, nil
}
