package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for refrag resources.
	uriScheme = "refrag://"
)

// statusInfo is the JSON body of the status resource. Secrets are never included.
type statusInfo struct {
	Version           string  `json:"version"`
	LLMProvider       string  `json:"llm_provider,omitempty"`
	LLMModel          string  `json:"llm_model,omitempty"`
	LLMConfigured     bool    `json:"llm_configured"`
	EmbeddingProvider string  `json:"embedding_provider,omitempty"`
	EmbeddingModel    string  `json:"embedding_model,omitempty"`
	Strategy          string  `json:"strategy,omitempty"`
	K                 int     `json:"k,omitempty"`
	FetchK            int     `json:"fetch_k,omitempty"`
	Lambda            float64 `json:"lambda,omitempty"`
	StorageBackend    string  `json:"storage_backend,omitempty"`
	CacheBackend      string  `json:"cache_backend,omitempty"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Active providers and retrieval settings",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	if s.ports.Prompts != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "prompts/{name}",
			Name:        "prompt",
			Description: "A RAG prompt template (rag_system or rag_user)",
			MIMEType:    "text/plain",
		}, s.handlePromptResource)
	}
}

// handleStatusResource returns the active configuration.
func (s *Server) handleStatusResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info := statusInfo{Version: Version}

	if s.ports.Settings != nil {
		settings, err := s.ports.Settings.Get()
		if err != nil {
			return nil, fmt.Errorf("getting settings: %w", err)
		}
		info.LLMProvider = settings.LLM.Provider.String()
		info.LLMModel = settings.LLM.Model
		info.LLMConfigured = settings.LLM.IsConfigured()
		info.EmbeddingProvider = settings.Embedding.Provider.String()
		info.EmbeddingModel = settings.Embedding.Model
		info.Strategy = settings.Retrieval.Strategy.String()
		info.K = settings.Retrieval.K
		info.FetchK = settings.Retrieval.FetchK
		info.Lambda = settings.Retrieval.Lambda
		info.StorageBackend = string(settings.Storage.Backend)
		info.CacheBackend = string(settings.Cache.Backend)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling status: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handlePromptResource returns a prompt template by name.
func (s *Server) handlePromptResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractPromptName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	prompt, err := s.ports.Prompts.Load(name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("loading prompt: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     prompt,
		}},
	}, nil
}

// extractPromptName extracts the name from a URI like refrag://prompts/{name}.
func extractPromptName(uri string) string {
	const prefix = uriScheme + "prompts/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	name := strings.TrimPrefix(uri, prefix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
