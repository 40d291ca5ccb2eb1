package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

func TestConfigValidator_ValidateLLM(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"Invalid API Key"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Hi"}}]}`))
	}))
	defer server.Close()

	v := NewConfigValidator()
	cfg := domain.LLMSettings{Provider: domain.AIProviderGroq, BaseURL: server.URL, APIKey: "good"}
	assert.NoError(t, v.ValidateLLM(context.Background(), &cfg))

	cfg.APIKey = "bad"
	assert.ErrorIs(t, v.ValidateLLM(context.Background(), &cfg), domain.ErrAuthInvalid)

	cfg.APIKey = ""
	assert.ErrorIs(t, v.ValidateLLM(context.Background(), &cfg), domain.ErrConfiguration)
}

func TestConfigValidator_ValidateEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2]]}`))
	}))
	defer server.Close()

	v := NewConfigValidator()
	err := v.ValidateEmbedding(context.Background(), &domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  server.URL,
	})
	assert.NoError(t, err)
}
