package mcp

import (
	"context"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	result   domain.AnswerResult
	question string
}

func (m *mockAnswerService) Answer(_ context.Context, query string) domain.AnswerResult {
	m.question = query
	return m.result
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	chunks []domain.Chunk
	err    error
	k      int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, k int) ([]domain.Chunk, error) {
	m.k = k
	return m.chunks, m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings *domain.AppSettings
	err      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	return m.settings, m.err
}

func (m *mockSettingsService) Set(_, _ string) error { return m.err }

func (m *mockSettingsService) SetLLMProvider(_ domain.AIProvider, _, _ string) error { return m.err }

func (m *mockSettingsService) SetEmbeddingProvider(_ domain.AIProvider, _, _ string) error {
	return m.err
}

func (m *mockSettingsService) SetStrategy(_ domain.SearchStrategy) error { return m.err }

func (m *mockSettingsService) Validate() error { return m.err }

func (m *mockSettingsService) ValidateLLMConfig(_ context.Context) error { return m.err }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

// mockPromptStore is a mock implementation of driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() error { return nil }
