package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Short key", input: "abc123", expected: "****"},
		{name: "Exactly 8 chars", input: "12345678", expected: "****"},
		{name: "Long key", input: "sk-1234567890abcdef", expected: "sk-1...cdef"},
		{name: "Empty key", input: "", expected: "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "with password", input: "postgres://user:secret@db:5432/refrag", expected: "postgres://user:****@db:5432/refrag"},
		{name: "without password", input: "postgres://user@db/refrag", expected: "postgres://user@db/refrag"},
		{name: "redis", input: "redis://:pw@localhost:6379/0", expected: "redis://:****@localhost:6379/0"},
		{name: "key value form", input: "host=db user=u", expected: "host=db user=u"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskDSN(tt.input))
		})
	}
}

func TestSettingsShow(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.LLM.APIKey = "gsk_1234567890abcdef"
	settings.Storage.Backend = domain.StorageBackendPostgres
	settings.Storage.PostgresDSN = "postgres://refrag:hunter2@db/refrag"
	mock := &mockSettingsService{settings: &settings}
	withSettings(t, mock)

	out, err := execute(t, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "[LLM]")
	assert.Contains(t, out, "llama-3.1-8b-instant")
	assert.Contains(t, out, "gsk_...cdef")
	assert.NotContains(t, out, "gsk_1234567890abcdef")
	assert.Contains(t, out, "fetch_k: 20")
	assert.Contains(t, out, "postgres://refrag:****@db/refrag")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsSet(t *testing.T) {
	mock := &mockSettingsService{settings: ptr(domain.DefaultAppSettings())}
	withSettings(t, mock)

	out, err := execute(t, "settings", "set", "retrieval.k", "5")
	require.NoError(t, err)
	assert.Equal(t, "5", mock.set["retrieval.k"])
	assert.Contains(t, out, "Set retrieval.k = 5")

	out, err = execute(t, "settings", "set", "llm.api_key", "sk-verysecretkey")
	require.NoError(t, err)
	assert.Contains(t, out, "sk-v...tkey")

	mock.setErr = domain.ErrInvalidInput
	_, err = execute(t, "settings", "set", "retrieval.k", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsValidate(t *testing.T) {
	mock := &mockSettingsService{settings: ptr(domain.DefaultAppSettings()), validateErr: domain.ErrAuthInvalid}
	withSettings(t, mock)

	out, err := execute(t, "settings", "validate")
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	assert.Contains(t, out, "FAILED")
}

func TestSettings_NotConfigured(t *testing.T) {
	withSettings(t, nil)
	_, err := execute(t, "settings", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}
