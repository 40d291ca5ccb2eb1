package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

func groqSettings() domain.LLMSettings {
	return domain.LLMSettings{Provider: domain.AIProviderGroq, Model: "llama-3.1-8b-instant"}
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	store := &mockUserStore{}
	validator := &mockValidator{}
	svc := NewUserService(store, plainHasher{}, validator, groqSettings())

	err := svc.Register(context.Background(), "alice", "s3cret!", "gsk_live_key")
	require.NoError(t, err)

	require.Len(t, validator.checked, 1)
	assert.Equal(t, "gsk_live_key", validator.checked[0].APIKey)
	assert.Equal(t, domain.AIProviderGroq, validator.checked[0].Provider)
	assert.Equal(t, "hashed:s3cret!", store.users["alice"].PasswordHash)

	user, err := svc.Login(context.Background(), "alice", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "gsk_live_key", user.APIKey)
}

func TestUserService_Register_Validation(t *testing.T) {
	svc := NewUserService(&mockUserStore{}, plainHasher{}, nil, groqSettings())

	tests := []struct {
		name, id, password, key string
	}{
		{"empty id", " ", "password", "k"},
		{"short password", "bob", "123", "k"},
		{"missing key", "bob", "password", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Register(context.Background(), tt.id, tt.password, tt.key)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestUserService_Register_Duplicate(t *testing.T) {
	store := &mockUserStore{}
	svc := NewUserService(store, plainHasher{}, nil, groqSettings())

	require.NoError(t, svc.Register(context.Background(), "alice", "password", "k1"))
	err := svc.Register(context.Background(), "alice", "password", "k2")

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Equal(t, "k1", store.users["alice"].APIKey)
}

func TestUserService_Register_RejectedKeyNotStored(t *testing.T) {
	store := &mockUserStore{}
	validator := &mockValidator{llmErr: domain.ErrAuthInvalid}
	svc := NewUserService(store, plainHasher{}, validator, groqSettings())

	err := svc.Register(context.Background(), "alice", "password", "bad")

	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	assert.Empty(t, store.users)
}

func TestUserService_Login_Failures(t *testing.T) {
	store := &mockUserStore{}
	svc := NewUserService(store, plainHasher{}, nil, groqSettings())
	require.NoError(t, svc.Register(context.Background(), "alice", "password", "k"))

	_, err := svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)

	_, err = svc.Login(context.Background(), "nobody", "password")
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}
