package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
	"github.com/custodia-labs/refrag/internal/core/ports/driving"
	"github.com/custodia-labs/refrag/internal/logger"
)

// Ensure UserService implements the interface.
var _ driving.UserService = (*UserService)(nil)

const minPasswordLength = 6

// UserService registers users and verifies their credentials.
type UserService struct {
	users     driven.UserStore
	hasher    driven.PasswordHasher
	validator driven.AIConfigValidator
	llm       domain.LLMSettings
	now       func() time.Time
}

// NewUserService creates a user service. Registration validates keys
// against the provider described by llm; a nil validator skips that check.
func NewUserService(
	users driven.UserStore,
	hasher driven.PasswordHasher,
	validator driven.AIConfigValidator,
	llm domain.LLMSettings,
) *UserService {
	return &UserService{
		users:     users,
		hasher:    hasher,
		validator: validator,
		llm:       llm,
		now:       time.Now,
	}
}

// Register validates the provider key, hashes the password and stores the user.
func (s *UserService) Register(ctx context.Context, id, password, apiKey string) error {
	id = strings.TrimSpace(id)
	apiKey = strings.TrimSpace(apiKey)
	switch {
	case id == "":
		return fmt.Errorf("%w: user ID is required", domain.ErrInvalidInput)
	case len(password) < minPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	case apiKey == "" && s.llm.Provider.RequiresAPIKey():
		return fmt.Errorf("%w: API key is required", domain.ErrInvalidInput)
	}

	if _, err := s.users.Get(ctx, id); err == nil {
		return fmt.Errorf("register %s: %w", id, domain.ErrAlreadyExists)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("register %s: %w", id, err)
	}

	if s.validator != nil {
		cfg := s.llm
		cfg.APIKey = apiKey
		if err := s.validator.ValidateLLM(ctx, &cfg); err != nil {
			logger.Warn("API key validation failed for %s: %v", id, err)
			return fmt.Errorf("validate API key: %w", err)
		}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           id,
		PasswordHash: hash,
		APIKey:       apiKey,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("register %s: %w", id, err)
	}
	logger.Info("Registered user %s", id)
	return nil
}

// Login verifies the password and returns the user.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, id, password string) (*domain.User, error) {
	user, err := s.users.Get(ctx, strings.TrimSpace(id))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrAuthInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, domain.ErrAuthInvalid
	}
	return user, nil
}
