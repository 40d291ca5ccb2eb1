package driving

import (
	"context"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

// UserService registers users and verifies their credentials.
type UserService interface {
	// Register validates the provider key, hashes the password and stores the user.
	Register(ctx context.Context, id, password, apiKey string) error

	// Login verifies the password and returns the user with its API key.
	Login(ctx context.Context, id, password string) (*domain.User, error)
}
