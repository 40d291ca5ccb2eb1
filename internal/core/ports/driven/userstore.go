package driven

import (
	"context"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

// UserStore persists registered users.
type UserStore interface {
	// Create stores a new user. Returns domain.ErrAlreadyExists for a taken ID.
	Create(ctx context.Context, user *domain.User) error

	// Get returns the user by ID or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.User, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash returns an encoded hash of password.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash.
	Verify(hash, password string) bool
}
