package domain

import "time"

// User is a registered account with its bound provider credential.
type User struct {
	// ID is the unique user identifier chosen at registration.
	ID string

	// PasswordHash is the bcrypt hash of the password.
	PasswordHash string

	// APIKey is the language model provider key.
	APIKey string

	// CreatedAt is when the user registered.
	CreatedAt time.Time
}

// MaskedAPIKey returns the key with all but the edges hidden.
func (u User) MaskedAPIKey() string {
	return MaskSecret(u.APIKey)
}

// MaskSecret hides the middle of a secret for display.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
