package driven

import "context"

// LLMService is a provider chat endpoint. Adapters exist for Groq and
// OpenAI (shared wire format), Anthropic and Ollama.
type LLMService interface {
	// Chat sends the conversation and returns the assistant reply.
	// Rejected keys and throttling must satisfy errors.Is with
	// domain.ErrAuthInvalid and domain.ErrRateLimited.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	ModelName() string

	// Ping checks reachability and that the credential is accepted.
	Ping(ctx context.Context) error

	Close() error
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn; Role is RoleSystem, RoleUser or RoleAssistant.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tunes a single Chat call. Zero values use provider defaults.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}
