package driven

// PromptStore provides access to LLM prompt templates.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return domain.ErrNotFound.
	Load(name string) (string, error)

	// Reload re-reads prompts from their backing file.
	// A malformed file returns domain.ErrConfiguration and keeps the previous prompts.
	Reload() error
}

// Well-known prompt names.
const (
	// PromptRAGSystem is the system prompt for grounded answers.
	// This prompt has no placeholders.
	PromptRAGSystem = "rag_system"

	// PromptRAGUser is the user message template.
	// It expects {context} and {question} placeholders.
	PromptRAGUser = "rag_user"
)
