package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
	"github.com/custodia-labs/refrag/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptFileName is the prompt file inside the refrag home directory.
const PromptFileName = "prompt.toml"

// promptFile is the on-disk layout of prompt.toml.
type promptFile struct {
	RAGPrompt struct {
		SystemPrompt       string `toml:"system_prompt"`
		UserPromptTemplate string `toml:"user_prompt_template"`
	} `toml:"rag_prompt"`
}

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptRAGSystem: `You are a careful assistant answering questions about a document collection. Answer only from the provided context. When the context includes tables, read values from them exactly. If the context does not contain the answer, say that you do not know.`,

	driven.PromptRAGUser: `Context:
{context}

Question: {question}

Answer:`,
}

// PromptStore serves RAG prompts from prompt.toml, falling back to
// built-in defaults for anything the file leaves empty.
//
// The file is read lazily on first Load. When it does not exist a copy
// of the defaults is written so users have something to edit.
type PromptStore struct {
	mu      sync.RWMutex
	path    string
	prompts map[string]string // nil until the first successful read
}

// NewPromptStore creates a prompt store reading dir/prompt.toml.
// If dir is empty, DefaultDir is used.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = d
	}
	return &PromptStore{path: filepath.Join(dir, PromptFileName)}, nil
}

// Path returns the prompt file path.
func (s *PromptStore) Path() string {
	return s.path
}

// Load returns the named prompt. Until the file has parsed once, every
// Load retries it, so fixing a malformed file takes effect without a restart.
func (s *PromptStore) Load(name string) (string, error) {
	if err := s.ensureLoaded(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	prompt, ok := s.prompts[name]
	if !ok {
		return "", fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
	}
	return prompt, nil
}

// Reload re-reads the prompt file. A malformed file keeps the previous prompts.
func (s *PromptStore) Reload() error {
	prompts, err := s.read()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.prompts = prompts
	s.mu.Unlock()
	logger.Info("Reloaded prompts from %s", s.path)
	return nil
}

func (s *PromptStore) ensureLoaded() error {
	s.mu.RLock()
	loaded := s.prompts != nil
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		if err := s.writeDefaults(); err != nil {
			logger.Warn("Could not write default prompts to %s: %v", s.path, err)
		}
	}
	prompts, err := s.read()
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.prompts == nil {
		s.prompts = prompts
	}
	s.mu.Unlock()
	return nil
}

// read parses the prompt file over the defaults.
func (s *PromptStore) read() (map[string]string, error) {
	prompts := make(map[string]string, len(defaultPrompts))
	for k, v := range defaultPrompts {
		prompts[k] = v
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return prompts, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrConfiguration, s.path, err)
	}

	var pf promptFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrConfiguration, s.path, err)
	}
	if pf.RAGPrompt.SystemPrompt != "" {
		prompts[driven.PromptRAGSystem] = pf.RAGPrompt.SystemPrompt
	}
	if pf.RAGPrompt.UserPromptTemplate != "" {
		prompts[driven.PromptRAGUser] = pf.RAGPrompt.UserPromptTemplate
	}
	return prompts, nil
}

func (s *PromptStore) writeDefaults() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	var pf promptFile
	pf.RAGPrompt.SystemPrompt = defaultPrompts[driven.PromptRAGSystem]
	pf.RAGPrompt.UserPromptTemplate = defaultPrompts[driven.PromptRAGUser]
	data, err := toml.Marshal(pf)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}
