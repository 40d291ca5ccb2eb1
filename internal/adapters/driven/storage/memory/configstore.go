package memory

import (
	"github.com/custodia-labs/refrag/internal/adapters/driven/config"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in process memory only.
// It backs tests and one-shot commands that must not touch ~/.refrag.
type ConfigStore struct {
	*config.Values
}

// NewConfigStore returns a store holding the merged seed maps.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	return &ConfigStore{Values: config.NewValues(seed...)}
}

func (s *ConfigStore) Set(key string, value any) error {
	s.Put(key, value)
	return nil
}

// Save is a no-op.
func (s *ConfigStore) Save() error { return nil }

// Load is a no-op.
func (s *ConfigStore) Load() error { return nil }

// Path reports ":memory:" since nothing is written.
func (s *ConfigStore) Path() string { return ":memory:" }
