package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/refrag/internal/adapters/driven/config"
	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// HomeEnv overrides the refrag home directory.
const HomeEnv = "REFRAG_HOME"

const configFileName = "config.toml"

// DefaultDir returns $REFRAG_HOME, or ~/.refrag when unset.
func DefaultDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".refrag"), nil
}

// ConfigStore keeps settings in config.toml. Dotted keys in memory map
// to nested tables on disk, and every Set rewrites the file.
type ConfigStore struct {
	*config.Values

	writeMu sync.Mutex
	path    string
}

// NewConfigStore opens (or creates) the config under dir.
// An empty dir resolves through DefaultDir.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{
		Values: config.NewValues(),
		path:   filepath.Join(dir, configFileName),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Set updates key and persists the file.
func (s *ConfigStore) Set(key string, value any) error {
	s.Put(key, value)
	return s.Save()
}

// Save writes the table through a temp file so readers never see a partial config.
func (s *ConfigStore) Save() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	data, err := toml.Marshal(config.Nest(s.Snapshot()))
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save config: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("save config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// Load rereads the file. A missing file leaves an empty table; a file
// that is not valid TOML is a configuration error.
func (s *ConfigStore) Load() error {
	raw, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.Replace(nil)
		return nil
	case err != nil:
		return fmt.Errorf("read %s: %w", s.path, err)
	}

	var tables map[string]any
	if err := toml.Unmarshal(raw, &tables); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrConfiguration, s.path, err)
	}
	s.Replace(config.Flatten(tables, ""))
	return nil
}

func (s *ConfigStore) Path() string {
	return s.path
}
