package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/custodia-labs/refrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/refrag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
	"github.com/custodia-labs/refrag/internal/logger"
)

// connParams enables WAL so readers do not block the ingest writer.
const connParams = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// Store is one SQLite database serving the user, side-table and vector ports.
type Store struct {
	db     *sql.DB
	path   string
	vector *vectorIndex
}

// DefaultPath is data/refrag.db under the refrag home directory.
func DefaultPath() (string, error) {
	dir, err := file.DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data", "refrag.db"), nil
}

// NewStore opens the database at path, creating it and its directory when
// needed, and brings the schema up to date. An empty path uses DefaultPath.
func NewStore(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+connParams)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	s := &Store{db: db, path: path}
	s.vector = &vectorIndex{store: s}

	applied, err := migrate(context.Background(), db, migrations.FS)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("SQLite store %s ready (%d migrations applied)", path, applied)
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Path() string { return s.path }

// Ping backs the storage readiness check.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) UserStore() driven.UserStore {
	return &userStore{store: s}
}

func (s *Store) SideTableStore() driven.SideTableStore {
	return &sideTableStore{store: s}
}

// VectorIndex always returns the same instance so its embedding cache is shared.
func (s *Store) VectorIndex() driven.VectorIndex {
	return s.vector
}
