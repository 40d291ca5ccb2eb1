package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
)

// Ensure SideTableStore implements the interface.
var _ driven.SideTableStore = (*SideTableStore)(nil)

type sideTableKey struct {
	source string
	ref    string
}

// SideTableStore keeps side-table rows in a map keyed by (source, ref).
// Only the winning row per key is indexed; Put keeps a table row over a
// picture row and otherwise the first row stored.
type SideTableStore struct {
	mu    sync.RWMutex
	rows  map[sideTableKey]domain.SideTableRow
	count int
}

// NewSideTableStore creates an empty side table.
func NewSideTableStore() *SideTableStore {
	return &SideTableStore{
		rows: make(map[sideTableKey]domain.SideTableRow),
	}
}

// Lookup returns the row for the exact (source, ref) pair.
func (s *SideTableStore) Lookup(_ context.Context, source, ref string) (*domain.SideTableRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[sideTableKey{source: source, ref: ref}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &row, nil
}

// Put appends rows.
func (s *SideTableStore) Put(_ context.Context, rows []domain.SideTableRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		s.count++
		key := sideTableKey{source: row.Source, ref: row.SelfRef}
		existing, ok := s.rows[key]
		if ok && (existing.Type == domain.ChunkTypeTable || row.Type != domain.ChunkTypeTable) {
			continue
		}
		s.rows[key] = row
	}
	return nil
}

// Count returns the number of rows stored, duplicates included.
func (s *SideTableStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count, nil
}
