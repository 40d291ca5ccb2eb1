package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
)

// sideTableStore implements driven.SideTableStore.
type sideTableStore struct {
	store *Store
}

var _ driven.SideTableStore = (*sideTableStore)(nil)

// Lookup returns the preferred row for (source, ref): tables first, then insertion order.
func (s *sideTableStore) Lookup(ctx context.Context, source, ref string) (*domain.SideTableRow, error) {
	var row domain.SideTableRow
	var typ string
	err := s.store.db.QueryRowContext(ctx, `
		SELECT source, self_ref, chunk_type, content
		FROM side_table
		WHERE source = ? AND self_ref = ?
		ORDER BY CASE chunk_type WHEN 'table' THEN 0 ELSE 1 END, rowid
		LIMIT 1
	`, source, ref).Scan(&row.Source, &row.SelfRef, &typ, &row.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up side table: %w", err)
	}
	row.Type = domain.ChunkType(typ)
	return &row, nil
}

// Put appends rows in one transaction.
func (s *sideTableStore) Put(ctx context.Context, rows []domain.SideTableRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO side_table (source, self_ref, chunk_type, content) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.Source, row.SelfRef, row.Type.String(), row.Content); err != nil {
			return fmt.Errorf("saving side table row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Count returns the number of stored rows.
func (s *sideTableStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM side_table").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting side table: %w", err)
	}
	return n, nil
}
