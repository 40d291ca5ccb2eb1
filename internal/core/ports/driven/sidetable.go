package driven

import (
	"context"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

// SideTableStore maps (source, reference token) to a rendered table or picture.
// It is populated during ingestion and read-only while answering queries.
type SideTableStore interface {
	// Lookup returns the row for the exact (source, ref) pair.
	// Returns domain.ErrNotFound when no row matches.
	// When several rows match, a table row is preferred over a picture row,
	// then the earliest stored row wins.
	Lookup(ctx context.Context, source, ref string) (*domain.SideTableRow, error)

	// Put appends rows. Duplicates are kept; Lookup decides precedence.
	Put(ctx context.Context, rows []domain.SideTableRow) error

	// Count returns the number of stored rows.
	Count(ctx context.Context) (int, error)
}
