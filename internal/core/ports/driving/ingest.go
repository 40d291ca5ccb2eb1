package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

// IngestService loads pre-chunked documents into the index and side table.
type IngestService interface {
	// Ingest reads JSON Lines records from r.
	Ingest(ctx context.Context, r io.Reader) (domain.IngestStats, error)

	// LoadSideTable reads side-table rows from a CSV stream.
	LoadSideTable(ctx context.Context, r io.Reader) (int, error)
}
