package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
	"github.com/custodia-labs/refrag/internal/core/ports/driving"
	"github.com/custodia-labs/refrag/internal/logger"
)

// Ensure ReferenceResolver implements the interface.
var _ driving.ReferenceResolver = (*ReferenceResolver)(nil)

// ReferenceResolver joins the table and picture references of retrieved
// chunks against the side table.
type ReferenceResolver struct {
	sideTable driven.SideTableStore
}

// NewReferenceResolver creates a resolver over the given side table.
func NewReferenceResolver(sideTable driven.SideTableStore) *ReferenceResolver {
	return &ReferenceResolver{sideTable: sideTable}
}

// Resolve returns the tables and images referenced by chunks.
// Misses are skipped. A later write for a token replaces an earlier one
// and removes it from the other map, so Tables and Images stay disjoint.
func (r *ReferenceResolver) Resolve(ctx context.Context, chunks []domain.Chunk) (domain.ResolvedEvidence, error) {
	evidence := domain.NewResolvedEvidence()

	for pos := range chunks {
		meta := chunks[pos].Metadata
		refs := domain.ParseReferences(meta)
		if refs.Len() == 0 {
			continue
		}
		logger.Debug("Chunk %d (%s): %d references", pos, meta.Source, refs.Len())

		for _, ref := range refs.Sorted() {
			row, err := r.sideTable.Lookup(ctx, meta.Source, ref)
			if errors.Is(err, domain.ErrNotFound) {
				logger.Debug("No side-table row for %s in %q", ref, meta.Source)
				continue
			}
			if err != nil {
				return domain.ResolvedEvidence{}, fmt.Errorf("resolve %s: %w", ref, err)
			}
			if row.Content == "" {
				continue
			}

			switch row.Type {
			case domain.ChunkTypeTable:
				evidence.Tables[ref] = row.Content
				delete(evidence.Images, ref)
			case domain.ChunkTypePicture:
				evidence.Images[ref] = row.Content
				delete(evidence.Tables, ref)
			default:
				logger.Warn("Side-table row %s in %q has unexpected type %q", ref, meta.Source, row.Type)
			}
		}
	}

	logger.Debug("Resolved %d tables, %d images", len(evidence.Tables), len(evidence.Images))
	return evidence, nil
}
