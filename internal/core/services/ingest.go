package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
	"github.com/custodia-labs/refrag/internal/core/ports/driving"
	"github.com/custodia-labs/refrag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

const defaultIngestBatchSize = 32

// IngestService loads converted documents into the vector index and side table.
type IngestService struct {
	vectorIndex      driven.VectorIndex
	sideTable        driven.SideTableStore
	embeddingService driven.EmbeddingService
	batchSize        int
}

// NewIngestService creates an ingest service.
func NewIngestService(
	vectorIndex driven.VectorIndex,
	sideTable driven.SideTableStore,
	embeddingService driven.EmbeddingService,
	batchSize int,
) *IngestService {
	if batchSize <= 0 {
		batchSize = defaultIngestBatchSize
	}
	return &IngestService{
		vectorIndex:      vectorIndex,
		sideTable:        sideTable,
		embeddingService: embeddingService,
		batchSize:        batchSize,
	}
}

// ingestBatch accumulates pending writes between flushes.
type ingestBatch struct {
	chunks []domain.Chunk
	rows   []domain.SideTableRow
}

// Ingest reads JSON Lines records from r. Text and table records are
// embedded and indexed; table and picture records are added to the side table.
func (s *IngestService) Ingest(ctx context.Context, r io.Reader) (domain.IngestStats, error) {
	logger.Section("Ingest")
	var stats domain.IngestStats

	if s.embeddingService == nil {
		return stats, domain.ErrEmbeddingUnavailable
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()

	var batch ingestBatch
	for {
		var rec domain.IngestRecord
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("%w: record %d: %w", domain.ErrInvalidInput, stats.Records+1, err)
		}
		stats.Records++

		meta, content, err := rec.Normalise()
		if err != nil {
			return stats, fmt.Errorf("record %d: %w", stats.Records, err)
		}
		if strings.TrimSpace(content) == "" {
			stats.Skipped++
			continue
		}

		if meta.Type.IsEmbedded() {
			batch.chunks = append(batch.chunks, domain.Chunk{
				ID:       uuid.New().String(),
				Content:  content,
				Metadata: meta,
			})
		}
		if meta.Type.IsArtifact() {
			for _, ref := range domain.SplitReferenceField(meta.SelfRef) {
				batch.rows = append(batch.rows, domain.SideTableRow{
					Source:  meta.Source,
					SelfRef: ref,
					Type:    meta.Type,
					Content: content,
				})
			}
			if meta.Type == domain.ChunkTypeTable {
				stats.Tables++
			} else {
				stats.Pictures++
			}
		}

		if len(batch.chunks) >= s.batchSize {
			if err := s.flush(ctx, &batch, &stats); err != nil {
				return stats, err
			}
		}
	}

	if err := s.flush(ctx, &batch, &stats); err != nil {
		return stats, err
	}

	logger.Info("Ingested %d records: %d chunks, %d tables, %d pictures, %d skipped",
		stats.Records, stats.Chunks, stats.Tables, stats.Pictures, stats.Skipped)
	return stats, nil
}

func (s *IngestService) flush(ctx context.Context, batch *ingestBatch, stats *domain.IngestStats) error {
	if len(batch.chunks) > 0 {
		texts := make([]string, len(batch.chunks))
		for i, c := range batch.chunks {
			texts[i] = c.Content
		}

		vectors, err := s.embeddingService.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("ingest: embed batch: %w", err)
		}
		if len(vectors) != len(batch.chunks) {
			return fmt.Errorf("ingest: expected %d embeddings, got %d", len(batch.chunks), len(vectors))
		}
		for i := range batch.chunks {
			batch.chunks[i].Embedding = vectors[i]
		}

		if err := s.vectorIndex.Add(ctx, batch.chunks); err != nil {
			return fmt.Errorf("ingest: add chunks: %w", err)
		}
		stats.Chunks += len(batch.chunks)
		logger.Debug("Indexed batch of %d chunks", len(batch.chunks))
	}

	if len(batch.rows) > 0 {
		if err := s.sideTable.Put(ctx, batch.rows); err != nil {
			return fmt.Errorf("ingest: side table: %w", err)
		}
	}

	batch.chunks = nil
	batch.rows = nil
	return nil
}

// LoadSideTable reads side-table rows from CSV. The header must name
// source, self_ref, chunk_type and page_content (or content) columns;
// other columns are ignored, as are rows that are not tables or pictures.
func (s *IngestService) LoadSideTable(ctx context.Context, r io.Reader) (int, error) {
	rows, err := ReadSideTableCSV(r)
	if err != nil {
		return 0, err
	}
	if err := s.sideTable.Put(ctx, rows); err != nil {
		return 0, fmt.Errorf("load side table: %w", err)
	}
	logger.Info("Loaded %d side-table rows", len(rows))
	return len(rows), nil
}

// ReadSideTableCSV parses side-table rows from CSV.
func ReadSideTableCSV(r io.Reader) ([]domain.SideTableRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: side table header: %w", domain.ErrConfiguration, err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["page_content"]; !ok {
		if idx, ok := cols["content"]; ok {
			cols["page_content"] = idx
		}
	}
	for _, required := range []string{"source", "self_ref", "chunk_type", "page_content"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: side table is missing column %q", domain.ErrConfiguration, required)
		}
	}

	field := func(record []string, name string) string {
		idx := cols[name]
		if idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	var rows []domain.SideTableRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: side table line %d: %w", domain.ErrConfiguration, line, err)
		}

		typ := domain.ChunkType(strings.ToLower(strings.TrimSpace(field(record, "chunk_type"))))
		if !typ.IsArtifact() {
			continue
		}
		rows = append(rows, domain.SideTableRow{
			Source:  field(record, "source"),
			SelfRef: strings.TrimSpace(field(record, "self_ref")),
			Type:    typ,
			Content: field(record, "page_content"),
		})
	}
	return rows, nil
}
