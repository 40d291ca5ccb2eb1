package postgres

import (
	"context"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

// dryRunDB builds statements without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=refrag dbname=refrag sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestNewStore_RequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSearchQuery_OrdersByCosineDistance(t *testing.T) {
	db := dryRunDB(t)

	var results []scoredChunk
	stmt := searchQuery(db, []float32{0.1, 0.2}, 5).Find(&results).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, `FROM "refrag_chunks"`)
	assert.Contains(t, sql, "1 - (embedding <=> $1) AS similarity")
	assert.Contains(t, sql, "ORDER BY embedding <=> $2")
	assert.Contains(t, sql, "LIMIT")
	require.NotEmpty(t, stmt.Vars)
	assert.Equal(t, pgvector.NewVector([]float32{0.1, 0.2}), stmt.Vars[0])
}

func TestLookupQuery_PrefersTables(t *testing.T) {
	db := dryRunDB(t)

	var m sideTableModel
	stmt := lookupQuery(db, "doc.pdf", "#/tables/0").Take(&m).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, "source = $1 AND self_ref = $2")
	assert.Contains(t, sql, "ORDER BY CASE chunk_type WHEN $3 THEN 0 ELSE 1 END, id")
	assert.Contains(t, stmt.Vars, "table")
}

func TestChunkModel_RoundTrip(t *testing.T) {
	chunk := domain.Chunk{
		ID:      "c1",
		Content: "| a | b |",
		Metadata: domain.ChunkMetadata{
			Source:     "report.pdf",
			ChunkIndex: 4,
			SelfRef:    "#/tables/2",
			ParentRef:  "#/texts/1",
			Type:       domain.ChunkTypeTable,
		},
		Embedding: []float32{0.5, -0.5},
	}

	got := toChunkModel(chunk).toDomain()

	assert.Equal(t, chunk, got)
}

func TestSideTableModel_ToDomain(t *testing.T) {
	row := sideTableModel{ID: 9, Source: "s", SelfRef: "#/pictures/1", ChunkType: "picture", Content: "aGk="}.toDomain()

	assert.Equal(t, domain.ChunkTypePicture, row.Type)
	assert.Equal(t, "#/pictures/1", row.SelfRef)
}
