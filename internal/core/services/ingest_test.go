package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

const sampleJSONL = `{"page_content":"Aspirin reduces fever.","metadata":{"source":"guide.pdf","chunk_index":0,"self_ref":"#/texts/1","parent_ref":null,"child_ref":"#/tables/0","chunk_type":"text"}}
{"page_content":"| drug | dose |\n|---|---|\n| aspirin | 500mg |","metadata":{"source":"guide.pdf","chunk_index":1,"self_ref":"#/tables/0","chunk_type":"table"}}
{"page_content":"iVBORw0KGgo=","metadata":{"source":"guide.pdf","chunk_index":2,"self_ref":"#/pictures/0","chunk_type":"picture"}}
{"page_content":"   ","metadata":{"source":"guide.pdf","chunk_index":3}}
`

func TestIngestService_Ingest(t *testing.T) {
	index := &mockVectorIndex{}
	side := newMockSideTable()
	embed := &mockEmbeddingService{vector: []float32{0.1, 0.2}}
	svc := NewIngestService(index, side, embed, 0)

	stats, err := svc.Ingest(context.Background(), strings.NewReader(sampleJSONL))

	require.NoError(t, err)
	assert.Equal(t, domain.IngestStats{Records: 4, Chunks: 2, Tables: 1, Pictures: 1, Skipped: 1}, stats)

	require.Len(t, index.added, 2)
	assert.Equal(t, domain.ChunkTypeText, index.added[0].Metadata.Type)
	assert.Equal(t, "#/tables/0", index.added[0].Metadata.ChildRef)
	assert.Equal(t, []float32{0.1, 0.2}, index.added[0].Embedding)
	assert.NotEmpty(t, index.added[0].ID)
	assert.NotEqual(t, index.added[0].ID, index.added[1].ID)

	require.Len(t, side.put, 2)
	assert.Equal(t, domain.SideTableRow{
		Source: "guide.pdf", SelfRef: "#/tables/0", Type: domain.ChunkTypeTable,
		Content: "| drug | dose |\n|---|---|\n| aspirin | 500mg |",
	}, side.put[0])
	assert.Equal(t, domain.ChunkTypePicture, side.put[1].Type)
}

func TestIngestService_Batches(t *testing.T) {
	index := &mockVectorIndex{}
	embed := &mockEmbeddingService{vector: []float32{1}}
	svc := NewIngestService(index, newMockSideTable(), embed, 2)

	var b strings.Builder
	for i := 0; i < 5; i++ {
		b.WriteString(`{"page_content":"text","metadata":{"source":"s"}}` + "\n")
	}
	stats, err := svc.Ingest(context.Background(), strings.NewReader(b.String()))

	require.NoError(t, err)
	assert.Equal(t, 5, stats.Chunks)
	require.Len(t, embed.batches, 3)
	assert.Len(t, embed.batches[0], 2)
	assert.Len(t, embed.batches[2], 1)
}

func TestIngestService_InvalidRecord(t *testing.T) {
	svc := NewIngestService(&mockVectorIndex{}, newMockSideTable(), &mockEmbeddingService{vector: []float32{1}}, 0)

	t.Run("unknown chunk type", func(t *testing.T) {
		_, err := svc.Ingest(context.Background(), strings.NewReader(`{"page_content":"x","metadata":{"chunk_type":"formula"}}`))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), "record 1")
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := svc.Ingest(context.Background(), strings.NewReader(`{"page_content":`))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestIngestService_EmbeddingFailure(t *testing.T) {
	svc := NewIngestService(&mockVectorIndex{}, newMockSideTable(), &mockEmbeddingService{embedErr: errors.New("quota")}, 0)

	_, err := svc.Ingest(context.Background(), strings.NewReader(`{"page_content":"x","metadata":{}}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}

func TestIngestService_NoEmbeddingService(t *testing.T) {
	svc := NewIngestService(&mockVectorIndex{}, newMockSideTable(), nil, 0)

	_, err := svc.Ingest(context.Background(), strings.NewReader(""))

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIngestService_LoadSideTable(t *testing.T) {
	side := newMockSideTable()
	svc := NewIngestService(&mockVectorIndex{}, side, nil, 0)

	csvData := "source,chunk_index,self_ref,chunk_type,page_content\n" +
		"doc1,0,#/texts/0,text,intro\n" +
		"doc1,1,#/tables/2,table,\"| a | b |\"\n" +
		"doc1,2,#/pictures/5,Picture,aW1n\n"

	n, err := svc.LoadSideTable(context.Background(), strings.NewReader(csvData))

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, side.put, 2)
	assert.Equal(t, "| a | b |", side.put[0].Content)
	assert.Equal(t, domain.ChunkTypePicture, side.put[1].Type)
}

func TestReadSideTableCSV(t *testing.T) {
	t.Run("content alias", func(t *testing.T) {
		rows, err := ReadSideTableCSV(strings.NewReader("source,self_ref,chunk_type,content\nd,#/tables/1,table,x\n"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "x", rows[0].Content)
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := ReadSideTableCSV(strings.NewReader("source,self_ref\nd,#/tables/1\n"))
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := ReadSideTableCSV(strings.NewReader(""))
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})
}
