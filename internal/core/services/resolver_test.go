package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

func TestReferenceResolver_SingleTable(t *testing.T) {
	side := newMockSideTable(domain.SideTableRow{
		Source: "doc1", SelfRef: "#/tables/2", Type: domain.ChunkTypeTable, Content: "| a | b |",
	})
	resolver := NewReferenceResolver(side)

	ev, err := resolver.Resolve(context.Background(), []domain.Chunk{chunkWith("doc1", "#/tables/2", "", "")})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"#/tables/2": "| a | b |"}, ev.Tables)
	assert.Empty(t, ev.Images)
}

func TestReferenceResolver_SharedPictureDeduplicated(t *testing.T) {
	side := newMockSideTable(domain.SideTableRow{
		Source: "doc2", SelfRef: "#/pictures/5", Type: domain.ChunkTypePicture, Content: "aW1n",
	})
	resolver := NewReferenceResolver(side)

	chunks := []domain.Chunk{
		chunkWith("doc2", "", "#/pictures/5", ""),
		chunkWith("doc2", "#/texts/3", "", "#/pictures/5"),
	}
	ev, err := resolver.Resolve(context.Background(), chunks)

	require.NoError(t, err)
	assert.Len(t, ev.Images, 1)
	assert.Equal(t, "aW1n", ev.Images["#/pictures/5"])
	assert.Empty(t, ev.Tables)
}

func TestReferenceResolver_EmptyReferencesSkipped(t *testing.T) {
	side := newMockSideTable()
	resolver := NewReferenceResolver(side)

	ev, err := resolver.Resolve(context.Background(), []domain.Chunk{
		chunkWith("doc1", "", "", ""),
		chunkWith("doc1", "#/texts/1", "#/texts/0", ""),
	})

	require.NoError(t, err)
	assert.True(t, ev.IsEmpty())
	assert.Equal(t, 0, side.lookups)
}

func TestReferenceResolver_MissTolerated(t *testing.T) {
	side := newMockSideTable(domain.SideTableRow{
		Source: "doc1", SelfRef: "#/tables/1", Type: domain.ChunkTypeTable, Content: "| x |",
	})
	resolver := NewReferenceResolver(side)

	ev, err := resolver.Resolve(context.Background(), []domain.Chunk{
		chunkWith("doc1", "#/tables/1 #/tables/99", "", ""),
		chunkWith("other", "#/tables/1", "", ""),
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"#/tables/1": "| x |"}, ev.Tables)
	assert.NotContains(t, ev.Images, "#/tables/99")
}

func TestReferenceResolver_MissingSourceUsesEmptyString(t *testing.T) {
	side := newMockSideTable(domain.SideTableRow{
		Source: "", SelfRef: "#/tables/0", Type: domain.ChunkTypeTable, Content: "| orphan |",
	})
	resolver := NewReferenceResolver(side)

	ev, err := resolver.Resolve(context.Background(), []domain.Chunk{chunkWith("", "#/tables/0", "", "")})

	require.NoError(t, err)
	assert.Equal(t, "| orphan |", ev.Tables["#/tables/0"])
}

func TestReferenceResolver_LastWriteWinsAndStaysDisjoint(t *testing.T) {
	side := newMockSideTable(
		domain.SideTableRow{Source: "a", SelfRef: "#/tables/1", Type: domain.ChunkTypeTable, Content: "from a"},
		domain.SideTableRow{Source: "b", SelfRef: "#/tables/1", Type: domain.ChunkTypePicture, Content: "from b"},
	)
	resolver := NewReferenceResolver(side)

	ev, err := resolver.Resolve(context.Background(), []domain.Chunk{
		chunkWith("a", "#/tables/1", "", ""),
		chunkWith("b", "#/tables/1", "", ""),
	})

	require.NoError(t, err)
	assert.Equal(t, "from b", ev.Images["#/tables/1"])
	assert.NotContains(t, ev.Tables, "#/tables/1")
	for k := range ev.Tables {
		assert.NotContains(t, ev.Images, k)
	}
}

func TestReferenceResolver_EmptyContentSkipped(t *testing.T) {
	side := newMockSideTable(domain.SideTableRow{
		Source: "doc1", SelfRef: "#/pictures/1", Type: domain.ChunkTypePicture, Content: "",
	})
	resolver := NewReferenceResolver(side)

	ev, err := resolver.Resolve(context.Background(), []domain.Chunk{chunkWith("doc1", "#/pictures/1", "", "")})

	require.NoError(t, err)
	assert.True(t, ev.IsEmpty())
}

func TestReferenceResolver_Idempotent(t *testing.T) {
	side := newMockSideTable(
		domain.SideTableRow{Source: "d", SelfRef: "#/tables/1", Type: domain.ChunkTypeTable, Content: "t1"},
		domain.SideTableRow{Source: "d", SelfRef: "#/pictures/2", Type: domain.ChunkTypePicture, Content: "cDI="},
	)
	resolver := NewReferenceResolver(side)
	chunks := []domain.Chunk{chunkWith("d", "#/tables/1", "#/pictures/2", "")}

	first, err := resolver.Resolve(context.Background(), chunks)
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), chunks)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestReferenceResolver_StoreError(t *testing.T) {
	side := newMockSideTable()
	side.lookupErr = errors.New("disk I/O error")
	resolver := NewReferenceResolver(side)

	_, err := resolver.Resolve(context.Background(), []domain.Chunk{chunkWith("d", "#/tables/1", "", "")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
}
