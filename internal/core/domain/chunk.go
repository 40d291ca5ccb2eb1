package domain

// ChunkType classifies what an ingested chunk holds.
type ChunkType string

// Chunk types produced by the upstream document conversion.
const (
	ChunkTypeText    ChunkType = "text"
	ChunkTypeTable   ChunkType = "table"
	ChunkTypePicture ChunkType = "picture"
)

// IsValid returns true if the chunk type is recognised.
func (t ChunkType) IsValid() bool {
	switch t {
	case ChunkTypeText, ChunkTypeTable, ChunkTypePicture:
		return true
	default:
		return false
	}
}

// IsArtifact returns true for types that are stored in the side table.
func (t ChunkType) IsArtifact() bool {
	return t == ChunkTypeTable || t == ChunkTypePicture
}

// IsEmbedded returns true for types that are indexed for similarity search.
func (t ChunkType) IsEmbedded() bool {
	return t == ChunkTypeText || t == ChunkTypeTable
}

// String returns the string representation.
func (t ChunkType) String() string {
	return string(t)
}

// ChunkMetadata is the typed provenance attached to every chunk.
// Reference fields hold delimited lists of reference tokens.
type ChunkMetadata struct {
	// Source is the origin document identifier.
	Source string `json:"source"`

	// ChunkIndex is the ordinal of the chunk within its source.
	ChunkIndex int `json:"chunk_index"`

	// SelfRef lists the anchors this chunk was built from.
	SelfRef string `json:"self_ref,omitempty"`

	// ParentRef lists the anchors of the enclosing elements.
	ParentRef string `json:"parent_ref,omitempty"`

	// ChildRef lists the anchors nested under this chunk.
	ChildRef string `json:"child_ref,omitempty"`

	// Type is the kind of content the chunk holds.
	Type ChunkType `json:"chunk_type"`
}

// Chunk is a unit of retrieved text with provenance metadata.
// Chunks returned by retrieval are owned by the query that produced them.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string `json:"id"`

	// Content is the text content of this chunk.
	Content string `json:"content"`

	// Metadata is the chunk's provenance.
	Metadata ChunkMetadata `json:"metadata"`

	// Rank is the 0-based position in a retrieval result.
	Rank int `json:"rank"`

	// Score is the similarity reported by the vector index.
	Score float64 `json:"score"`

	// Embedding is the vector representation for semantic search.
	Embedding []float32 `json:"-"`
}
