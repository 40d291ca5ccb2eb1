package postgres

import (
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

// chunkModel is the GORM row for an indexed chunk.
type chunkModel struct {
	ID         string          `gorm:"type:text;primaryKey"`
	Source     string          `gorm:"type:text;index"`
	ChunkIndex int             `gorm:"default:0"`
	SelfRef    string          `gorm:"type:text"`
	ParentRef  string          `gorm:"type:text"`
	ChildRef   string          `gorm:"type:text"`
	ChunkType  string          `gorm:"type:text;default:text"`
	Content    string          `gorm:"type:text"`
	Embedding  pgvector.Vector `gorm:"type:vector"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (chunkModel) TableName() string {
	return "refrag_chunks"
}

// sideTableModel is one rendered table or picture.
type sideTableModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Source    string `gorm:"type:text;index:idx_side_table_lookup"`
	SelfRef   string `gorm:"type:text;index:idx_side_table_lookup"`
	ChunkType string `gorm:"type:text"`
	Content   string `gorm:"type:text"`
}

func (sideTableModel) TableName() string {
	return "refrag_side_table"
}

type userModel struct {
	ID           string    `gorm:"type:text;primaryKey"`
	PasswordHash string    `gorm:"type:text;not null"`
	APIKey       string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (userModel) TableName() string {
	return "refrag_users"
}

func toChunkModel(c domain.Chunk) chunkModel {
	return chunkModel{
		ID:         c.ID,
		Source:     c.Metadata.Source,
		ChunkIndex: c.Metadata.ChunkIndex,
		SelfRef:    c.Metadata.SelfRef,
		ParentRef:  c.Metadata.ParentRef,
		ChildRef:   c.Metadata.ChildRef,
		ChunkType:  c.Metadata.Type.String(),
		Content:    c.Content,
		Embedding:  pgvector.NewVector(c.Embedding),
	}
}

func (m chunkModel) toDomain() domain.Chunk {
	return domain.Chunk{
		ID:      m.ID,
		Content: m.Content,
		Metadata: domain.ChunkMetadata{
			Source:     m.Source,
			ChunkIndex: m.ChunkIndex,
			SelfRef:    m.SelfRef,
			ParentRef:  m.ParentRef,
			ChildRef:   m.ChildRef,
			Type:       domain.ChunkType(m.ChunkType),
		},
		Embedding: m.Embedding.Slice(),
	}
}

func (m sideTableModel) toDomain() *domain.SideTableRow {
	return &domain.SideTableRow{
		Source:  m.Source,
		SelfRef: m.SelfRef,
		Type:    domain.ChunkType(m.ChunkType),
		Content: m.Content,
	}
}

func (m userModel) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID,
		PasswordHash: m.PasswordHash,
		APIKey:       m.APIKey,
		CreatedAt:    m.CreatedAt,
	}
}
