package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
	"github.com/custodia-labs/refrag/internal/logger"
)

// Store is a PostgreSQL database exposing the storage ports.
type Store struct {
	db *gorm.DB
}

// NewStore connects to dsn, enables pgvector and migrates the schema.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres DSN is required", domain.ErrConfiguration)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	logger.Debug("Connected to PostgreSQL")
	return s, nil
}

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("getting connection pool: %w", err)
	}
	sqlDB.SetMaxIdleConns(4)
	sqlDB.SetMaxOpenConns(16)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("enabling pgvector: %w", err)
	}
	if err := db.AutoMigrate(&chunkModel{}, &sideTableModel{}, &userModel{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// VectorIndex returns a pgvector-backed VectorIndex.
func (s *Store) VectorIndex() driven.VectorIndex {
	return &vectorIndex{db: s.db}
}

// SideTableStore returns a SideTableStore backed by this store.
func (s *Store) SideTableStore() driven.SideTableStore {
	return &sideTableStore{db: s.db}
}

// UserStore returns a UserStore backed by this store.
func (s *Store) UserStore() driven.UserStore {
	return &userStore{db: s.db}
}

// ==================== Vector Index ====================

type vectorIndex struct {
	db *gorm.DB
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

type scoredChunk struct {
	chunkModel
	Similarity float64
}

// Add upserts chunks by ID.
func (v *vectorIndex) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]chunkModel, len(chunks))
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}
		models[i] = toChunkModel(c)
	}
	if err := v.db.WithContext(ctx).Save(&models).Error; err != nil {
		return fmt.Errorf("saving chunks: %w", err)
	}
	return nil
}

// Search ranks chunks by cosine distance on the server.
func (v *vectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	var results []scoredChunk
	if err := searchQuery(v.db.WithContext(ctx), query, k).Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	hits := make([]driven.VectorHit, len(results))
	for i, r := range results {
		hits[i] = driven.VectorHit{Chunk: r.toDomain(), Similarity: r.Similarity}
	}
	return hits, nil
}

// searchQuery builds the nearest-neighbour query; cosine similarity is 1 - distance.
func searchQuery(db *gorm.DB, query []float32, k int) *gorm.DB {
	vec := pgvector.NewVector(query)
	return db.Model(&chunkModel{}).
		Select("*, 1 - (embedding <=> ?) AS similarity", vec).
		Clauses(clause.OrderBy{Expression: gorm.Expr("embedding <=> ?", vec)}).
		Limit(k)
}

// Count returns the number of indexed chunks.
func (v *vectorIndex) Count(ctx context.Context) (int, error) {
	var n int64
	if err := v.db.WithContext(ctx).Model(&chunkModel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return int(n), nil
}

// Close is a no-op; the owning Store closes the pool.
func (v *vectorIndex) Close() error {
	return nil
}

// ==================== Side Table ====================

type sideTableStore struct {
	db *gorm.DB
}

var _ driven.SideTableStore = (*sideTableStore)(nil)

// Lookup prefers table rows, then the earliest inserted row.
func (s *sideTableStore) Lookup(ctx context.Context, source, ref string) (*domain.SideTableRow, error) {
	var m sideTableModel
	err := lookupQuery(s.db.WithContext(ctx), source, ref).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up side table: %w", err)
	}
	return m.toDomain(), nil
}

func lookupQuery(db *gorm.DB, source, ref string) *gorm.DB {
	return db.Model(&sideTableModel{}).
		Where("source = ? AND self_ref = ?", source, ref).
		Clauses(clause.OrderBy{
			Expression: gorm.Expr("CASE chunk_type WHEN ? THEN 0 ELSE 1 END, id", domain.ChunkTypeTable.String()),
		})
}

// Put appends rows.
func (s *sideTableStore) Put(ctx context.Context, rows []domain.SideTableRow) error {
	if len(rows) == 0 {
		return nil
	}
	models := make([]sideTableModel, len(rows))
	for i, r := range rows {
		models[i] = sideTableModel{
			Source:    r.Source,
			SelfRef:   r.SelfRef,
			ChunkType: r.Type.String(),
			Content:   r.Content,
		}
	}
	if err := s.db.WithContext(ctx).CreateInBatches(models, 200).Error; err != nil {
		return fmt.Errorf("saving side table rows: %w", err)
	}
	return nil
}

// Count returns the number of stored rows.
func (s *sideTableStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&sideTableModel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting side table: %w", err)
	}
	return int(n), nil
}

// ==================== Users ====================

type userStore struct {
	db *gorm.DB
}

var _ driven.UserStore = (*userStore)(nil)

// Create stores a new user.
func (s *userStore) Create(ctx context.Context, user *domain.User) error {
	m := userModel{
		ID:           user.ID,
		PasswordHash: user.PasswordHash,
		APIKey:       user.APIKey,
		CreatedAt:    user.CreatedAt,
	}
	err := s.db.WithContext(ctx).Create(&m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// Get returns the user by ID.
func (s *userStore) Get(ctx context.Context, id string) (*domain.User, error) {
	var m userModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return m.toDomain(), nil
}
