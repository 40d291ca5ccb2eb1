package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
)

// mockVectorIndex returns canned hits in order.
type mockVectorIndex struct {
	mu        sync.Mutex
	hits      []driven.VectorHit
	added     []domain.Chunk
	searchErr error
	addErr    error
	searches  int
	lastK     int
}

func (m *mockVectorIndex) Add(_ context.Context, chunks []domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, chunks...)
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches++
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Count(_ context.Context) (int, error) {
	return len(m.added), nil
}

func (m *mockVectorIndex) Close() error {
	return nil
}

// mockEmbeddingService returns a fixed vector per text.
type mockEmbeddingService struct {
	vector   []float32
	embedErr error
	calls    int
	batches  [][]string
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.batches = append(m.batches, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.vector
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return len(m.vector)
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockSideTable is a fixed (source, ref) lookup.
type mockSideTable struct {
	rows      map[[2]string]domain.SideTableRow
	put       []domain.SideTableRow
	lookupErr error
	lookups   int
}

func newMockSideTable(rows ...domain.SideTableRow) *mockSideTable {
	m := &mockSideTable{rows: map[[2]string]domain.SideTableRow{}}
	for _, r := range rows {
		m.rows[[2]string{r.Source, r.SelfRef}] = r
	}
	return m
}

func (m *mockSideTable) Lookup(_ context.Context, source, ref string) (*domain.SideTableRow, error) {
	m.lookups++
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	row, ok := m.rows[[2]string{source, ref}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &row, nil
}

func (m *mockSideTable) Put(_ context.Context, rows []domain.SideTableRow) error {
	m.put = append(m.put, rows...)
	return nil
}

func (m *mockSideTable) Count(_ context.Context) (int, error) {
	return len(m.rows) + len(m.put), nil
}

// mockGenerator records the context it was given.
type mockGenerator struct {
	reply    string
	err      error
	delay    time.Duration
	received []domain.GroundedContext
}

func (m *mockGenerator) Complete(ctx context.Context, gc domain.GroundedContext) (string, error) {
	m.received = append(m.received, gc)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

// mockRetriever returns canned chunks without touching an index.
type mockRetriever struct {
	chunks []domain.Chunk
	err    error
	calls  int
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, _ int) ([]domain.Chunk, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.chunks, nil
}

// mockEmbeddingCache is an in-memory EmbeddingCache.
type mockEmbeddingCache struct {
	values map[string][]float32
	setErr error
}

func (m *mockEmbeddingCache) Get(_ context.Context, key string) ([]float32, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockEmbeddingCache) Set(_ context.Context, key string, vec []float32, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.values == nil {
		m.values = map[string][]float32{}
	}
	m.values[key] = vec
	return nil
}

func (m *mockEmbeddingCache) Close() error {
	return nil
}

// mockMetrics records observations.
type mockMetrics struct {
	outcomes  []string
	retrieved [][3]int
}

func (m *mockMetrics) ObserveAnswer(outcome string, _ time.Duration) {
	m.outcomes = append(m.outcomes, outcome)
}

func (m *mockMetrics) ObserveRetrieval(chunks, tables, images int) {
	m.retrieved = append(m.retrieved, [3]int{chunks, tables, images})
}

// mockUserStore is a map-backed UserStore.
type mockUserStore struct {
	users map[string]*domain.User
}

func (m *mockUserStore) Create(_ context.Context, user *domain.User) error {
	if m.users == nil {
		m.users = map[string]*domain.User{}
	}
	if _, ok := m.users[user.ID]; ok {
		return domain.ErrAlreadyExists
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserStore) Get(_ context.Context, id string) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

// plainHasher prefixes passwords; it is only for tests.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (plainHasher) Verify(hash, password string) bool {
	return hash == "hashed:"+password
}

// mockValidator accepts or rejects every LLM configuration.
type mockValidator struct {
	llmErr  error
	checked []domain.LLMSettings
}

func (m *mockValidator) ValidateEmbedding(_ context.Context, _ *domain.EmbeddingSettings) error {
	return nil
}

func (m *mockValidator) ValidateLLM(_ context.Context, cfg *domain.LLMSettings) error {
	m.checked = append(m.checked, *cfg)
	return m.llmErr
}

func chunkWith(source, self, parent, child string) domain.Chunk {
	return domain.Chunk{
		Content: "passage from " + source,
		Metadata: domain.ChunkMetadata{
			Source:    source,
			SelfRef:   self,
			ParentRef: parent,
			ChildRef:  child,
			Type:      domain.ChunkTypeText,
		},
	}
}
