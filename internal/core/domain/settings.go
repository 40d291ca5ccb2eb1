package domain

import (
	"slices"
	"time"
)

const unknownDescription = "Unknown"

// SearchStrategy defines how the retrieval stage ranks candidate chunks.
type SearchStrategy string

// Available search strategies.
const (
	// SearchStrategySimilarity returns the nearest neighbours by similarity.
	SearchStrategySimilarity SearchStrategy = "similarity"

	// SearchStrategyMMR returns a diversity-aware selection using
	// maximal marginal relevance over a larger candidate pool.
	SearchStrategyMMR SearchStrategy = "mmr"
)

// IsValid returns true if the strategy is recognised.
func (s SearchStrategy) IsValid() bool {
	return slices.Contains(AllSearchStrategies(), s)
}

// String returns the string representation.
func (s SearchStrategy) String() string {
	return string(s)
}

// Description returns a human-readable description of the strategy.
func (s SearchStrategy) Description() string {
	switch s {
	case SearchStrategySimilarity:
		return "Similarity (nearest neighbours)"
	case SearchStrategyMMR:
		return "MMR (diversity-aware top-k)"
	default:
		return unknownDescription
	}
}

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGroq is Groq cloud API (OpenAI-compatible).
	AIProviderGroq AIProvider = "groq"
)

// IsValid returns true if the AI provider is recognised. Every provider
// offers chat; only some offer embeddings (see AllEmbeddingProviders).
func (p AIProvider) IsValid() bool {
	return slices.Contains(AllLLMProviders(), p)
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGroq
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGroq:
		return "Groq (cloud)"
	default:
		return unknownDescription
	}
}

// StorageBackend selects where chunks, embeddings and side-table rows live.
type StorageBackend string

// Available storage backends.
const (
	StorageBackendSQLite   StorageBackend = "sqlite"
	StorageBackendPostgres StorageBackend = "postgres"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageBackendSQLite || b == StorageBackendPostgres
}

// CacheBackend selects the query-embedding cache.
type CacheBackend string

// Available cache backends.
const (
	CacheBackendNone   CacheBackend = "none"
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendRedis  CacheBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheBackendNone, CacheBackendMemory, CacheBackendRedis:
		return true
	default:
		return false
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint override.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint override.
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// Temperature is the sampling temperature.
	Temperature float64

	// MaxRetries is how many times a failed call is retried.
	MaxRetries int

	// RequestsPerSecond paces outgoing calls. Zero disables pacing.
	RequestsPerSecond float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RetrievalSettings configures the retrieval stage.
type RetrievalSettings struct {
	// K is the number of chunks returned.
	K int

	// FetchK is the candidate pool size for MMR.
	FetchK int

	// Lambda trades relevance (1) against diversity (0) for MMR.
	Lambda float64

	// Strategy is the ranking strategy.
	Strategy SearchStrategy

	// Timeout bounds one full answer pass.
	Timeout time.Duration
}

// Normalised fills zero values with defaults. Lambda must lie in (0, 1].
func (r RetrievalSettings) Normalised() RetrievalSettings {
	d := DefaultRetrievalSettings()
	if r.K <= 0 {
		r.K = d.K
	}
	if r.FetchK < r.K {
		r.FetchK = max(d.FetchK, r.K)
	}
	if r.Lambda <= 0 || r.Lambda > 1 {
		r.Lambda = d.Lambda
	}
	if !r.Strategy.IsValid() {
		r.Strategy = d.Strategy
	}
	if r.Timeout <= 0 {
		r.Timeout = d.Timeout
	}
	return r
}

// DefaultRetrievalSettings returns k=10, fetch_k=20, lambda=0.5 with MMR.
func DefaultRetrievalSettings() RetrievalSettings {
	return RetrievalSettings{
		K:        10,
		FetchK:   20,
		Lambda:   0.5,
		Strategy: SearchStrategyMMR,
		Timeout:  60 * time.Second,
	}
}

// StorageSettings holds storage backend configuration.
type StorageSettings struct {
	// Backend selects sqlite or postgres.
	Backend StorageBackend

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string

	// SideTableCSV optionally loads the side table from a CSV file.
	SideTableCSV string
}

// CacheSettings holds query-embedding cache configuration.
type CacheSettings struct {
	// Backend selects the cache implementation.
	Backend CacheBackend

	// RedisURL is the connection URL for the redis backend.
	RedisURL string

	// TTL is how long an embedding is kept.
	TTL time.Duration
}

// ServerSettings holds HTTP server configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Retrieval RetrievalSettings
	Storage   StorageSettings
	Cache     CacheSettings
	Server    ServerSettings

	// IngestBatchSize is the number of chunks embedded per request.
	IngestBatchSize int
}

// DefaultAppSettings returns settings with sensible defaults.
// Provider keys are left empty and must come from config or the environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		LLM: LLMSettings{
			Provider:    AIProviderGroq,
			Model:       DefaultLLMModels()[AIProviderGroq],
			Temperature: 0.2,
			MaxRetries:  2,
		},
		Retrieval: DefaultRetrievalSettings(),
		Storage: StorageSettings{
			Backend: StorageBackendSQLite,
		},
		Cache: CacheSettings{
			Backend: CacheBackendMemory,
			TTL:     time.Hour,
		},
		Server: ServerSettings{
			Addr: ":8080",
		},
		IngestBatchSize: 32,
	}
}

// AllSearchStrategies returns all available strategies.
func AllSearchStrategies() []SearchStrategy {
	return []SearchStrategy{SearchStrategyMMR, SearchStrategySimilarity}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGroq,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-large",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGroq:      "llama-3.1-8b-instant",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
