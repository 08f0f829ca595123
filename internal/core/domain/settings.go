package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// VectorBackend selects the vector store implementation.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendQdrant is a live Qdrant server.
	VectorBackendQdrant VectorBackend = "qdrant"

	// VectorBackendWeaviate is a live Weaviate server.
	VectorBackendWeaviate VectorBackend = "weaviate"

	// VectorBackendMemory keeps vectors in process, optionally seeded with
	// travel fixture documents.
	VectorBackendMemory VectorBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendQdrant, VectorBackendWeaviate, VectorBackendMemory:
		return true
	default:
		return false
	}
}

// IsLive returns true if the backend talks to an external server.
func (b VectorBackend) IsLive() bool {
	return b == VectorBackendQdrant || b == VectorBackendWeaviate
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendQdrant:
		return "Qdrant (live)"
	case VectorBackendWeaviate:
		return "Weaviate (live)"
	case VectorBackendMemory:
		return "In-memory fixtures"
	default:
		return unknownDescription
	}
}

// AIProvider identifies an embedding provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderHashing is a local deterministic feature-hashing embedder.
	// It needs no network and is meant for fixtures and offline runs.
	AIProviderHashing AIProvider = "hashing"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderOllama, AIProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// StorageBackend selects where folder and document records live.
type StorageBackend string

// Available storage backends.
const (
	StorageBackendSQLite StorageBackend = "sqlite"
	StorageBackendMemory StorageBackend = "memory"
)

// IsValid returns true if the storage backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageBackendSQLite || b == StorageBackendMemory
}

// CacheBackend selects the embedding cache.
type CacheBackend string

// Available cache backends.
const (
	CacheBackendNone   CacheBackend = "none"
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendRedis  CacheBackend = "redis"
)

// IsValid returns true if the cache backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheBackendNone, CacheBackendMemory, CacheBackendRedis:
		return true
	default:
		return false
	}
}

// VectorStoreSettings holds vector store configuration.
type VectorStoreSettings struct {
	// Backend selects the implementation.
	Backend VectorBackend

	// URL is the server endpoint for live backends.
	URL string

	// APIKey authenticates against the server.
	APIKey string

	// SeedFixtures loads the travel fixture documents into the memory backend.
	SeedFixtures bool
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the vector size every collection is created with.
	Dimensions int

	// MaxInputChars truncates longer inputs before they are sent.
	MaxInputChars int

	// RequestsPerSecond caps provider calls. Zero disables limiting.
	RequestsPerSecond float64

	// Timeout bounds a single provider call.
	Timeout time.Duration
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

// ChunkSettings holds word-window segmentation configuration.
type ChunkSettings struct {
	WindowSize int
	Overlap    int
}

// IngestionSettings holds ingestion pipeline configuration.
type IngestionSettings struct {
	// BatchSize is how many chunks are embedded concurrently.
	BatchSize int

	// MaxUploadBytes rejects larger documents.
	MaxUploadBytes int64
}

// SearchSettings holds retrieval defaults.
type SearchSettings struct {
	Limit          int
	ScoreThreshold float64
}

// StorageSettings holds metadata persistence configuration.
type StorageSettings struct {
	Backend StorageBackend

	// DataDir holds the SQLite database. Empty means ~/.tala/data.
	DataDir string
}

// CacheSettings holds embedding cache configuration.
type CacheSettings struct {
	Backend  CacheBackend
	RedisURL string
	TTL      time.Duration
}

// ServerSettings holds driving adapter configuration.
type ServerSettings struct {
	// HTTPAddr is the listen address of the HTTP API.
	HTTPAddr string

	// CORSOrigin is echoed in Access-Control-Allow-Origin.
	CORSOrigin string
}

// AppSettings holds all application settings.
type AppSettings struct {
	VectorStore VectorStoreSettings
	Embedding   EmbeddingSettings
	Chunking    ChunkSettings
	Ingestion   IngestionSettings
	Search      SearchSettings
	Storage     StorageSettings
	Cache       CacheSettings
	Server      ServerSettings
}

// Defaults shared by settings and the components that consume them.
const (
	DefaultEmbeddingModel    = "text-embedding-3-small"
	DefaultEmbeddingDims     = 1536
	DefaultMaxInputChars     = 30000
	DefaultChunkWindow       = 150
	DefaultChunkOverlap      = 25
	DefaultBatchSize         = 10
	DefaultMaxUploadBytes    = 10 * 1024 * 1024
	DefaultHTTPAddr          = ":3001"
	DefaultEmbeddingTimeout  = 60 * time.Second
	DefaultCacheTTL          = 24 * time.Hour
	DefaultRequestsPerSecond = 0
)

// DefaultAppSettings returns settings with sensible defaults.
// The vector store starts on the in-memory fixture backend with the
// hashing embedder so the service runs without credentials.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		VectorStore: VectorStoreSettings{
			Backend:      VectorBackendMemory,
			URL:          "http://localhost:6334",
			SeedFixtures: true,
		},
		Embedding: EmbeddingSettings{
			Provider:          AIProviderHashing,
			Model:             DefaultEmbeddingModel,
			Dimensions:        DefaultEmbeddingDims,
			MaxInputChars:     DefaultMaxInputChars,
			RequestsPerSecond: DefaultRequestsPerSecond,
			Timeout:           DefaultEmbeddingTimeout,
		},
		Chunking: ChunkSettings{
			WindowSize: DefaultChunkWindow,
			Overlap:    DefaultChunkOverlap,
		},
		Ingestion: IngestionSettings{
			BatchSize:      DefaultBatchSize,
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		Search: SearchSettings{
			Limit:          DefaultSearchLimit,
			ScoreThreshold: DefaultScoreThreshold,
		},
		Storage: StorageSettings{
			Backend: StorageBackendSQLite,
		},
		Cache: CacheSettings{
			Backend: CacheBackendNone,
			TTL:     DefaultCacheTTL,
		},
		Server: ServerSettings{
			HTTPAddr:   DefaultHTTPAddr,
			CORSOrigin: "*",
		},
	}
}

// Validate checks settings that would make a component fail at runtime.
func (s AppSettings) Validate() error {
	switch {
	case !s.VectorStore.Backend.IsValid():
		return fmt.Errorf("%w: vector backend %q", ErrInvalidConfig, s.VectorStore.Backend)
	case s.VectorStore.Backend.IsLive() && s.VectorStore.URL == "":
		return fmt.Errorf("%w: %s requires a URL", ErrInvalidConfig, s.VectorStore.Backend)
	case !s.Embedding.Provider.IsValid():
		return fmt.Errorf("%w: embedding provider %q", ErrInvalidConfig, s.Embedding.Provider)
	case !s.Embedding.IsConfigured():
		return fmt.Errorf("%w: %s requires an API key", ErrInvalidConfig, s.Embedding.Provider)
	case s.Embedding.Dimensions <= 0:
		return fmt.Errorf("%w: embedding dimensions must be positive", ErrInvalidConfig)
	case s.Chunking.WindowSize <= 0 || s.Chunking.Overlap < 0 || s.Chunking.Overlap >= s.Chunking.WindowSize:
		return fmt.Errorf("%w: chunk overlap %d must be smaller than window %d",
			ErrInvalidConfig, s.Chunking.Overlap, s.Chunking.WindowSize)
	case s.Ingestion.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be positive", ErrInvalidConfig)
	case !s.Storage.Backend.IsValid():
		return fmt.Errorf("%w: storage backend %q", ErrInvalidConfig, s.Storage.Backend)
	case !s.Cache.Backend.IsValid():
		return fmt.Errorf("%w: cache backend %q", ErrInvalidConfig, s.Cache.Backend)
	case s.Cache.Backend == CacheBackendRedis && s.Cache.RedisURL == "":
		return fmt.Errorf("%w: redis cache requires a URL", ErrInvalidConfig)
	}
	return nil
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
