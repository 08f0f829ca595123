// Package app is the composition root. It reads configuration, selects
// the driven adapters named by it and assembles the core services the
// driving adapters consume.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/tala-knowledge/internal/adapters/driven/cache/memory"
	"github.com/custodia-labs/tala-knowledge/internal/adapters/driven/cache/redis"
	"github.com/custodia-labs/tala-knowledge/internal/adapters/driven/config/env"
	"github.com/custodia-labs/tala-knowledge/internal/adapters/driven/config/file"
	"github.com/custodia-labs/tala-knowledge/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/tala-knowledge/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/tala-knowledge/internal/adapters/driven/embedding/openai"
	memstorage "github.com/custodia-labs/tala-knowledge/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tala-knowledge/internal/adapters/driven/storage/sqlite"
	memvector "github.com/custodia-labs/tala-knowledge/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/tala-knowledge/internal/adapters/driven/vectorstore/qdrant"
	"github.com/custodia-labs/tala-knowledge/internal/adapters/driven/vectorstore/weaviate"
	"github.com/custodia-labs/tala-knowledge/internal/adapters/driving/cli"
	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driving"
	"github.com/custodia-labs/tala-knowledge/internal/core/services"
	"github.com/custodia-labs/tala-knowledge/internal/extractors"
	"github.com/custodia-labs/tala-knowledge/internal/logger"
	"github.com/custodia-labs/tala-knowledge/internal/postprocessors/chunker"
)

// Ensure Builder implements the CLI's builder.
var _ cli.Builder = (*Builder)(nil)

// Builder constructs services from the config file at a path.
type Builder struct {
	// DotEnvFiles are loaded into the environment before configuration is
	// read. Empty means ".env".
	DotEnvFiles []string
}

// NewBuilder creates a builder loading the given .env files.
func NewBuilder(dotEnvFiles ...string) *Builder {
	return &Builder{DotEnvFiles: dotEnvFiles}
}

// configStore opens the TOML file at path under the environment overlay.
func (b *Builder) configStore(path string) (driven.ConfigStore, error) {
	if err := env.LoadDotEnv(b.DotEnvFiles...); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	fileStore, err := file.NewConfigStore(path)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	return env.NewConfigStore(fileStore), nil
}

// Settings opens only the configuration.
func (b *Builder) Settings(path string) (driving.SettingsService, error) {
	store, err := b.configStore(path)
	if err != nil {
		return nil, err
	}
	return services.NewSettingsService(store), nil
}

// Services loads and validates the configuration and builds the full
// service graph.
func (b *Builder) Services(ctx context.Context, path string) (*cli.Services, error) {
	store, err := b.configStore(path)
	if err != nil {
		return nil, err
	}
	cfg, err := services.LoadSettings(store)
	if err != nil {
		return nil, err
	}

	svc, err := Build(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc.Settings = services.NewSettingsService(store)
	return svc, nil
}

// closers releases resources in reverse order of acquisition.
type closers []func() error

func (c closers) close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build assembles services for cfg. On error every resource opened so
// far is released.
func Build(ctx context.Context, cfg domain.AppSettings) (svc *cli.Services, err error) {
	var cleanup closers
	defer func() {
		if err != nil {
			_ = cleanup.close()
		}
	}()

	vectors, err := NewVectorStore(cfg.VectorStore)
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, vectors.Close)

	provider, err := NewEmbeddingProvider(cfg.Embedding)
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, provider.Close)

	opts := []services.EmbeddingOption{services.WithMaxInputChars(cfg.Embedding.MaxInputChars)}
	cache, err := NewEmbeddingCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		cleanup = append(cleanup, cache.Close)
		opts = append(opts, services.WithEmbeddingCache(cache))
	}
	embeddings := services.NewEmbeddingClient(provider, opts...)

	documents, folders, closeStorage, err := newMetadataStores(cfg)
	if err != nil {
		return nil, err
	}
	if closeStorage != nil {
		cleanup = append(cleanup, closeStorage)
	}

	chunks, err := chunker.New(
		chunker.WithWindowSize(cfg.Chunking.WindowSize),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	)
	if err != nil {
		return nil, err
	}

	extractor := services.NewTextExtractor(extractors.Defaults()...)
	router := services.NewCollectionRouter(vectors, embeddings.Dimensions())
	folderService := services.NewFolderService(folders)

	ingestion := services.NewIngestionService(
		extractor, chunks, embeddings, router, vectors, documents, folderService,
		services.IngestionConfig{
			BatchSize:      cfg.Ingestion.BatchSize,
			MaxUploadBytes: cfg.Ingestion.MaxUploadBytes,
		},
	)
	retrieval := services.NewRetrievalService(embeddings, router, vectors, services.RetrievalConfig{
		Limit:          cfg.Search.Limit,
		ScoreThreshold: cfg.Search.ScoreThreshold,
	})

	if cfg.VectorStore.Backend == domain.VectorBackendMemory && cfg.VectorStore.SeedFixtures {
		if _, err := SeedFixtures(ctx, ingestion); err != nil {
			return nil, err
		}
	}

	logger.Debug("Services ready: vector=%s embedding=%s/%s cache=%s",
		cfg.VectorStore.Backend, cfg.Embedding.Provider, provider.ModelName(), cfg.Cache.Backend)

	return &cli.Services{
		Ingestion:  ingestion,
		Retrieval:  retrieval,
		Collection: router,
		Folder:     folderService,
		Extractor:  extractor,
		Config:     cfg,
		Close:      cleanup.close,
	}, nil
}

// NewVectorStore connects the configured vector backend.
func NewVectorStore(cfg domain.VectorStoreSettings) (driven.VectorStore, error) {
	switch cfg.Backend {
	case domain.VectorBackendQdrant:
		return qdrant.NewStore(qdrant.Config{URL: cfg.URL, APIKey: cfg.APIKey})
	case domain.VectorBackendWeaviate:
		return weaviate.NewStore(weaviate.Config{URL: cfg.URL, APIKey: cfg.APIKey})
	case domain.VectorBackendMemory:
		return memvector.NewStore(), nil
	default:
		return nil, fmt.Errorf("%w: unknown vector backend %q", domain.ErrInvalidConfig, cfg.Backend)
	}
}

// NewEmbeddingProvider creates the configured embedding provider.
func NewEmbeddingProvider(cfg domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	switch cfg.Provider {
	case domain.AIProviderOpenAI:
		return openai.NewEmbeddingProvider(openai.Config{
			APIKey:            cfg.APIKey,
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Timeout:           cfg.Timeout,
			Dimensions:        cfg.Dimensions,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
	case domain.AIProviderOllama:
		model := cfg.Model
		if model == domain.DefaultEmbeddingModel {
			// The default names an OpenAI model; let Ollama pick its own.
			model = ""
		}
		dims := cfg.Dimensions
		if model == "" || dims == domain.DefaultEmbeddingDims {
			dims = 0
		}
		return ollama.NewEmbeddingProvider(ollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      model,
			Timeout:    cfg.Timeout,
			Dimensions: dims,
		}), nil
	case domain.AIProviderHashing:
		return hashing.NewEmbeddingProvider(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidConfig, cfg.Provider)
	}
}

// NewEmbeddingCache creates the configured cache. It returns nil for the
// none backend.
func NewEmbeddingCache(ctx context.Context, cfg domain.CacheSettings) (driven.EmbeddingCache, error) {
	switch cfg.Backend {
	case domain.CacheBackendNone, "":
		return nil, nil
	case domain.CacheBackendMemory:
		return memory.New(cfg.TTL), nil
	case domain.CacheBackendRedis:
		return redis.New(ctx, cfg.RedisURL, cfg.TTL)
	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q", domain.ErrInvalidConfig, cfg.Backend)
	}
}

// newMetadataStores opens the document and folder stores. Records follow
// the vector store's lifetime: the memory vector backend always gets
// memory stores so no record outlives the vectors it describes.
func newMetadataStores(cfg domain.AppSettings) (driven.DocumentStore, driven.FolderStore, func() error, error) {
	backend := cfg.Storage.Backend
	if cfg.VectorStore.Backend == domain.VectorBackendMemory && backend != domain.StorageBackendMemory {
		logger.Debug("Memory vector store selected, keeping metadata in memory")
		backend = domain.StorageBackendMemory
	}

	switch backend {
	case domain.StorageBackendSQLite:
		store, err := sqlite.NewStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, nil, err
		}
		return store.DocumentStore(), store.FolderStore(), store.Close, nil
	case domain.StorageBackendMemory:
		return memstorage.NewDocumentStore(), memstorage.NewFolderStore(), nil, nil
	default:
		return nil, nil, nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidConfig, backend)
	}
}
