package services

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyVectorBackend    = "vector.backend"
	KeyVectorURL        = "vector.url"
	KeyVectorAPIKey     = "vector.api_key"
	KeyVectorSeed       = "vector.seed_fixtures"
	KeyEmbedProvider    = "embedding.provider"
	KeyEmbedModel       = "embedding.model"
	KeyEmbedBaseURL     = "embedding.base_url"
	KeyEmbedAPIKey      = "embedding.api_key"
	KeyEmbedDimensions  = "embedding.dimensions"
	KeyEmbedMaxChars    = "embedding.max_input_chars"
	KeyEmbedRPS         = "embedding.requests_per_second"
	KeyEmbedTimeout     = "embedding.timeout"
	KeyChunkWindow      = "chunking.window_size"
	KeyChunkOverlap     = "chunking.overlap"
	KeyIngestBatchSize  = "ingestion.batch_size"
	KeyIngestMaxUpload  = "ingestion.max_upload_bytes"
	KeySearchLimit      = "search.limit"
	KeySearchThreshold  = "search.score_threshold"
	KeyStorageBackend   = "storage.backend"
	KeyStorageDataDir   = "storage.data_dir"
	KeyCacheBackend     = "cache.backend"
	KeyCacheRedisURL    = "cache.redis_url"
	KeyCacheTTL         = "cache.ttl"
	KeyServerHTTPAddr   = "server.http_addr"
	KeyServerCORSOrigin = "server.cors_origin"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
)

// knownKeys lists every settable key with the type it is stored as.
var knownKeys = map[string]keyKind{
	KeyVectorBackend:    kindString,
	KeyVectorURL:        kindString,
	KeyVectorAPIKey:     kindString,
	KeyVectorSeed:       kindBool,
	KeyEmbedProvider:    kindString,
	KeyEmbedModel:       kindString,
	KeyEmbedBaseURL:     kindString,
	KeyEmbedAPIKey:      kindString,
	KeyEmbedDimensions:  kindInt,
	KeyEmbedMaxChars:    kindInt,
	KeyEmbedRPS:         kindFloat,
	KeyEmbedTimeout:     kindDuration,
	KeyChunkWindow:      kindInt,
	KeyChunkOverlap:     kindInt,
	KeyIngestBatchSize:  kindInt,
	KeyIngestMaxUpload:  kindInt,
	KeySearchLimit:      kindInt,
	KeySearchThreshold:  kindFloat,
	KeyStorageBackend:   kindString,
	KeyStorageDataDir:   kindString,
	KeyCacheBackend:     kindString,
	KeyCacheRedisURL:    kindString,
	KeyCacheTTL:         kindDuration,
	KeyServerHTTPAddr:   kindString,
	KeyServerCORSOrigin: kindString,
}

// secretKeys are masked when settings are displayed.
var secretKeys = []string{KeyVectorAPIKey, KeyEmbedAPIKey}

// SettingsService reads typed settings from a ConfigStore.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// LoadSettings overlays the config store on the defaults and validates
// the result.
func LoadSettings(configStore driven.ConfigStore) (domain.AppSettings, error) {
	settings := NewSettingsService(configStore).read()
	if err := settings.Validate(); err != nil {
		return domain.AppSettings{}, err
	}
	return settings, nil
}

// Get retrieves the current settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.read()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Keys returns every settable key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Display returns the stored value of key for printing. Secrets are
// masked and unset keys return "".
func (s *SettingsService) Display(key string) string {
	val, ok := s.configStore.Get(key)
	if !ok {
		return ""
	}
	str := fmt.Sprint(val)
	if slices.Contains(secretKeys, key) && str != "" {
		return MaskSecret(str)
	}
	return str
}

// Set parses raw for key's type, stores it and persists the store.
func (s *SettingsService) Set(key, raw string) error {
	kind, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var value any
	var err error
	switch kind {
	case kindInt:
		value, err = strconv.Atoi(raw)
	case kindFloat:
		value, err = strconv.ParseFloat(raw, 64)
	case kindBool:
		value, err = strconv.ParseBool(raw)
	case kindDuration:
		_, err = time.ParseDuration(raw)
		value = raw
	default:
		value = raw
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return s.configStore.Save()
}

// MaskSecret keeps the last four characters of a secret.
func MaskSecret(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", 8) + secret[len(secret)-4:]
}

func (s *SettingsService) read() domain.AppSettings {
	d := domain.DefaultAppSettings()

	return domain.AppSettings{
		VectorStore: domain.VectorStoreSettings{
			Backend:      domain.VectorBackend(s.getString(KeyVectorBackend, string(d.VectorStore.Backend))),
			URL:          s.getString(KeyVectorURL, d.VectorStore.URL),
			APIKey:       s.configStore.GetString(KeyVectorAPIKey),
			SeedFixtures: s.getBool(KeyVectorSeed, d.VectorStore.SeedFixtures),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          domain.AIProvider(s.getString(KeyEmbedProvider, string(d.Embedding.Provider))),
			Model:             s.getString(KeyEmbedModel, d.Embedding.Model),
			BaseURL:           s.configStore.GetString(KeyEmbedBaseURL),
			APIKey:            s.configStore.GetString(KeyEmbedAPIKey),
			Dimensions:        s.getInt(KeyEmbedDimensions, s.defaultDimensions(d)),
			MaxInputChars:     s.getInt(KeyEmbedMaxChars, d.Embedding.MaxInputChars),
			RequestsPerSecond: s.getFloat(KeyEmbedRPS, d.Embedding.RequestsPerSecond),
			Timeout:           s.getDuration(KeyEmbedTimeout, d.Embedding.Timeout),
		},
		Chunking: domain.ChunkSettings{
			WindowSize: s.getInt(KeyChunkWindow, d.Chunking.WindowSize),
			Overlap:    s.getInt(KeyChunkOverlap, d.Chunking.Overlap),
		},
		Ingestion: domain.IngestionSettings{
			BatchSize:      s.getInt(KeyIngestBatchSize, d.Ingestion.BatchSize),
			MaxUploadBytes: int64(s.getInt(KeyIngestMaxUpload, int(d.Ingestion.MaxUploadBytes))),
		},
		Search: domain.SearchSettings{
			Limit:          s.getInt(KeySearchLimit, d.Search.Limit),
			ScoreThreshold: s.getFloat(KeySearchThreshold, d.Search.ScoreThreshold),
		},
		Storage: domain.StorageSettings{
			Backend: domain.StorageBackend(s.getString(KeyStorageBackend, string(d.Storage.Backend))),
			DataDir: s.configStore.GetString(KeyStorageDataDir),
		},
		Cache: domain.CacheSettings{
			Backend:  domain.CacheBackend(s.getString(KeyCacheBackend, string(d.Cache.Backend))),
			RedisURL: s.configStore.GetString(KeyCacheRedisURL),
			TTL:      s.getDuration(KeyCacheTTL, d.Cache.TTL),
		},
		Server: domain.ServerSettings{
			HTTPAddr:   s.getString(KeyServerHTTPAddr, d.Server.HTTPAddr),
			CORSOrigin: s.getString(KeyServerCORSOrigin, d.Server.CORSOrigin),
		},
	}
}

// defaultDimensions follows the configured model when it is a known one.
func (s *SettingsService) defaultDimensions(d domain.AppSettings) int {
	model := s.getString(KeyEmbedModel, d.Embedding.Model)
	if dims, ok := domain.EmbeddingDimensions()[model]; ok {
		return dims
	}
	return d.Embedding.Dimensions
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
