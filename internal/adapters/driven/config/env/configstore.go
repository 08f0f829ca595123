// Package env overlays environment variables on another ConfigStore.
//
// Every key can be overridden with TALA_<KEY>, dots replaced by
// underscores (TALA_VECTOR_BACKEND for vector.backend). A few keys also
// honour the conventional variable names used by deployments, such as
// QDRANT_URL and OPENAI_API_KEY.
package env

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
	"github.com/custodia-labs/tala-knowledge/internal/logger"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// Prefix is prepended to every derived variable name.
const Prefix = "TALA_"

// aliases maps config keys to the conventional variables checked after
// the TALA_ one.
var aliases = map[string][]string{
	"vector.url":         {"QDRANT_URL", "WEAVIATE_URL"},
	"vector.api_key":     {"QDRANT_API_KEY", "WEAVIATE_API_KEY"},
	"embedding.api_key":  {"OPENAI_API_KEY"},
	"embedding.base_url": {"OPENAI_BASE_URL"},
	"cache.redis_url":    {"REDIS_URL"},
}

// LoadDotEnv loads variables from .env files into the process
// environment. Missing files are skipped and variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debug("No %s file, relying on environment variables", f)
				continue
			}
			return err
		}
		logger.Debug("Loaded environment from %s", f)
	}
	return nil
}

// ConfigStore reads environment variables first and falls back to base.
// Writes go to base.
type ConfigStore struct {
	base   driven.ConfigStore
	lookup func(string) (string, bool)
}

// NewConfigStore wraps base with the environment overlay.
func NewConfigStore(base driven.ConfigStore) *ConfigStore {
	return &ConfigStore{base: base, lookup: os.LookupEnv}
}

// VarName returns the TALA_ variable that overrides key.
func VarName(key string) string {
	return Prefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// env returns the overriding value of key, if any. Empty variables do
// not override.
func (s *ConfigStore) env(key string) (string, bool) {
	names := append([]string{VarName(key)}, aliases[key]...)
	for _, name := range names {
		if v, ok := s.lookup(name); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	if v, ok := s.env(key); ok {
		return v, true
	}
	return s.base.Get(key)
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	if v, ok := s.env(key); ok {
		return v
	}
	return s.base.GetString(key)
}

// GetInt retrieves an integer configuration value. An unparsable
// variable reads as 0.
func (s *ConfigStore) GetInt(key string) int {
	if v, ok := s.env(key); ok {
		n, _ := strconv.Atoi(v)
		return n
	}
	return s.base.GetInt(key)
}

// GetFloat retrieves a floating point configuration value.
func (s *ConfigStore) GetFloat(key string) float64 {
	if v, ok := s.env(key); ok {
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return s.base.GetFloat(key)
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	if v, ok := s.env(key); ok {
		b, _ := strconv.ParseBool(v)
		return b
	}
	return s.base.GetBool(key)
}

// Set stores a value in the underlying store. A variable for the same
// key still takes precedence when reading.
func (s *ConfigStore) Set(key string, value any) error {
	if _, ok := s.env(key); ok {
		logger.Warn("%s is set by the environment; the stored value is shadowed", key)
	}
	return s.base.Set(key, value)
}

// Save persists the underlying store.
func (s *ConfigStore) Save() error {
	return s.base.Save()
}

// Load reloads the underlying store.
func (s *ConfigStore) Load() error {
	return s.base.Load()
}

// Path returns the underlying configuration file path.
func (s *ConfigStore) Path() string {
	return s.base.Path()
}
