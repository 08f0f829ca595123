package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tala-knowledge/internal/adapters/driven/storage/memory"
)

func newTestStore(vars map[string]string, base map[string]any) (*ConfigStore, *memory.ConfigStore) {
	inner := memory.NewConfigStoreFrom(base)
	s := NewConfigStore(inner)
	s.lookup = func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
	return s, inner
}

func TestVarName(t *testing.T) {
	assert.Equal(t, "TALA_VECTOR_BACKEND", VarName("vector.backend"))
	assert.Equal(t, "TALA_EMBEDDING_API_KEY", VarName("embedding.api_key"))
	assert.Equal(t, "TALA_SERVER_HTTP_ADDR", VarName("server.http-addr"))
}

func TestConfigStore_Precedence(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		base map[string]any
		key  string
		want string
	}{
		{
			name: "base only",
			base: map[string]any{"vector.url": "http://file:6334"},
			key:  "vector.url",
			want: "http://file:6334",
		},
		{
			name: "alias beats base",
			vars: map[string]string{"QDRANT_URL": "http://alias:6334"},
			base: map[string]any{"vector.url": "http://file:6334"},
			key:  "vector.url",
			want: "http://alias:6334",
		},
		{
			name: "prefixed beats alias",
			vars: map[string]string{"QDRANT_URL": "http://alias:6334", "TALA_VECTOR_URL": "http://tala:6334"},
			key:  "vector.url",
			want: "http://tala:6334",
		},
		{
			name: "second alias",
			vars: map[string]string{"WEAVIATE_URL": "http://weaviate:8080"},
			key:  "vector.url",
			want: "http://weaviate:8080",
		},
		{
			name: "empty variable ignored",
			vars: map[string]string{"OPENAI_API_KEY": ""},
			base: map[string]any{"embedding.api_key": "sk-file"},
			key:  "embedding.api_key",
			want: "sk-file",
		},
		{
			name: "openai key",
			vars: map[string]string{"OPENAI_API_KEY": "sk-env"},
			key:  "embedding.api_key",
			want: "sk-env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(tt.vars, tt.base)
			assert.Equal(t, tt.want, s.GetString(tt.key))
		})
	}
}

func TestConfigStore_TypedGetters(t *testing.T) {
	s, _ := newTestStore(map[string]string{
		"TALA_SEARCH_LIMIT":           "25",
		"TALA_SEARCH_SCORE_THRESHOLD": "0.4",
		"TALA_VECTOR_SEED_FIXTURES":   "false",
		"TALA_CHUNKING_OVERLAP":       "lots",
	}, map[string]any{
		"vector.seed_fixtures": true,
		"ingestion.batch_size": 5,
	})

	assert.Equal(t, 25, s.GetInt("search.limit"))
	assert.InDelta(t, 0.4, s.GetFloat("search.score_threshold"), 1e-9)
	assert.False(t, s.GetBool("vector.seed_fixtures"))
	assert.Equal(t, 0, s.GetInt("chunking.overlap"))
	assert.Equal(t, 5, s.GetInt("ingestion.batch_size"))

	v, ok := s.Get("search.limit")
	assert.True(t, ok)
	assert.Equal(t, "25", v)

	_, ok = s.Get("missing.key")
	assert.False(t, ok)
}

func TestConfigStore_SetWritesBase(t *testing.T) {
	s, inner := newTestStore(map[string]string{"TALA_VECTOR_BACKEND": "qdrant"}, nil)

	require.NoError(t, s.Set("vector.backend", "weaviate"))
	require.NoError(t, s.Save())

	assert.Equal(t, "weaviate", inner.GetString("vector.backend"))
	assert.Equal(t, "qdrant", s.GetString("vector.backend"))
	assert.Equal(t, inner.Path(), s.Path())
	assert.NoError(t, s.Load())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TALA_DOTENV_TEST=from-file\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("TALA_DOTENV_TEST") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))

	assert.Equal(t, "from-file", os.Getenv("TALA_DOTENV_TEST"))

	s := NewConfigStore(memory.NewConfigStore())
	assert.Equal(t, "from-file", s.GetString("dotenv.test"))
}
