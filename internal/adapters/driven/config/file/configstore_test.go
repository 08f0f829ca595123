package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_FilePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "tala.toml")

	store, err := NewConfigStore(path)

	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(home, ".tala", "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set("vector.backend", "qdrant")
	require.NoError(t, err)

	val, ok := store.Get("vector.backend")
	assert.True(t, ok)
	assert.Equal(t, "qdrant", val)
}

func TestConfigStore_GetString(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("vector.url", "http://localhost:6334"))
	assert.Equal(t, "http://localhost:6334", store.GetString("vector.url"))

	// Non-existent key
	assert.Equal(t, "", store.GetString("nonexistent"))

	// Wrong type
	require.NoError(t, store.Set("search.limit", 42))
	assert.Equal(t, "", store.GetString("search.limit"))
}

func TestConfigStore_GetInt(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("search.limit", 42))
	assert.Equal(t, 42, store.GetInt("search.limit"))

	// TOML integers are parsed as int64
	store.mu.Lock()
	store.data["chunking.window_size"] = int64(150)
	store.mu.Unlock()
	assert.Equal(t, 150, store.GetInt("chunking.window_size"))

	assert.Equal(t, 0, store.GetInt("nonexistent"))

	require.NoError(t, store.Set("vector.backend", "not an int"))
	assert.Equal(t, 0, store.GetInt("vector.backend"))
}

func TestConfigStore_GetFloat(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{name: "float", value: 0.35, want: 0.35},
		{name: "int64", value: int64(1), want: 1},
		{name: "int", value: 2, want: 2},
		{name: "string", value: "0.5", want: 0.5},
		{name: "bool", value: true, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, store.Set("search.score_threshold", tt.value))
			assert.InDelta(t, tt.want, store.GetFloat("search.score_threshold"), 1e-9)
		})
	}

	assert.Zero(t, store.GetFloat("nonexistent"))
}

func TestConfigStore_GetBool(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("vector.seed_fixtures", true))
	assert.True(t, store.GetBool("vector.seed_fixtures"))

	require.NoError(t, store.Set("vector.seed_fixtures", false))
	assert.False(t, store.GetBool("vector.seed_fixtures"))

	assert.False(t, store.GetBool("nonexistent"))

	// Wrong type
	require.NoError(t, store.Set("string_key", "true"))
	assert.False(t, store.GetBool("string_key"))
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store1.Set("vector.backend", "weaviate"))
	require.NoError(t, store1.Set("search.limit", 25))
	require.NoError(t, store1.Set("search.score_threshold", 0.3))
	require.NoError(t, store1.Set("vector.seed_fixtures", true))

	// Create new store instance - should load from file
	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "weaviate", store2.GetString("vector.backend"))
	assert.Equal(t, 25, store2.GetInt("search.limit"))
	assert.InDelta(t, 0.3, store2.GetFloat("search.score_threshold"), 1e-9)
	assert.True(t, store2.GetBool("vector.seed_fixtures"))
}

func TestConfigStore_WritesTables(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("vector.backend", "qdrant"))
	require.NoError(t, store.Set("vector.url", "http://qdrant:6334"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[vector]")
	assert.NotContains(t, string(data), "vector.backend")
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte(`
[embedding]
provider = "openai"
model = "text-embedding-3-small"
dimensions = 1536

[search]
score_threshold = 1
`)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), content, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "openai", store.GetString("embedding.provider"))
	assert.Equal(t, 1536, store.GetInt("embedding.dimensions"))
	assert.InDelta(t, 1.0, store.GetFloat("search.score_threshold"), 1e-9)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("embedding.api_key", "sk-test"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("# Just a comment\n\n"), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	val, ok := store.Get("any_key")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetFloat(key)
			_, _ = store.Get(key)
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory to cause write error
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Save())
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	// Channels cannot be marshaled to TOML
	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestNestMap(t *testing.T) {
	flat := map[string]any{
		"vector.backend":    "qdrant",
		"embedding.api_key": "sk",
		"server.http.addr":  ":3001",
		"top":               1,
	}

	nested := nestMap(flat)

	assert.Equal(t, map[string]any{
		"vector":    map[string]any{"backend": "qdrant"},
		"embedding": map[string]any{"api_key": "sk"},
		"server":    map[string]any{"http": map[string]any{"addr": ":3001"}},
		"top":       1,
	}, nested)
	assert.Equal(t, flat, flattenMap(nested, ""))
}
