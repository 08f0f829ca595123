package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("vector.backend", "qdrant"))

	val, ok := store.Get("vector.backend")
	assert.True(t, ok)
	assert.Equal(t, "qdrant", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_NewConfigStoreFrom_Copies(t *testing.T) {
	values := map[string]any{"search.limit": 5}
	store := NewConfigStoreFrom(values)
	values["search.limit"] = 9

	assert.Equal(t, 5, store.GetInt("search.limit"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStoreFrom(map[string]any{
		"int":        42,
		"int64":      int64(7),
		"float":      0.35,
		"int-string": "12",
		"flt-string": "0.5",
		"bool":       true,
		"bool-str":   "true",
		"garbage":    "abc",
	})

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"int", store.GetInt("int"), 42},
		{"int64", store.GetInt("int64"), 7},
		{"int from float", store.GetInt("float"), 0},
		{"int from string", store.GetInt("int-string"), 12},
		{"int from garbage", store.GetInt("garbage"), 0},
		{"float", store.GetFloat("float"), 0.35},
		{"float from int", store.GetFloat("int"), 42.0},
		{"float from string", store.GetFloat("flt-string"), 0.5},
		{"bool", store.GetBool("bool"), true},
		{"bool from string", store.GetBool("bool-str"), true},
		{"bool from garbage", store.GetBool("garbage"), false},
		{"string of int", store.GetString("int"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_Persistence(t *testing.T) {
	store := NewConfigStore()

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("key", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("key")
		}()
	}
	wg.Wait()

	_, ok := store.Get("key")
	assert.True(t, ok)
}
