package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/tala-knowledge/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingProvider implements driven.EmbeddingProvider for testing.
// Vectors come from vectors by exact text, otherwise from keywordVector.
type mockEmbeddingProvider struct {
	mu      sync.Mutex
	dims    int
	vectors map[string][]float32
	failOn  string
	err     error
	inputs  []string
}

func newMockEmbeddingProvider(dims int) *mockEmbeddingProvider {
	return &mockEmbeddingProvider{dims: dims, vectors: make(map[string][]float32)}
}

func (m *mockEmbeddingProvider) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, text)
	m.mu.Unlock()

	if m.err != nil && (m.failOn == "" || strings.Contains(text, m.failOn)) {
		return nil, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return keywordVector(text, m.dims), nil
}

func (m *mockEmbeddingProvider) Dimensions() int   { return m.dims }
func (m *mockEmbeddingProvider) ModelName() string { return "mock-model" }
func (m *mockEmbeddingProvider) Ping(context.Context) error {
	return m.err
}
func (m *mockEmbeddingProvider) Close() error { return nil }

func (m *mockEmbeddingProvider) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// keywordVector maps the words "alpha".."delta" onto the first four
// axes and everything else onto the last one.
func keywordVector(text string, dims int) []float32 {
	vec := make([]float32, dims)
	axes := map[string]int{"alpha": 0, "beta": 1, "gamma": 2, "delta": 3}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if i, ok := axes[w]; ok && i < dims {
			vec[i]++
			continue
		}
		vec[dims-1] += 0.01
	}
	return vec
}

// mockEmbeddingCache implements driven.EmbeddingCache for testing.
type mockEmbeddingCache struct {
	mu      sync.Mutex
	entries map[string][]float32
	getErr  error
	setErr  error
}

func newMockEmbeddingCache() *mockEmbeddingCache {
	return &mockEmbeddingCache{entries: make(map[string][]float32)}
}

func (m *mockEmbeddingCache) Get(_ context.Context, key string) ([]float32, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *mockEmbeddingCache) Set(_ context.Context, key string, vec []float32) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = vec
	return nil
}

func (m *mockEmbeddingCache) Close() error { return nil }

// mockVectorStore wraps the in-memory store and injects failures.
type mockVectorStore struct {
	*memory.Store

	mu          sync.Mutex
	createCalls int
	indexCalls  []string
	upserts     int
	createErr   error
	indexErr    map[string]error
	upsertErr   error
	listErr     error
	searchErr   map[string]error
	deleteErr   error
	lastQueries map[string]domain.VectorQuery
}

func newMockVectorStore() *mockVectorStore {
	return &mockVectorStore{
		Store:       memory.NewStore(),
		indexErr:    make(map[string]error),
		searchErr:   make(map[string]error),
		lastQueries: make(map[string]domain.VectorQuery),
	}
}

var _ driven.VectorStore = (*mockVectorStore)(nil)

func (m *mockVectorStore) ListCollections(ctx context.Context) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.Store.ListCollections(ctx)
}

func (m *mockVectorStore) CreateCollection(ctx context.Context, spec domain.CollectionSpec) error {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	return m.Store.CreateCollection(ctx, spec)
}

func (m *mockVectorStore) CreatePayloadIndex(ctx context.Context, collection string, idx domain.IndexSpec) error {
	m.mu.Lock()
	m.indexCalls = append(m.indexCalls, idx.Field)
	m.mu.Unlock()
	if err := m.indexErr[idx.Field]; err != nil {
		return err
	}
	return m.Store.CreatePayloadIndex(ctx, collection, idx)
}

func (m *mockVectorStore) Upsert(ctx context.Context, collection string, points []domain.VectorPoint, wait bool) error {
	m.mu.Lock()
	m.upserts++
	m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	return m.Store.Upsert(ctx, collection, points, wait)
}

func (m *mockVectorStore) Search(ctx context.Context, collection string, q domain.VectorQuery) ([]domain.ScoredPoint, error) {
	m.mu.Lock()
	m.lastQueries[collection] = q
	m.mu.Unlock()
	if err := m.searchErr[collection]; err != nil {
		return nil, err
	}
	return m.Store.Search(ctx, collection, q)
}

func (m *mockVectorStore) DeleteByDocument(ctx context.Context, collection, documentID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	return m.Store.DeleteByDocument(ctx, collection, documentID)
}

func (m *mockVectorStore) query(collection string) (domain.VectorQuery, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.lastQueries[collection]
	return q, ok
}

// mockExtractor implements driven.Extractor for testing.
type mockExtractor struct {
	types []string
	text  string
	err   error
}

func (m *mockExtractor) Name() string                  { return "mock" }
func (m *mockExtractor) SupportedMediaTypes() []string { return m.types }
func (m *mockExtractor) Extract(_ context.Context, content []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.text != "" {
		return m.text, nil
	}
	return string(content), nil
}

// sequentialIDs returns "<prefix>-1", "<prefix>-2", ...
func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

var errBoom = errors.New("boom")
