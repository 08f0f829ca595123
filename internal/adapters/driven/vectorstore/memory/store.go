// Package memory provides an in-process vector store.
//
// It computes exact cosine similarity by brute force, which is fine for
// fixtures, tests and small offline corpora.
package memory

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

type collection struct {
	spec    domain.CollectionSpec
	indexes map[string]domain.IndexType
	points  map[string]storedPoint
}

type storedPoint struct {
	vector  []float32
	norm    float64
	payload domain.Payload
	flat    map[string]any
}

// Store is an in-memory implementation of driven.VectorStore.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

// ListCollections returns the names of all collections.
func (s *Store) ListCollections(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// CreateCollection creates a collection.
func (s *Store) CreateCollection(_ context.Context, spec domain.CollectionSpec) error {
	if spec.VectorSize <= 0 {
		return fmt.Errorf("%w: vector size must be positive", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[spec.Name]; ok {
		return fmt.Errorf("collection %s: %w", spec.Name, domain.ErrAlreadyExists)
	}
	s.collections[spec.Name] = &collection{
		spec:    spec,
		indexes: make(map[string]domain.IndexType),
		points:  make(map[string]storedPoint),
	}
	return nil
}

// CreatePayloadIndex records the index. Filters work without it; the
// record only feeds Indexes.
func (s *Store) CreatePayloadIndex(_ context.Context, name string, index domain.IndexSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	c.indexes[index.Field] = index.Type
	return nil
}

// Indexes returns the indexed fields of a collection.
func (s *Store) Indexes(name string) map[string]domain.IndexType {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil
	}
	out := make(map[string]domain.IndexType, len(c.indexes))
	for k, v := range c.indexes {
		out[k] = v
	}
	return out
}

// Upsert writes points. Writes are visible immediately, so wait is ignored.
func (s *Store) Upsert(_ context.Context, name string, points []domain.VectorPoint, _ bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}

	// Validate the whole batch first so a bad point leaves nothing behind.
	for _, p := range points {
		if len(p.Vector) != c.spec.VectorSize {
			return fmt.Errorf("%w: point %s has %d dimensions, collection %s expects %d",
				domain.ErrDimensionMismatch, p.ID, len(p.Vector), name, c.spec.VectorSize)
		}
	}

	for _, p := range points {
		vec := slices.Clone(p.Vector)
		c.points[p.ID] = storedPoint{
			vector:  vec,
			norm:    norm(vec),
			payload: p.Payload,
			flat:    p.Payload.Map(),
		}
	}
	return nil
}

// Search returns the points closest to the query by cosine similarity.
func (s *Store) Search(_ context.Context, name string, query domain.VectorQuery) ([]domain.ScoredPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	if len(query.Vector) != c.spec.VectorSize {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection %s expects %d",
			domain.ErrDimensionMismatch, len(query.Vector), name, c.spec.VectorSize)
	}

	qnorm := norm(query.Vector)
	hits := make([]domain.ScoredPoint, 0, len(c.points))
	for id, p := range c.points {
		if !matches(p.flat, query.Must) {
			continue
		}
		hits = append(hits, domain.ScoredPoint{
			ID:      id,
			Score:   cosine(query.Vector, qnorm, p.vector, p.norm),
			Payload: p.payload,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if query.Limit > 0 && len(hits) > query.Limit {
		hits = hits[:query.Limit]
	}
	return hits, nil
}

// DeleteByDocument removes every point of one document.
func (s *Store) DeleteByDocument(_ context.Context, name, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	for id, p := range c.points {
		if p.payload.DocumentID == documentID {
			delete(c.points, id)
		}
	}
	return nil
}

// CollectionInfo describes one collection.
func (s *Store) CollectionInfo(_ context.Context, name string) (*domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	return &domain.CollectionInfo{
		Name:        name,
		PointsCount: uint64(len(c.points)),
		VectorSize:  c.spec.VectorSize,
		Status:      "green",
	}, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func matches(flat map[string]any, must []domain.FieldMatch) bool {
	for _, m := range must {
		v, ok := domain.PayloadValue(flat, m.Field)
		if !ok || fmt.Sprint(v) != m.Value {
			return false
		}
	}
	return true
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, anorm float64, b []float32, bnorm float64) float64 {
	if anorm == 0 || bnorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (anorm * bnorm)
}
