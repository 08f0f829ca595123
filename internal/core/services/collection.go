package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driving"
	"github.com/custodia-labs/tala-knowledge/internal/logger"
)

// Ensure CollectionRouter implements the interface.
var _ driving.CollectionService = (*CollectionRouter)(nil)

// CollectionRouter maps requesters to collections and makes sure a
// collection exists, with its payload indexes, before it is used.
type CollectionRouter struct {
	store      driven.VectorStore
	vectorSize int
	indexes    []domain.IndexSpec

	// ensured remembers collections provisioned by this process.
	ensured sync.Map
}

// NewCollectionRouter creates a router whose collections hold vectors of
// vectorSize dimensions.
func NewCollectionRouter(store driven.VectorStore, vectorSize int) *CollectionRouter {
	return &CollectionRouter{
		store:      store,
		vectorSize: vectorSize,
		indexes:    domain.RequiredIndexes,
	}
}

// ResolveCollectionName maps a requester to its collection.
func (r *CollectionRouter) ResolveCollectionName(ownerID string, isAdmin bool) string {
	return domain.CollectionName(ownerID, isAdmin)
}

// CollectionSet returns the collections a requester searches: admins
// search the admin pool only, agents their own collection plus the admin
// pool.
func (r *CollectionRouter) CollectionSet(ownerID string, isAdmin bool) []string {
	if isAdmin {
		return []string{domain.AdminCollection}
	}
	personal := r.ResolveCollectionName(ownerID, false)
	if personal == domain.AdminCollection {
		return []string{domain.AdminCollection}
	}
	return []string{personal, domain.AdminCollection}
}

// Exists reports whether name is a collection in the store.
func (r *CollectionRouter) Exists(ctx context.Context, name string) (bool, error) {
	names, err := r.store.ListCollections(ctx)
	if err != nil {
		return false, &domain.VectorStoreError{Op: "list collections", Collection: name, Err: err}
	}
	return slices.Contains(names, name), nil
}

// EnsureCollection creates name with cosine distance and the required
// payload indexes if it does not exist yet. Index failures are logged and
// returned as field names; they never fail the call. Losing a creation
// race to another process counts as success.
func (r *CollectionRouter) EnsureCollection(ctx context.Context, name string) ([]string, error) {
	if _, ok := r.ensured.Load(name); ok {
		return nil, nil
	}

	exists, err := r.Exists(ctx, name)
	if err != nil {
		return nil, &domain.CollectionError{Collection: name, Err: err}
	}
	if exists {
		r.ensured.Store(name, struct{}{})
		return nil, nil
	}

	logger.Info("Creating collection %s (size=%d, distance=%s)", name, r.vectorSize, domain.DistanceCosine)
	err = r.store.CreateCollection(ctx, domain.CollectionSpec{
		Name:       name,
		VectorSize: r.vectorSize,
		Distance:   domain.DistanceCosine,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		logger.Debug("Collection %s was created concurrently", name)
		r.ensured.Store(name, struct{}{})
		return nil, nil
	}
	if err != nil {
		return nil, &domain.CollectionError{Collection: name, Err: err}
	}

	failed := r.createIndexes(ctx, name)
	r.ensured.Store(name, struct{}{})
	return failed, nil
}

func (r *CollectionRouter) createIndexes(ctx context.Context, name string) []string {
	var failed []string
	for _, idx := range r.indexes {
		if err := r.store.CreatePayloadIndex(ctx, name, idx); err != nil {
			logger.Warn("Failed to create index %s on %s: %v", idx.Field, name, err)
			failed = append(failed, idx.Field)
		}
	}
	return failed
}

// ListCollections describes every collection in the store.
func (r *CollectionRouter) ListCollections(ctx context.Context) ([]domain.CollectionInfo, error) {
	names, err := r.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	slices.Sort(names)

	infos := make([]domain.CollectionInfo, 0, len(names))
	for _, name := range names {
		info, err := r.store.CollectionInfo(ctx, name)
		if err != nil {
			logger.Warn("Failed to describe collection %s: %v", name, err)
			infos = append(infos, domain.CollectionInfo{Name: name, Status: "unknown"})
			continue
		}
		infos = append(infos, *info)
	}
	return infos, nil
}

// Forget drops name from the provisioned set, so the next EnsureCollection
// checks the store again.
func (r *CollectionRouter) Forget(name string) {
	r.ensured.Delete(name)
}
