package driving

import (
	"context"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
)

// CollectionService routes tenants to collections and provisions them.
type CollectionService interface {
	// ResolveCollectionName maps a requester to its collection.
	ResolveCollectionName(ownerID string, isAdmin bool) string

	// EnsureCollection creates the collection and its indexes if missing.
	// It returns the fields whose index creation failed; those failures
	// do not make the call fail.
	EnsureCollection(ctx context.Context, name string) ([]string, error)

	// Exists reports whether the collection exists.
	Exists(ctx context.Context, name string) (bool, error)

	// ListCollections describes every collection in the store.
	ListCollections(ctx context.Context) ([]domain.CollectionInfo, error)
}
