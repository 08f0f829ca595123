package driven

import (
	"context"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
)

// VectorStore is the black-box vector database. One store holds many
// collections; the core never assumes anything about the engine beyond
// this interface.
//
// Writing a point whose ID already exists overwrites it, so retried
// ingestions are safe. Implementations must be safe for concurrent use
// and hold a long-lived connection.
type VectorStore interface {
	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)

	// CreateCollection creates a collection. Returns domain.ErrAlreadyExists
	// if a collection with that name exists.
	CreateCollection(ctx context.Context, spec domain.CollectionSpec) error

	// CreatePayloadIndex creates a secondary index on a payload field.
	CreatePayloadIndex(ctx context.Context, collection string, index domain.IndexSpec) error

	// Upsert writes points. When wait is true it returns only once the
	// points are queryable.
	Upsert(ctx context.Context, collection string, points []domain.VectorPoint, wait bool) error

	// Search returns the nearest points, best first.
	Search(ctx context.Context, collection string, query domain.VectorQuery) ([]domain.ScoredPoint, error)

	// DeleteByDocument removes every point of one document.
	DeleteByDocument(ctx context.Context, collection, documentID string) error

	// CollectionInfo describes one collection.
	// Returns domain.ErrNotFound if it does not exist.
	CollectionInfo(ctx context.Context, name string) (*domain.CollectionInfo, error)

	// Close releases the connection.
	Close() error
}
