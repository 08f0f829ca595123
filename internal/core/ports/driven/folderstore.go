package driven

import (
	"context"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
)

// FolderStore persists folders.
type FolderStore interface {
	// Save stores or updates a folder.
	Save(ctx context.Context, folder domain.Folder) error

	// Get retrieves a folder by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Folder, error)

	// List returns every folder, oldest first.
	List(ctx context.Context) ([]domain.Folder, error)

	// Delete removes a folder. Deleting a missing folder is not an error.
	Delete(ctx context.Context, id string) error

	// AdjustDocumentCount adds delta to the folder's document count,
	// clamping at zero. Returns domain.ErrNotFound if absent.
	AdjustDocumentCount(ctx context.Context, id string, delta int) error
}
