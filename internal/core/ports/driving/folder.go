package driving

import (
	"context"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
)

// FolderService manages folders.
type FolderService interface {
	// CreateFolder creates a folder owned by ownerID.
	CreateFolder(ctx context.Context, name, description, ownerID string, isAdmin bool) (*domain.Folder, error)

	// GetFolders lists the folders visible to the requester.
	GetFolders(ctx context.Context, ownerID string, isAdmin bool) ([]domain.Folder, error)

	// GetFolder retrieves one folder.
	GetFolder(ctx context.Context, id string) (*domain.Folder, error)

	// UpdateFolder renames a folder or changes its description.
	UpdateFolder(ctx context.Context, id, name, description, ownerID string, isAdmin bool) (*domain.Folder, error)

	// DeleteFolder removes a folder the requester may manage.
	DeleteFolder(ctx context.Context, id, ownerID string, isAdmin bool) error

	// IncrementDocumentCount adds one to the folder's document count.
	IncrementDocumentCount(ctx context.Context, id string) error

	// DecrementDocumentCount subtracts one, never going below zero.
	DecrementDocumentCount(ctx context.Context, id string) error
}
