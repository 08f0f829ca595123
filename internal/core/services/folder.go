package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driving"
	"github.com/custodia-labs/tala-knowledge/internal/logger"
)

// Ensure FolderService implements the interface.
var _ driving.FolderService = (*FolderService)(nil)

// FolderService manages folders and their visibility rules.
type FolderService struct {
	store driven.FolderStore
	newID func() string
	now   func() time.Time
}

// NewFolderService creates a folder service.
func NewFolderService(store driven.FolderStore) *FolderService {
	return &FolderService{
		store: store,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// CreateFolder creates a folder. Admin folders are shared with every
// agent; agent folders need an owner.
func (s *FolderService) CreateFolder(
	ctx context.Context, name, description, ownerID string, isAdmin bool,
) (*domain.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: folder name is required", domain.ErrInvalidInput)
	}
	if !isAdmin && ownerID == "" {
		return nil, fmt.Errorf("%w: userId is required", domain.ErrInvalidInput)
	}

	now := s.now().UTC()
	folder := domain.Folder{
		ID:          s.newID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
		IsAdmin:     isAdmin,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Save(ctx, folder); err != nil {
		return nil, fmt.Errorf("saving folder: %w", err)
	}

	logger.Info("Created folder %s (%s) for owner=%q admin=%t", folder.ID, folder.Name, ownerID, isAdmin)
	return &folder, nil
}

// GetFolders lists the folders visible to the requester, oldest first.
func (s *FolderService) GetFolders(ctx context.Context, ownerID string, isAdmin bool) ([]domain.Folder, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}

	visible := make([]domain.Folder, 0, len(all))
	for _, f := range all {
		if f.VisibleTo(ownerID, isAdmin) {
			visible = append(visible, f)
		}
	}
	return visible, nil
}

// GetFolder retrieves one folder.
func (s *FolderService) GetFolder(ctx context.Context, id string) (*domain.Folder, error) {
	return s.store.Get(ctx, id)
}

// UpdateFolder changes the name and description. Empty values keep the
// current ones.
func (s *FolderService) UpdateFolder(
	ctx context.Context, id, name, description, ownerID string, isAdmin bool,
) (*domain.Folder, error) {
	folder, err := s.manageable(ctx, id, ownerID, isAdmin)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		folder.Name = name
	}
	if description = strings.TrimSpace(description); description != "" {
		folder.Description = description
	}
	folder.UpdatedAt = s.now().UTC()

	if err := s.store.Save(ctx, *folder); err != nil {
		return nil, fmt.Errorf("saving folder: %w", err)
	}
	return folder, nil
}

// DeleteFolder removes a folder. Documents tagged with it keep the tag.
func (s *FolderService) DeleteFolder(ctx context.Context, id, ownerID string, isAdmin bool) error {
	if _, err := s.manageable(ctx, id, ownerID, isAdmin); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting folder: %w", err)
	}
	logger.Info("Deleted folder %s", id)
	return nil
}

// IncrementDocumentCount adds one to the folder's document count.
func (s *FolderService) IncrementDocumentCount(ctx context.Context, id string) error {
	return s.store.AdjustDocumentCount(ctx, id, 1)
}

// DecrementDocumentCount subtracts one, never going below zero.
func (s *FolderService) DecrementDocumentCount(ctx context.Context, id string) error {
	return s.store.AdjustDocumentCount(ctx, id, -1)
}

func (s *FolderService) manageable(ctx context.Context, id, ownerID string, isAdmin bool) (*domain.Folder, error) {
	folder, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !folder.ManageableBy(ownerID, isAdmin) {
		return nil, fmt.Errorf("%w: folder %s", domain.ErrForbidden, id)
	}
	return folder, nil
}
