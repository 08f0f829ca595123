package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
)

// Ensure FolderStore implements the interface.
var _ driven.FolderStore = (*FolderStore)(nil)

// FolderStore is an in-memory implementation of driven.FolderStore.
type FolderStore struct {
	mu      sync.RWMutex
	folders map[string]domain.Folder
}

// NewFolderStore creates a new in-memory folder store.
func NewFolderStore() *FolderStore {
	return &FolderStore{
		folders: make(map[string]domain.Folder),
	}
}

// Save stores or updates a folder. An update keeps the stored document
// count.
func (s *FolderStore) Save(_ context.Context, folder domain.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.folders[folder.ID]; ok {
		folder.DocumentCount = existing.DocumentCount
	}
	s.folders[folder.ID] = folder
	return nil
}

// Get retrieves a folder by ID.
func (s *FolderStore) Get(_ context.Context, id string) (*domain.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	folder, ok := s.folders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &folder, nil
}

// List returns every folder, oldest first.
func (s *FolderStore) List(_ context.Context) ([]domain.Folder, error) {
	s.mu.RLock()
	folders := make([]domain.Folder, 0, len(s.folders))
	for _, f := range s.folders {
		folders = append(folders, f)
	}
	s.mu.RUnlock()

	sort.Slice(folders, func(i, j int) bool {
		if !folders[i].CreatedAt.Equal(folders[j].CreatedAt) {
			return folders[i].CreatedAt.Before(folders[j].CreatedAt)
		}
		return folders[i].ID < folders[j].ID
	})
	return folders, nil
}

// Delete removes a folder.
func (s *FolderStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.folders, id)
	return nil
}

// AdjustDocumentCount adds delta to the count, clamping at zero.
func (s *FolderStore) AdjustDocumentCount(_ context.Context, id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	folder, ok := s.folders[id]
	if !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	folder.DocumentCount = max(0, folder.DocumentCount+delta)
	s.folders[id] = folder
	return nil
}
