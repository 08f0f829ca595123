package mcp

import (
	"context"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	response *domain.SearchResponse
	lastOpts domain.SearchOptions
	err      error
}

func (m *mockRetrievalService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) (*domain.SearchResponse, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.response == nil {
		return &domain.SearchResponse{Query: query, Results: []domain.SearchResult{}}, nil
	}
	return m.response, nil
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	document *domain.Document
	err      error
}

func (m *mockIngestionService) Ingest(_ context.Context, _ domain.IngestRequest) (*domain.IngestResult, error) {
	return nil, m.err
}

func (m *mockIngestionService) GetDocument(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockIngestionService) ListDocuments(_ context.Context, _ string, _ bool) ([]domain.Document, error) {
	return nil, m.err
}

func (m *mockIngestionService) DeleteDocument(_ context.Context, _ string) error {
	return m.err
}

// mockFolderService is a mock implementation of driving.FolderService.
type mockFolderService struct {
	folders []domain.Folder
	err     error
}

func (m *mockFolderService) CreateFolder(_ context.Context, _, _, _ string, _ bool) (*domain.Folder, error) {
	return nil, m.err
}

func (m *mockFolderService) GetFolders(_ context.Context, _ string, _ bool) ([]domain.Folder, error) {
	return m.folders, m.err
}

func (m *mockFolderService) GetFolder(_ context.Context, _ string) (*domain.Folder, error) {
	return nil, m.err
}

func (m *mockFolderService) UpdateFolder(_ context.Context, _, _, _, _ string, _ bool) (*domain.Folder, error) {
	return nil, m.err
}

func (m *mockFolderService) DeleteFolder(_ context.Context, _, _ string, _ bool) error {
	return m.err
}

func (m *mockFolderService) IncrementDocumentCount(_ context.Context, _ string) error {
	return m.err
}

func (m *mockFolderService) DecrementDocumentCount(_ context.Context, _ string) error {
	return m.err
}

// mockCollectionService is a mock implementation of driving.CollectionService.
type mockCollectionService struct {
	infos []domain.CollectionInfo
	err   error
}

func (m *mockCollectionService) ResolveCollectionName(ownerID string, isAdmin bool) string {
	return domain.CollectionName(ownerID, isAdmin)
}

func (m *mockCollectionService) EnsureCollection(_ context.Context, _ string) ([]string, error) {
	return nil, m.err
}

func (m *mockCollectionService) Exists(_ context.Context, _ string) (bool, error) {
	return false, m.err
}

func (m *mockCollectionService) ListCollections(_ context.Context) ([]domain.CollectionInfo, error) {
	return m.infos, m.err
}
