package api

import (
	"context"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
)

type mockIngestionService struct {
	lastRequest domain.IngestRequest
	result      *domain.IngestResult
	docs        []domain.Document
	doc         *domain.Document
	deleted     string
	err         error
}

func (m *mockIngestionService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.lastRequest = req
	return m.result, m.err
}

func (m *mockIngestionService) GetDocument(_ context.Context, _ string) (*domain.Document, error) {
	return m.doc, m.err
}

func (m *mockIngestionService) ListDocuments(_ context.Context, _ string, _ bool) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockIngestionService) DeleteDocument(_ context.Context, id string) error {
	m.deleted = id
	return m.err
}

type mockRetrievalService struct {
	lastQuery string
	lastOpts  domain.SearchOptions
	response  *domain.SearchResponse
	err       error
}

func (m *mockRetrievalService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) (*domain.SearchResponse, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.response, m.err
}

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
	return true, m.err
}

func (m *mockCollectionService) ListCollections(_ context.Context) ([]domain.CollectionInfo, error) {
	return m.infos, m.err
}

type mockFolderService struct {
	folders []domain.Folder
	folder  *domain.Folder
	deleted string
	err     error
}

func (m *mockFolderService) CreateFolder(
	_ context.Context, name, description, ownerID string, isAdmin bool,
) (*domain.Folder, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Folder{ID: "f-1", Name: name, Description: description, OwnerID: ownerID, IsAdmin: isAdmin}, nil
}

func (m *mockFolderService) GetFolders(_ context.Context, _ string, _ bool) ([]domain.Folder, error) {
	return m.folders, m.err
}

func (m *mockFolderService) GetFolder(_ context.Context, _ string) (*domain.Folder, error) {
	return m.folder, m.err
}

func (m *mockFolderService) UpdateFolder(
	_ context.Context, id, name, description, ownerID string, isAdmin bool,
) (*domain.Folder, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Folder{ID: id, Name: name, Description: description, OwnerID: ownerID, IsAdmin: isAdmin}, nil
}

func (m *mockFolderService) DeleteFolder(_ context.Context, id, _ string, _ bool) error {
	m.deleted = id
	return m.err
}

func (m *mockFolderService) IncrementDocumentCount(_ context.Context, _ string) error {
	return m.err
}

func (m *mockFolderService) DecrementDocumentCount(_ context.Context, _ string) error {
	return m.err
}

type mockExtractor struct {
	types []string
}

func (m *mockExtractor) Extract(_ context.Context, content []byte, _, _ string) (string, error) {
	return string(content), nil
}

func (m *mockExtractor) SupportedMediaTypes() []string {
	return m.types
}
