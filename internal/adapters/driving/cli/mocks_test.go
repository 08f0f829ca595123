package cli

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driving"
)

type mockIngestion struct {
	requests []domain.IngestRequest
	docs     []domain.Document
	deleted  []string
	err      error
}

func (m *mockIngestion) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestResult{
		DocumentID:      "doc-new",
		ChunksStored:    3,
		Filename:        req.Filename,
		CollectionName:  domain.CollectionName(req.OwnerID, req.IsAdmin),
		IsAdminDocument: req.IsAdmin,
	}, nil
}

func (m *mockIngestion) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockIngestion) ListDocuments(context.Context, string, bool) ([]domain.Document, error) {
	return m.docs, nil
}

func (m *mockIngestion) DeleteDocument(_ context.Context, id string) error {
	if _, err := m.GetDocument(context.Background(), id); err != nil {
		return err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockRetrieval struct {
	resp      *domain.SearchResponse
	err       error
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockRetrieval) Search(_ context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error) {
	m.lastQuery = query
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

type mockCollection struct {
	infos   []domain.CollectionInfo
	ensured []string
	failed  []string
}

func (m *mockCollection) ResolveCollectionName(ownerID string, isAdmin bool) string {
	return domain.CollectionName(ownerID, isAdmin)
}

func (m *mockCollection) EnsureCollection(_ context.Context, name string) ([]string, error) {
	m.ensured = append(m.ensured, name)
	return m.failed, nil
}

func (m *mockCollection) Exists(context.Context, string) (bool, error) {
	return true, nil
}

func (m *mockCollection) ListCollections(context.Context) ([]domain.CollectionInfo, error) {
	return m.infos, nil
}

type mockFolder struct {
	folders []domain.Folder
	deleted []string
}

func (m *mockFolder) CreateFolder(_ context.Context, name, description, ownerID string, isAdmin bool) (*domain.Folder, error) {
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	f := domain.Folder{ID: "folder-new", Name: name, Description: description, OwnerID: ownerID, IsAdmin: isAdmin}
	m.folders = append(m.folders, f)
	return &f, nil
}

func (m *mockFolder) GetFolders(context.Context, string, bool) ([]domain.Folder, error) {
	return m.folders, nil
}

func (m *mockFolder) GetFolder(_ context.Context, id string) (*domain.Folder, error) {
	for i := range m.folders {
		if m.folders[i].ID == id {
			return &m.folders[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockFolder) UpdateFolder(context.Context, string, string, string, string, bool) (*domain.Folder, error) {
	return nil, errors.New("not implemented")
}

func (m *mockFolder) DeleteFolder(_ context.Context, id, _ string, _ bool) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockFolder) IncrementDocumentCount(context.Context, string) error { return nil }
func (m *mockFolder) DecrementDocumentCount(context.Context, string) error { return nil }

type mockSettings struct {
	values map[string]string
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := domain.DefaultAppSettings()
	return &s, nil
}

func (m *mockSettings) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettings) Keys() []string {
	return []string{"embedding.api_key", "vector_store.backend"}
}

func (m *mockSettings) Display(key string) string {
	if key == "embedding.api_key" && m.values[key] != "" {
		return "********" + m.values[key][len(m.values[key])-4:]
	}
	return m.values[key]
}

func (m *mockSettings) Set(key, raw string) error {
	if key != "embedding.api_key" && key != "vector_store.backend" {
		return domain.ErrInvalidInput
	}
	m.values[key] = raw
	return nil
}

type testServices struct {
	ingestion  *mockIngestion
	retrieval  *mockRetrieval
	collection *mockCollection
	folder     *mockFolder
	settings   *mockSettings
}

func newTestServices() *testServices {
	return &testServices{
		ingestion: &mockIngestion{docs: []domain.Document{{
			ID: "doc-1", OriginalName: "schengen_visa.pdf", MediaType: "application/pdf",
			Title: "schengen visa", Category: domain.CategoryVisa, ChunkCount: 4,
			OwnerID: "agent1", CollectionName: "user_agent1_knowledge",
			UploadedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		}}},
		retrieval: &mockRetrieval{resp: &domain.SearchResponse{
			Query: "visa",
			Results: []domain.SearchResult{{
				PointID: "p1", Score: 0.82, Content: "Schengen visas need travel insurance.",
				DocumentID: "doc-1", Source: domain.SourceAdmin, Collection: domain.AdminCollection,
				Metadata: domain.ChunkMetadata{Title: "Schengen Visa", Category: domain.CategoryVisa},
			}},
			Total:               1,
			CollectionsSearched: []string{domain.AdminCollection},
			Elapsed:             12 * time.Millisecond,
		}},
		collection: &mockCollection{infos: []domain.CollectionInfo{
			{Name: domain.AdminCollection, PointsCount: 42, VectorSize: 1536, Status: "green"},
		}},
		folder:   &mockFolder{folders: []domain.Folder{{ID: "folder-1", Name: "Europe", DocumentCount: 2}}},
		settings: &mockSettings{values: map[string]string{}},
	}
}

// setupTestServices installs mock services and returns them with a
// cleanup restoring the previous state.
func setupTestServices() (*testServices, func()) {
	ts := newTestServices()
	prevServices, prevSettings, prevOwn := services, settingsService, ownServices

	services = &Services{
		Ingestion:  ts.ingestion,
		Retrieval:  ts.retrieval,
		Collection: ts.collection,
		Folder:     ts.folder,
		Settings:   ts.settings,
		Config:     domain.DefaultAppSettings(),
	}
	settingsService = ts.settings
	ownServices = false

	return ts, func() {
		services, settingsService, ownServices = prevServices, prevSettings, prevOwn
	}
}

// runCommand executes the root command with args after resetting every
// flag to its default.
func runCommand(args ...string) (string, error) {
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

var (
	_ driving.IngestionService  = (*mockIngestion)(nil)
	_ driving.RetrievalService  = (*mockRetrieval)(nil)
	_ driving.CollectionService = (*mockCollection)(nil)
	_ driving.FolderService     = (*mockFolder)(nil)
	_ driving.SettingsService   = (*mockSettings)(nil)
)
