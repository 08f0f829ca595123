package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
)

var errBoom = errors.New("boom")

type apiFixture struct {
	ingestion  *mockIngestionService
	retrieval  *mockRetrievalService
	collection *mockCollectionService
	folder     *mockFolderService
	router     http.Handler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	f := &apiFixture{
		ingestion:  &mockIngestionService{},
		retrieval:  &mockRetrievalService{},
		collection: &mockCollectionService{},
		folder:     &mockFolderService{},
	}
	opts := Options{MaxUploadBytes: 1024, CORSOrigin: "http://localhost:5173"}
	h, err := NewHandler(&Ports{
		Ingestion:  f.ingestion,
		Retrieval:  f.retrieval,
		Collection: f.collection,
		Folder:     f.folder,
		Extractor:  &mockExtractor{types: []string{"text/plain", "application/pdf"}},
	}, opts)
	require.NoError(t, err)
	h.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	f.router = NewRouter(h, opts)
	return f
}

func (f *apiFixture) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func uploadRequest(t *testing.T, fields map[string]string, filename, contentType string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="document"; filename=%q`, filename))
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestNewHandler_MissingPorts(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{"no ingestion", &Ports{}, ErrMissingIngestionService},
		{"no retrieval", &Ports{Ingestion: &mockIngestionService{}}, ErrMissingRetrievalService},
		{
			"no collection",
			&Ports{Ingestion: &mockIngestionService{}, Retrieval: &mockRetrievalService{}},
			ErrMissingCollectionService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHandler(tt.ports, Options{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)

	for _, path := range []string{"/api/health", "/api/health/"} {
		rec := f.serve(httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusOK, rec.Code, path)
		body := decodeBody(t, rec)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "2024-05-01T09:00:00Z", body["timestamp"])
	}
}

func TestUpload_Success(t *testing.T) {
	f := newAPIFixture(t)
	f.ingestion.result = &domain.IngestResult{
		DocumentID:      "doc-1",
		ChunksStored:    3,
		Filename:        "japan_visa.txt",
		CollectionName:  domain.AdminCollection,
		IsAdminDocument: true,
	}

	req := uploadRequest(t,
		map[string]string{"userId": "admin-1", "isAdmin": "true", "folderId": "f-1"},
		"japan_visa.txt", "text/plain; charset=utf-8", []byte("visa rules"))
	rec := f.serve(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "doc-1", body["documentId"])
	assert.Equal(t, float64(3), body["chunksStored"])
	assert.Equal(t, domain.AdminCollection, body["collectionName"])
	assert.Equal(t, true, body["isAdminDocument"])

	got := f.ingestion.lastRequest
	assert.Equal(t, "text/plain", got.MediaType)
	assert.Equal(t, "japan_visa.txt", got.Filename)
	assert.Equal(t, "admin-1", got.OwnerID)
	assert.True(t, got.IsAdmin)
	assert.Equal(t, "f-1", got.FolderID)
	assert.Equal(t, []byte("visa rules"), got.Content)
}

func TestUpload_OctetStreamLeavesTypeToFilename(t *testing.T) {
	f := newAPIFixture(t)
	f.ingestion.result = &domain.IngestResult{DocumentID: "doc-1"}

	rec := f.serve(uploadRequest(t, map[string]string{"userId": "agent-1"},
		"guide.pdf", "application/octet-stream", []byte("%PDF")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.ingestion.lastRequest.MediaType)
	assert.False(t, f.ingestion.lastRequest.IsAdmin)
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name        string
		req         func(t *testing.T) *http.Request
		ingestErr   error
		wantStatus  int
		wantError   string
		wantDetails string
	}{
		{
			name: "no file",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, map[string]string{"userId": "a"}, "", "", nil)
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "No file uploaded",
		},
		{
			name: "no user",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, nil, "a.txt", "text/plain", []byte("x"))
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "User ID is required",
		},
		{
			name: "unsupported type",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, map[string]string{"userId": "a"}, "a.png", "image/png", []byte("x"))
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Unsupported file type: image/png",
		},
		{
			name: "file over limit",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, map[string]string{"userId": "a"}, "a.txt", "text/plain", bytes.Repeat([]byte("x"), 2048))
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "File too large. Maximum size is 1024 bytes.",
		},
		{
			name: "empty document",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, map[string]string{"userId": "a"}, "a.txt", "text/plain", []byte(" "))
			},
			ingestErr:  fmt.Errorf("a.txt: %w", domain.ErrEmptyDocument),
			wantStatus: http.StatusBadRequest,
			wantError:  "No text content found in file",
		},
		{
			name: "ingestion failure",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, map[string]string{"userId": "a"}, "a.txt", "text/plain", []byte("x"))
			},
			ingestErr:   &domain.VectorStoreError{Op: "upsert", Collection: "c", Err: errBoom},
			wantStatus:  http.StatusInternalServerError,
			wantError:   "Failed to process document",
			wantDetails: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t)
			f.ingestion.err = tt.ingestErr

			rec := f.serve(tt.req(t))

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.wantError, body["error"])
			if tt.wantDetails != "" {
				assert.Contains(t, body["details"], tt.wantDetails)
			}
		})
	}
}

func TestUpload_BodyOverLimit(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.serve(uploadRequest(t, map[string]string{"userId": "a"},
		"a.txt", "text/plain", bytes.Repeat([]byte("x"), 2<<20)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.ingestion.lastRequest.Filename)
}

func TestSearch_Success(t *testing.T) {
	f := newAPIFixture(t)
	f.retrieval.response = &domain.SearchResponse{
		Query: "japan visa",
		Results: []domain.SearchResult{
			{PointID: "p-1", Score: 0.9, Content: "Japan visa rules", Source: domain.SourcePersonal},
		},
		Total:               1,
		CollectionsSearched: []string{"tala_user_agent-1_knowledge", domain.AdminCollection},
		Elapsed:             42 * time.Millisecond,
	}

	rec := f.serve(jsonRequest(http.MethodPost, "/api/documents/search",
		`{"query":"japan visa","userId":"agent-1","limit":5,"scoreThreshold":0.5,"folderId":"f-1","category":"visa"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "japan visa", body["query"])
	assert.Equal(t, float64(1), body["totalResults"])
	assert.Equal(t, float64(42), body["processingTime"])
	assert.Len(t, body["collectionsSearched"], 2)
	results := body["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "personal", results[0].(map[string]any)["source"])

	opts := f.retrieval.lastOpts
	assert.Equal(t, "japan visa", f.retrieval.lastQuery)
	assert.Equal(t, "agent-1", opts.OwnerID)
	assert.False(t, opts.IsAdmin)
	assert.Equal(t, 5, opts.Limit)
	require.NotNil(t, opts.ScoreThreshold)
	assert.InDelta(t, 0.5, *opts.ScoreThreshold, 1e-9)
	assert.Equal(t, "f-1", opts.FolderID)
	assert.Equal(t, "visa", opts.Category)
}

func TestSearch_ThresholdOmitted(t *testing.T) {
	f := newAPIFixture(t)
	f.retrieval.response = &domain.SearchResponse{Results: []domain.SearchResult{}}

	rec := f.serve(jsonRequest(http.MethodPost, "/api/documents/search", `{"query":"q","userId":"u"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, f.retrieval.lastOpts.ScoreThreshold)
	assert.Zero(t, f.retrieval.lastOpts.Limit)
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"missing query", `{"userId":"u"}`, nil, http.StatusBadRequest, "Query and userId are required"},
		{"missing user", `{"query":"q"}`, nil, http.StatusBadRequest, "Query and userId are required"},
		{"invalid json", `{"query":`, nil, http.StatusBadRequest, ""},
		{"invalid input", `{"query":"q","userId":"u"}`, domain.ErrInvalidInput, http.StatusBadRequest, ""},
		{"service failure", `{"query":"q","userId":"u"}`, errBoom, http.StatusInternalServerError, "Search failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t)
			f.retrieval.err = tt.err

			rec := f.serve(jsonRequest(http.MethodPost, "/api/documents/search", tt.body))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeBody(t, rec)["error"])
			}
		})
	}
}

func TestDocuments(t *testing.T) {
	t.Run("list returns empty array", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.serve(httptest.NewRequest(http.MethodGet, "/api/documents?userId=agent-1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, []any{}, body["documents"])
		assert.Equal(t, float64(0), body["total"])
	})

	t.Run("get", func(t *testing.T) {
		f := newAPIFixture(t)
		f.ingestion.doc = &domain.Document{ID: "doc-1", OriginalName: "a.txt"}

		rec := f.serve(httptest.NewRequest(http.MethodGet, "/api/documents/doc-1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "doc-1", decodeBody(t, rec)["documentId"])
	})

	t.Run("get missing", func(t *testing.T) {
		f := newAPIFixture(t)
		f.ingestion.err = domain.ErrNotFound

		rec := f.serve(httptest.NewRequest(http.MethodGet, "/api/documents/nope", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.serve(httptest.NewRequest(http.MethodDelete, "/api/documents/doc-1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "doc-1", f.ingestion.deleted)
		assert.Equal(t, true, decodeBody(t, rec)["deleted"])
	})
}

func TestListCollections(t *testing.T) {
	f := newAPIFixture(t)
	f.collection.infos = []domain.CollectionInfo{{Name: domain.AdminCollection, PointsCount: 12}}

	rec := f.serve(httptest.NewRequest(http.MethodGet, "/api/collections", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	collections := decodeBody(t, rec)["collections"].([]any)
	require.Len(t, collections, 1)
	assert.Equal(t, domain.AdminCollection, collections[0].(map[string]any)["name"])

	f.collection.err = &domain.VectorStoreError{Op: "list", Err: domain.ErrVectorStoreUnavailable}
	rec = f.serve(httptest.NewRequest(http.MethodGet, "/api/collections", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to get collections", decodeBody(t, rec)["error"])
}

func TestFolders(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.serve(jsonRequest(http.MethodPost, "/api/folders",
			`{"name":"Japan","description":"visas","userId":"agent-1"}`))

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Japan", body["name"])
		assert.Equal(t, "agent-1", body["userId"])
	})

	t.Run("create invalid", func(t *testing.T) {
		f := newAPIFixture(t)
		f.folder.err = fmt.Errorf("%w: folder name is required", domain.ErrInvalidInput)

		rec := f.serve(jsonRequest(http.MethodPost, "/api/folders", `{"userId":"agent-1"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		f := newAPIFixture(t)
		f.folder.folders = []domain.Folder{{ID: "f-1", Name: "Japan"}}

		rec := f.serve(httptest.NewRequest(http.MethodGet, "/api/folders?userId=agent-1&isAdmin=false", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody(t, rec)["folders"], 1)
	})

	t.Run("update", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.serve(jsonRequest(http.MethodPut, "/api/folders/f-1", `{"name":"Korea","userId":"agent-1"}`))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "f-1", body["id"])
		assert.Equal(t, "Korea", body["name"])
	})

	t.Run("delete", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.serve(httptest.NewRequest(http.MethodDelete, "/api/folders/f-1?userId=agent-1", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "f-1", f.folder.deleted)
	})

	t.Run("delete forbidden", func(t *testing.T) {
		f := newAPIFixture(t)
		f.folder.err = domain.ErrForbidden

		rec := f.serve(httptest.NewRequest(http.MethodDelete, "/api/folders/f-1?userId=agent-2", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestFolders_NotMountedWithoutService(t *testing.T) {
	h, err := NewHandler(&Ports{
		Ingestion:  &mockIngestionService{},
		Retrieval:  &mockRetrievalService{},
		Collection: &mockCollectionService{},
	}, Options{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	NewRouter(h, Options{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/folders", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := f.serve(req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = f.serve(req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&domain.UnsupportedMediaTypeError{MediaType: "image/png"}, http.StatusBadRequest},
		{domain.ErrEmptyDocument, http.StatusBadRequest},
		{domain.ErrNoChunksProduced, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", domain.ErrInvalidInput), http.StatusBadRequest},
		{domain.ErrDocumentTooLarge, http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrAlreadyExists, http.StatusConflict},
		{&domain.EmbeddingError{Err: errBoom}, http.StatusInternalServerError},
		{errBoom, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
