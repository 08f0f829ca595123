package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/logger"
)

const (
	// multipartOverhead is allowed on top of the file limit for the
	// form fields and boundaries of an upload.
	multipartOverhead = 1 << 20

	maxMultipartMemory = 32 << 20
)

// Handler serves the API routes.
type Handler struct {
	ports          *Ports
	maxUploadBytes int64
	allowed        map[string]bool

	now func() time.Time
}

// NewHandler creates a handler for the given ports.
func NewHandler(ports *Ports, opts Options) (*Handler, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = domain.DefaultMaxUploadBytes
	}

	h := &Handler{
		ports:          ports,
		maxUploadBytes: opts.MaxUploadBytes,
		now:            time.Now,
	}
	if ports.Extractor != nil {
		h.allowed = make(map[string]bool)
		for _, mt := range ports.Extractor.SupportedMediaTypes() {
			h.allowed[mt] = true
		}
	}
	return h, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response: %v", err)
	}
}

// requester reads userId and isAdmin from the query string.
func requester(r *http.Request) (string, bool) {
	isAdmin, _ := strconv.ParseBool(r.URL.Query().Get("isAdmin"))
	return r.URL.Query().Get("userId"), isAdmin
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// Upload ingests the multipart file field "document".
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			badRequest(w, h.tooLargeMessage())
			return
		}
		badRequest(w, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		badRequest(w, "No file uploaded")
		return
	}
	defer file.Close()

	userID := r.FormValue("userId")
	if userID == "" {
		badRequest(w, "User ID is required")
		return
	}
	isAdmin, _ := strconv.ParseBool(r.FormValue("isAdmin"))

	if header.Size > h.maxUploadBytes {
		badRequest(w, h.tooLargeMessage())
		return
	}

	mediaType := uploadMediaType(header.Header.Get("Content-Type"))
	if mediaType != "" && h.allowed != nil && !h.allowed[mediaType] {
		badRequest(w, "Unsupported file type: "+mediaType)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		h.fail(w, err, "Failed to read upload")
		return
	}

	logger.Info("Processing upload %s for user %s (admin: %t)", header.Filename, userID, isAdmin)
	result, err := h.ports.Ingestion.Ingest(r.Context(), domain.IngestRequest{
		Content:   content,
		MediaType: mediaType,
		Filename:  header.Filename,
		OwnerID:   userID,
		IsAdmin:   isAdmin,
		FolderID:  r.FormValue("folderId"),
	})
	if err != nil {
		h.fail(w, err, "Failed to process document")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// uploadMediaType normalises a part's Content-Type. Generic binary
// types are dropped so the filename decides.
func uploadMediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || mt == "application/octet-stream" {
		return ""
	}
	return mt
}

// SearchRequest is the body of a search call.
type SearchRequest struct {
	Query          string   `json:"query"`
	UserID         string   `json:"userId"`
	IsAdmin        bool     `json:"isAdmin"`
	Limit          int      `json:"limit"`
	ScoreThreshold *float64 `json:"scoreThreshold"`
	FolderID       string   `json:"folderId"`
	Category       string   `json:"category"`
}

// SearchResponse is the body returned by a search call.
type SearchResponse struct {
	Results             []domain.SearchResult `json:"results"`
	TotalResults        int                   `json:"totalResults"`
	Query               string                `json:"query"`
	CollectionsSearched []string              `json:"collectionsSearched"`

	// ProcessingTime is in milliseconds.
	ProcessingTime int64 `json:"processingTime"`
}

// Search runs a query over the requester's collections.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" || req.UserID == "" {
		badRequest(w, "Query and userId are required")
		return
	}

	resp, err := h.ports.Retrieval.Search(r.Context(), req.Query, domain.SearchOptions{
		OwnerID:        req.UserID,
		IsAdmin:        req.IsAdmin,
		Limit:          req.Limit,
		ScoreThreshold: req.ScoreThreshold,
		FolderID:       req.FolderID,
		Category:       req.Category,
	})
	if err != nil {
		h.fail(w, err, "Search failed")
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Results:             resp.Results,
		TotalResults:        resp.Total,
		Query:               resp.Query,
		CollectionsSearched: resp.CollectionsSearched,
		ProcessingTime:      resp.Elapsed.Milliseconds(),
	})
}

// ListDocuments lists the documents visible to the requester.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin := requester(r)
	docs, err := h.ports.Ingestion.ListDocuments(r.Context(), userID, isAdmin)
	if err != nil {
		h.fail(w, err, "Failed to list documents")
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs, "total": len(docs)})
}

// GetDocument returns one document record.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.ports.Ingestion.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "Failed to get document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument removes a document and its vectors.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.ports.Ingestion.DeleteDocument(r.Context(), id); err != nil {
		h.fail(w, err, "Failed to delete document")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documentId": id, "deleted": true})
}

// ListCollections describes every collection.
func (h *Handler) ListCollections(w http.ResponseWriter, r *http.Request) {
	infos, err := h.ports.Collection.ListCollections(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to get collections")
		return
	}
	if infos == nil {
		infos = []domain.CollectionInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"collections": infos})
}

// FolderRequest is the body of folder create and update calls.
type FolderRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UserID      string `json:"userId"`
	IsAdmin     bool   `json:"isAdmin"`
}

// ListFolders lists the folders visible to the requester.
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin := requester(r)
	folders, err := h.ports.Folder.GetFolders(r.Context(), userID, isAdmin)
	if err != nil {
		h.fail(w, err, "Failed to list folders")
		return
	}
	if folders == nil {
		folders = []domain.Folder{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"folders": folders})
}

// CreateFolder creates a folder.
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req FolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body: "+err.Error())
		return
	}
	folder, err := h.ports.Folder.CreateFolder(r.Context(), req.Name, req.Description, req.UserID, req.IsAdmin)
	if err != nil {
		h.fail(w, err, "Failed to create folder")
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

// GetFolder returns one folder.
func (h *Handler) GetFolder(w http.ResponseWriter, r *http.Request) {
	folder, err := h.ports.Folder.GetFolder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "Failed to get folder")
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

// UpdateFolder renames a folder or changes its description.
func (h *Handler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	var req FolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body: "+err.Error())
		return
	}
	folder, err := h.ports.Folder.UpdateFolder(r.Context(),
		chi.URLParam(r, "id"), req.Name, req.Description, req.UserID, req.IsAdmin)
	if err != nil {
		h.fail(w, err, "Failed to update folder")
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

// DeleteFolder removes a folder the requester may manage.
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin := requester(r)
	if err := h.ports.Folder.DeleteFolder(r.Context(), chi.URLParam(r, "id"), userID, isAdmin); err != nil {
		h.fail(w, err, "Failed to delete folder")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
