package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driving"
	"github.com/custodia-labs/tala-knowledge/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionConfig holds ingestion limits.
type IngestionConfig struct {
	// BatchSize is how many chunks are embedded concurrently.
	BatchSize int

	// MaxUploadBytes rejects larger documents. Zero disables the check.
	MaxUploadBytes int64
}

// IngestionService runs extract, chunk, embed and upsert for one document.
type IngestionService struct {
	extractor  driving.TextExtractor
	chunker    driven.Chunker
	embeddings *EmbeddingClient
	router     *CollectionRouter
	store      driven.VectorStore
	documents  driven.DocumentStore
	folders    driving.FolderService
	cfg        IngestionConfig

	newID func() string
	now   func() time.Time
}

// NewIngestionService creates an ingestion service.
// documents and folders are optional (can be nil).
func NewIngestionService(
	extractor driving.TextExtractor,
	chunker driven.Chunker,
	embeddings *EmbeddingClient,
	router *CollectionRouter,
	store driven.VectorStore,
	documents driven.DocumentStore,
	folders driving.FolderService,
	cfg IngestionConfig,
) *IngestionService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = domain.DefaultBatchSize
	}
	return &IngestionService{
		extractor:  extractor,
		chunker:    chunker,
		embeddings: embeddings,
		router:     router,
		store:      store,
		documents:  documents,
		folders:    folders,
		cfg:        cfg,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Ingest stores one document. Any failure aborts the whole document;
// there is no rollback, and re-ingesting is safe because point IDs are
// fresh on every attempt.
func (s *IngestionService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	logger.Section("Ingestion")
	start := s.now()

	if s.cfg.MaxUploadBytes > 0 && int64(len(req.Content)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d",
			domain.ErrDocumentTooLarge, req.Filename, len(req.Content), s.cfg.MaxUploadBytes)
	}

	if req.MediaType == "" {
		mt, err := MediaTypeFromFilename(req.Filename)
		if err != nil {
			return nil, &domain.UnsupportedMediaTypeError{MediaType: filenameExt(req.Filename)}
		}
		req.MediaType = mt
	}

	doc := &domain.Document{
		ID:           s.newID(),
		OriginalName: req.Filename,
		MediaType:    NormaliseMediaType(req.MediaType),
		ByteSize:     int64(len(req.Content)),
		UploadedAt:   start.UTC(),
		OwnerID:      req.OwnerID,
		IsAdmin:      req.IsAdmin,
		FolderID:     req.FolderID,
		Title:        domain.TitleFromFilename(req.Filename),
	}
	doc.CollectionName = s.router.ResolveCollectionName(req.OwnerID, req.IsAdmin)
	logger.Debug("Document %s (%s) owner=%q admin=%t -> %s",
		doc.ID, req.Filename, req.OwnerID, req.IsAdmin, doc.CollectionName)

	failedIndexes, err := s.router.EnsureCollection(ctx, doc.CollectionName)
	if err != nil {
		return nil, err
	}
	if len(failedIndexes) > 0 {
		logger.Warn("Collection %s is missing indexes: %s", doc.CollectionName, strings.Join(failedIndexes, ", "))
	}

	text, err := s.extractor.Extract(ctx, req.Content, req.MediaType, req.Filename)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s: %w", req.Filename, domain.ErrEmptyDocument)
	}
	doc.Category = domain.DetectCategory(text)

	chunks := s.chunker.Chunk(text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%s: %w", req.Filename, domain.ErrNoChunksProduced)
	}
	logger.Debug("Extracted %d characters into %d chunks (category=%s)", len(text), len(chunks), doc.Category)

	points, err := s.buildPoints(ctx, doc, chunks)
	if err != nil {
		return nil, err
	}

	if err := s.store.Upsert(ctx, doc.CollectionName, points, true); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Dropped behind our back; provision it again next time.
			s.router.Forget(doc.CollectionName)
		}
		return nil, &domain.VectorStoreError{Op: "upsert", Collection: doc.CollectionName, Err: err}
	}
	doc.ChunkCount = len(points)

	s.afterStore(ctx, doc)

	logger.Info("Stored %d vectors for %s in %s (%s)",
		len(points), req.Filename, doc.CollectionName, s.now().Sub(start))

	return &domain.IngestResult{
		DocumentID:      doc.ID,
		ChunksStored:    len(points),
		Filename:        req.Filename,
		CollectionName:  doc.CollectionName,
		IsAdminDocument: req.IsAdmin,
		FailedIndexes:   failedIndexes,
	}, nil
}

// buildPoints embeds chunks batch by batch. Batches run in order; the
// chunks of one batch are embedded concurrently and matched back to
// their chunk by position.
func (s *IngestionService) buildPoints(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.VectorPoint, error) {
	dims := s.embeddings.Dimensions()
	points := make([]domain.VectorPoint, 0, len(chunks))

	for start := 0; start < len(chunks); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vectors, err := s.embeddings.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding chunks %d-%d of %s: %w", start, end-1, doc.OriginalName, err)
		}

		for i, c := range batch {
			if len(vectors[i]) != dims {
				return nil, fmt.Errorf("%w: chunk %d of %s has %d dimensions, collection %s expects %d",
					domain.ErrDimensionMismatch, c.Index, doc.OriginalName, len(vectors[i]), doc.CollectionName, dims)
			}
			points = append(points, domain.VectorPoint{
				ID:      s.newID(),
				Vector:  vectors[i],
				Payload: domain.NewPayload(doc, c),
			})
		}
		logger.Debug("Embedded batch %d-%d", start, end-1)
	}

	return points, nil
}

// afterStore records the document and bumps its folder. Neither step
// can undo a successful upsert, so failures are only logged.
func (s *IngestionService) afterStore(ctx context.Context, doc *domain.Document) {
	if s.documents != nil {
		if err := s.documents.SaveDocument(ctx, doc); err != nil {
			logger.Warn("Failed to record document %s: %v", doc.ID, err)
		}
	}
	if doc.FolderID != "" && s.folders != nil {
		if err := s.folders.IncrementDocumentCount(ctx, doc.FolderID); err != nil {
			logger.Warn("Failed to increment document count of folder %s: %v", doc.FolderID, err)
		}
	}
}

// GetDocument returns the record of an ingested document.
func (s *IngestionService) GetDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	if s.documents == nil {
		return nil, domain.ErrNotFound
	}
	return s.documents.GetDocument(ctx, documentID)
}

// ListDocuments returns the documents visible to the requester: admins
// see the admin pool, agents their own documents plus the admin pool.
func (s *IngestionService) ListDocuments(ctx context.Context, ownerID string, isAdmin bool) ([]domain.Document, error) {
	if s.documents == nil {
		return nil, nil
	}
	all, err := s.documents.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	visible := make([]domain.Document, 0, len(all))
	for _, doc := range all {
		if doc.IsAdmin || (!isAdmin && doc.OwnerID == ownerID) {
			visible = append(visible, doc)
		}
	}
	return visible, nil
}

// DeleteDocument removes a document's points from its collection, then
// its record and its folder count.
func (s *IngestionService) DeleteDocument(ctx context.Context, documentID string) error {
	if s.documents == nil {
		return fmt.Errorf("deleting %s: %w", documentID, domain.ErrNotFound)
	}
	doc, err := s.documents.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", documentID, err)
	}

	if err := s.store.DeleteByDocument(ctx, doc.CollectionName, doc.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return &domain.VectorStoreError{Op: "delete", Collection: doc.CollectionName, Err: err}
	}
	if err := s.documents.DeleteDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("deleting record %s: %w", doc.ID, err)
	}
	if doc.FolderID != "" && s.folders != nil {
		if err := s.folders.DecrementDocumentCount(ctx, doc.FolderID); err != nil {
			logger.Warn("Failed to decrement document count of folder %s: %v", doc.FolderID, err)
		}
	}

	logger.Info("Deleted document %s (%d chunks) from %s", doc.ID, doc.ChunkCount, doc.CollectionName)
	return nil
}
