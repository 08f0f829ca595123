package driving

import (
	"context"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
)

// IngestionService turns uploaded files into stored vector points.
type IngestionService interface {
	// Ingest extracts, chunks, embeds and upserts one document.
	// It is all-or-nothing at the document level; points upserted
	// before a failure are not rolled back.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)

	// GetDocument returns the record of an ingested document.
	GetDocument(ctx context.Context, documentID string) (*domain.Document, error)

	// ListDocuments returns the documents visible to the requester.
	ListDocuments(ctx context.Context, ownerID string, isAdmin bool) ([]domain.Document, error)

	// DeleteDocument removes a document's points and record.
	DeleteDocument(ctx context.Context, documentID string) error
}

// TextExtractor converts a document buffer to plain text.
type TextExtractor interface {
	// Extract dispatches on mediaType. Unsupported types fail with
	// domain.ErrUnsupportedMediaType, parser failures with
	// domain.ErrExtractionFailed.
	Extract(ctx context.Context, content []byte, mediaType, filename string) (string, error)

	// SupportedMediaTypes lists every accepted media type.
	SupportedMediaTypes() []string
}
