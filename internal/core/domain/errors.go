package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates a configuration value that cannot work,
	// such as a chunk overlap not smaller than the window.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrForbidden indicates the caller does not own the entity.
	ErrForbidden = errors.New("forbidden")

	// Ingestion Errors.

	// ErrUnsupportedMediaType indicates no extractor handles the media type.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrExtractionFailed indicates a parser failed on the document bytes.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrEmptyDocument indicates extraction produced no usable text.
	ErrEmptyDocument = errors.New("no text content found in document")

	// ErrNoChunksProduced indicates chunking emitted nothing.
	ErrNoChunksProduced = errors.New("no chunks produced from document")

	// ErrDocumentTooLarge indicates the upload exceeds the size limit.
	ErrDocumentTooLarge = errors.New("document too large")

	// ErrDimensionMismatch indicates an embedding whose length differs from
	// the collection's vector size.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// Infrastructure Errors.

	// ErrEmbeddingFailed indicates the embedding provider call failed.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrCollectionProvisionFailed indicates a collection could not be created.
	ErrCollectionProvisionFailed = errors.New("collection provisioning failed")

	// ErrVectorStoreUnavailable indicates an upsert or search against the
	// vector store failed.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")
)

// UnsupportedMediaTypeError reports the media type that was rejected.
type UnsupportedMediaTypeError struct {
	MediaType string
}

func (e *UnsupportedMediaTypeError) Error() string {
	return fmt.Sprintf("unsupported media type: %q", e.MediaType)
}

// Is reports whether target is ErrUnsupportedMediaType.
func (e *UnsupportedMediaTypeError) Is(target error) bool {
	return target == ErrUnsupportedMediaType
}

// ExtractionError wraps a parser failure with the file it happened on.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %v", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Is reports whether target is ErrExtractionFailed.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtractionFailed
}

// EmbeddingError wraps a provider or network failure.
type EmbeddingError struct {
	Model string
	Err   error
}

func (e *EmbeddingError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("embedding failed: %v", e.Err)
	}
	return fmt.Sprintf("embedding failed (model %s): %v", e.Model, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// Is reports whether target is ErrEmbeddingFailed.
func (e *EmbeddingError) Is(target error) bool {
	return target == ErrEmbeddingFailed
}

// CollectionError reports a collection that could not be provisioned.
type CollectionError struct {
	Collection string
	Err        error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("provisioning collection %s: %v", e.Collection, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }

// Is reports whether target is ErrCollectionProvisionFailed.
func (e *CollectionError) Is(target error) bool {
	return target == ErrCollectionProvisionFailed
}

// VectorStoreError reports a failed vector store operation on a collection.
type VectorStoreError struct {
	Op         string
	Collection string
	Err        error
}

func (e *VectorStoreError) Error() string {
	return fmt.Sprintf("vector store %s on %s: %v", e.Op, e.Collection, e.Err)
}

func (e *VectorStoreError) Unwrap() error { return e.Err }

// Is reports whether target is ErrVectorStoreUnavailable.
func (e *VectorStoreError) Is(target error) bool {
	return target == ErrVectorStoreUnavailable
}

// IsUserError reports whether err was caused by the request rather than
// by infrastructure. Driving adapters use it to pick a client-error status.
func IsUserError(err error) bool {
	switch {
	case errors.Is(err, ErrUnsupportedMediaType),
		errors.Is(err, ErrEmptyDocument),
		errors.Is(err, ErrNoChunksProduced),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrDocumentTooLarge):
		return true
	}
	return false
}
