package driven

import "github.com/custodia-labs/tala-knowledge/internal/core/domain"

// Chunker splits extracted text into ordered chunks.
// Configuration is validated when the chunker is constructed, so Chunk
// itself cannot fail.
type Chunker interface {
	// Name returns the chunker identifier.
	Name() string

	// Chunk returns chunks with contiguous indices starting at 0.
	Chunk(text string) []domain.Chunk
}
