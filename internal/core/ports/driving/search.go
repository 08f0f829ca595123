package driving

import (
	"context"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
)

// RetrievalService answers natural-language queries across the
// requester's collection set.
type RetrievalService interface {
	// Search embeds the query once, searches the personal and admin
	// collections concurrently and returns the merged ranking.
	// A failing collection contributes no results instead of failing
	// the whole query.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error)
}
