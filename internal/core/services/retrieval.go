package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driving"
	"github.com/custodia-labs/tala-knowledge/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

const (
	maxHighlights      = 3
	maxHighlightLength = 200
)

// RetrievalConfig holds the defaults applied to queries that leave them unset.
type RetrievalConfig struct {
	Limit          int
	ScoreThreshold float64
}

// RetrievalService answers a query over the requester's collection set.
type RetrievalService struct {
	embeddings *EmbeddingClient
	router     *CollectionRouter
	store      driven.VectorStore
	cfg        RetrievalConfig

	now func() time.Time
}

// NewRetrievalService creates a retrieval service.
func NewRetrievalService(
	embeddings *EmbeddingClient,
	router *CollectionRouter,
	store driven.VectorStore,
	cfg RetrievalConfig,
) *RetrievalService {
	if cfg.Limit <= 0 {
		cfg.Limit = domain.DefaultSearchLimit
	}
	return &RetrievalService{
		embeddings: embeddings,
		router:     router,
		store:      store,
		cfg:        cfg,
		now:        time.Now,
	}
}

// collectionHits is the outcome of searching one collection.
type collectionHits struct {
	collection string
	points     []domain.ScoredPoint
	err        error
	missing    bool
}

// Search embeds the query once, searches every collection in the
// requester's set concurrently and merges the hits by score.
//
// Collections that do not exist are skipped. A collection that fails is
// logged and contributes no results; it never fails the whole search.
func (s *RetrievalService) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error) {
	logger.Section("Search Execution")
	start := s.now()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.cfg.Limit
	}
	threshold := s.cfg.ScoreThreshold
	if opts.ScoreThreshold != nil {
		threshold = *opts.ScoreThreshold
	}
	logger.Debug("Query: %q, limit: %d, threshold: %.2f", query, limit, threshold)

	vector, err := s.embeddings.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	collections := s.router.CollectionSet(opts.OwnerID, opts.IsAdmin)
	perCollection := domain.PerCollectionLimit(limit, len(collections))
	vq := domain.VectorQuery{Vector: vector, Limit: perCollection, Must: opts.Filters()}
	logger.Debug("Collections: %v, per-collection limit: %d", collections, perCollection)

	hits := s.searchAll(ctx, collections, vq)

	var (
		results  []domain.SearchResult
		searched []string
	)
	for _, h := range hits {
		switch {
		case h.missing:
			logger.Debug("Collection %s does not exist, skipping", h.collection)
			continue
		case h.err != nil:
			logger.Warn("Search failed on %s: %v", h.collection,
				&domain.VectorStoreError{Op: "search", Collection: h.collection, Err: h.err})
			continue
		}
		searched = append(searched, h.collection)
		results = append(results, s.toResults(h, query, threshold)...)
	}

	rank(results)
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	if searched == nil {
		searched = []string{}
	}

	elapsed := s.now().Sub(start)
	logger.Info("Found %d results in %v across %d collections", len(results), elapsed, len(searched))

	return &domain.SearchResponse{
		Query:               query,
		Results:             results,
		Total:               len(results),
		CollectionsSearched: searched,
		Elapsed:             elapsed,
	}, nil
}

// searchAll queries each collection in its own goroutine. The returned
// slice has one entry per collection, in input order.
func (s *RetrievalService) searchAll(ctx context.Context, collections []string, vq domain.VectorQuery) []collectionHits {
	hits := make([]collectionHits, len(collections))

	var wg sync.WaitGroup
	for i, name := range collections {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hits[i] = s.searchOne(ctx, name, vq)
		}()
	}
	wg.Wait()

	return hits
}

func (s *RetrievalService) searchOne(ctx context.Context, name string, vq domain.VectorQuery) collectionHits {
	exists, err := s.router.Exists(ctx, name)
	if err != nil {
		return collectionHits{collection: name, err: err}
	}
	if !exists {
		return collectionHits{collection: name, missing: true}
	}

	points, err := s.store.Search(ctx, name, vq)
	if errors.Is(err, domain.ErrNotFound) {
		return collectionHits{collection: name, missing: true}
	}
	return collectionHits{collection: name, points: points, err: err}
}

// toResults keeps the hits at or above threshold and tags their source.
func (s *RetrievalService) toResults(h collectionHits, query string, threshold float64) []domain.SearchResult {
	source := domain.SourceLabelFor(h.collection)
	results := make([]domain.SearchResult, 0, len(h.points))
	for _, p := range h.points {
		if p.Score < threshold {
			continue
		}
		results = append(results, domain.SearchResult{
			PointID:    p.ID,
			Score:      p.Score,
			Content:    p.Payload.Content,
			Metadata:   p.Payload.Metadata,
			Document:   p.Payload.Document,
			DocumentID: p.Payload.DocumentID,
			Source:     source,
			Collection: h.collection,
			Highlights: generateHighlights(p.Payload.Content, query),
		})
	}
	return results
}

// rank orders results by descending score. Equal scores fall back to the
// point ID so that the order does not depend on goroutine timing.
func rank(results []domain.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].PointID < results[j].PointID
	})
}

// generateHighlights picks up to three sentences mentioning a query term.
func generateHighlights(content, query string) []string {
	queryTerms := strings.Fields(strings.ToLower(query))
	if len(queryTerms) == 0 {
		return nil
	}

	var highlights []string
	for _, sentence := range splitSentences(content) {
		sentenceLower := strings.ToLower(sentence)
		for _, term := range queryTerms {
			if strings.Contains(sentenceLower, term) {
				highlights = append(highlights, truncateHighlight(sentence))
				break
			}
		}
		if len(highlights) >= maxHighlights {
			break
		}
	}

	return highlights
}

func truncateHighlight(sentence string) string {
	runes := []rune(sentence)
	if len(runes) <= maxHighlightLength {
		return sentence
	}
	return string(runes[:maxHighlightLength]) + "..."
}

// splitSentences splits content on sentence terminators and newlines.
func splitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
