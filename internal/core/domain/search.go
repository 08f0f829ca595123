package domain

import "time"

// Search defaults.
const (
	DefaultSearchLimit    = 10
	DefaultScoreThreshold = 0.2

	// FilterAll disables the folder or category filter.
	FilterAll = "all"

	// overFetch is added to each collection's share of the limit so that a
	// collection with uneven scores still contributes enough candidates.
	overFetch = 5
)

// SourceLabel tells the caller which pool a result came from.
type SourceLabel string

// Source labels.
const (
	SourceAdmin    SourceLabel = "admin"
	SourcePersonal SourceLabel = "personal"
)

// SourceLabelFor labels results coming from collection.
func SourceLabelFor(collection string) SourceLabel {
	if IsAdminCollection(collection) {
		return SourceAdmin
	}
	return SourcePersonal
}

// SearchOptions configures a retrieval query.
type SearchOptions struct {
	OwnerID string
	IsAdmin bool

	// Limit is the maximum number of results. Zero means DefaultSearchLimit.
	Limit int

	// ScoreThreshold drops candidates scoring below it.
	// Nil means the configured default.
	ScoreThreshold *float64

	// FolderID restricts results to one folder unless empty or FilterAll.
	FolderID string

	// Category restricts results to one category unless empty or FilterAll.
	Category string
}

// Filters returns the payload equality filters implied by the options.
func (o SearchOptions) Filters() []FieldMatch {
	var must []FieldMatch
	if o.FolderID != "" && o.FolderID != FilterAll {
		must = append(must, FieldMatch{Field: FieldFolderID, Value: o.FolderID})
	}
	if o.Category != "" && o.Category != FilterAll {
		must = append(must, FieldMatch{Field: FieldCategory, Value: o.Category})
	}
	return must
}

// Float64 returns a pointer to v, for optional fields such as ScoreThreshold.
func Float64(v float64) *float64 {
	return &v
}

// PerCollectionLimit is how many candidates to request from each of n
// collections for an overall limit: ceil(limit/n) + 5.
func PerCollectionLimit(limit, n int) int {
	if n <= 0 {
		n = 1
	}
	return (limit+n-1)/n + overFetch
}

// SearchResult is one ranked passage. It is produced per query and never
// persisted.
type SearchResult struct {
	PointID    string        `json:"id"`
	Score      float64       `json:"score"`
	Content    string        `json:"content"`
	Metadata   ChunkMetadata `json:"metadata"`
	Document   DocumentInfo  `json:"document"`
	DocumentID string        `json:"documentId"`
	Source     SourceLabel   `json:"source"`
	Collection string        `json:"collection"`

	// Highlights contains sentences with matched query terms.
	Highlights []string `json:"highlights,omitempty"`
}

// SearchResponse is the full answer to one query.
type SearchResponse struct {
	Query               string         `json:"query"`
	Results             []SearchResult `json:"results"`
	Total               int            `json:"totalResults"`
	CollectionsSearched []string       `json:"collectionsSearched"`
	Elapsed             time.Duration  `json:"processingTime"`
}
