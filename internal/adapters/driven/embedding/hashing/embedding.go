// Package hashing provides a deterministic offline embedding provider.
//
// Each lower-cased word and word bigram is hashed into one of the vector's
// buckets with a hash-derived sign, and the result is L2 normalised. Texts
// sharing vocabulary land close together under cosine similarity, which is
// enough for fixtures, demos and tests without network access.
package hashing

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
)

// Ensure EmbeddingProvider implements the interface.
var _ driven.EmbeddingProvider = (*EmbeddingProvider)(nil)

// ModelName is reported for every hashing provider.
const ModelName = "feature-hashing"

// bigramWeight scales bigram features relative to single words.
const bigramWeight = 0.5

// EmbeddingProvider embeds text by feature hashing.
type EmbeddingProvider struct {
	dimensions int
}

// NewEmbeddingProvider creates a provider producing vectors of the given size.
func NewEmbeddingProvider(dimensions int) (*EmbeddingProvider, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidConfig)
	}
	return &EmbeddingProvider{dimensions: dimensions}, nil
}

// Embed returns the hashed vector of text. Text without words maps to the
// zero vector.
func (p *EmbeddingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, p.dimensions)
	words := tokenize(text)
	for i, w := range words {
		p.add(vec, w, 1)
		if i > 0 {
			p.add(vec, words[i-1]+" "+w, bigramWeight)
		}
	}

	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	out := make([]float32, p.dimensions)
	if sum == 0 {
		return out, nil
	}
	n := math.Sqrt(sum)
	for i, v := range vec {
		out[i] = float32(v / n)
	}
	return out, nil
}

func (p *EmbeddingProvider) add(vec []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(p.dimensions))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[bucket] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Dimensions returns the embedding vector size.
func (p *EmbeddingProvider) Dimensions() int {
	return p.dimensions
}

// ModelName returns the name of the embedding model being used.
func (p *EmbeddingProvider) ModelName() string {
	return ModelName
}

// Ping always succeeds.
func (p *EmbeddingProvider) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (p *EmbeddingProvider) Close() error {
	return nil
}
