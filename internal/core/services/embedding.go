package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
	"github.com/custodia-labs/tala-knowledge/internal/logger"
)

// EmbeddingClient wraps an EmbeddingProvider with input truncation,
// an optional cache and concurrent batches. It does not retry; a failed
// provider call surfaces as a *domain.EmbeddingError.
type EmbeddingClient struct {
	provider driven.EmbeddingProvider
	cache    driven.EmbeddingCache
	maxChars int
}

// EmbeddingOption configures an EmbeddingClient.
type EmbeddingOption func(*EmbeddingClient)

// WithMaxInputChars sets the truncation budget in characters.
// Zero or negative disables truncation.
func WithMaxInputChars(n int) EmbeddingOption {
	return func(c *EmbeddingClient) {
		c.maxChars = n
	}
}

// WithEmbeddingCache enables caching of vectors by model and input.
func WithEmbeddingCache(cache driven.EmbeddingCache) EmbeddingOption {
	return func(c *EmbeddingClient) {
		c.cache = cache
	}
}

// NewEmbeddingClient creates a client over provider.
func NewEmbeddingClient(provider driven.EmbeddingProvider, opts ...EmbeddingOption) *EmbeddingClient {
	c := &EmbeddingClient{
		provider: provider,
		maxChars: domain.DefaultMaxInputChars,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dimensions returns the provider's vector size.
func (c *EmbeddingClient) Dimensions() int {
	return c.provider.Dimensions()
}

// ModelName returns the provider's model.
func (c *EmbeddingClient) ModelName() string {
	return c.provider.ModelName()
}

// Ping checks the provider is reachable.
func (c *EmbeddingClient) Ping(ctx context.Context) error {
	if err := c.provider.Ping(ctx); err != nil {
		return &domain.EmbeddingError{Model: c.provider.ModelName(), Err: err}
	}
	return nil
}

// Embed returns the vector for text. Inputs over the character budget
// are cut to the same prefix every time, so embedding a long text equals
// embedding its truncated prefix.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	input := TruncateInput(text, c.maxChars)
	if len(input) < len(text) {
		logger.Debug("Embedding input truncated from %d to %d bytes", len(text), len(input))
	}

	var key string
	if c.cache != nil {
		key = CacheKey(c.provider.ModelName(), input)
		vec, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			logger.Warn("Embedding cache read failed: %v", err)
		case ok:
			return vec, nil
		}
	}

	vec, err := c.provider.Embed(ctx, input)
	if err != nil {
		return nil, &domain.EmbeddingError{Model: c.provider.ModelName(), Err: err}
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, vec); err != nil {
			logger.Warn("Embedding cache write failed: %v", err)
		}
	}
	return vec, nil
}

// EmbedBatch embeds every text concurrently. Results are returned in
// input order whatever order the calls complete in. The first failure
// cancels the remaining calls.
func (c *EmbeddingClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	for i, text := range texts {
		g.Go(func() error {
			vec, err := c.Embed(gctx, text)
			if err != nil {
				return err
			}
			vectors[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// TruncateInput returns the first maxChars characters of text.
// Characters are runes, so multi-byte text is never split mid-character.
func TruncateInput(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	if utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i]
		}
		n++
	}
	return text
}

// CacheKey identifies an embedding by model and exact input.
func CacheKey(model, input string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + input))
	return "emb:" + model + ":" + hex.EncodeToString(sum[:])
}
