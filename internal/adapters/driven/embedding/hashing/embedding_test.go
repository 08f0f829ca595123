package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func TestNewEmbeddingProvider_InvalidDimensions(t *testing.T) {
	_, err := NewEmbeddingProvider(0)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestEmbed_Deterministic(t *testing.T) {
	p, err := NewEmbeddingProvider(64)
	require.NoError(t, err)

	a, err := p.Embed(context.Background(), "Japan visa requirements")
	require.NoError(t, err)
	b, err := p.Embed(context.Background(), "Japan visa requirements")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestEmbed_Normalised(t *testing.T) {
	p, err := NewEmbeddingProvider(128)
	require.NoError(t, err)

	vec, err := p.Embed(context.Background(), "baggage allowance for economy passengers")
	require.NoError(t, err)

	assert.InDelta(t, 1.0, math.Sqrt(cosine(vec, vec)), 1e-5)
}

func TestEmbed_SharedVocabularyIsCloser(t *testing.T) {
	p, err := NewEmbeddingProvider(256)
	require.NoError(t, err)
	ctx := context.Background()

	query, _ := p.Embed(ctx, "japan visa fee")
	related, _ := p.Embed(ctx, "The Japan visa fee is 35 USD for a single entry visa")
	unrelated, _ := p.Embed(ctx, "Carry-on baggage is limited to seven kilograms")

	assert.Greater(t, cosine(query, related), cosine(query, unrelated))
}

func TestEmbed_CaseAndPunctuationInsensitive(t *testing.T) {
	p, err := NewEmbeddingProvider(32)
	require.NoError(t, err)

	a, _ := p.Embed(context.Background(), "Visa, Japan!")
	b, _ := p.Embed(context.Background(), "visa japan")

	assert.Equal(t, a, b)
}

func TestEmbed_EmptyTextIsZeroVector(t *testing.T) {
	p, err := NewEmbeddingProvider(8)
	require.NoError(t, err)

	vec, err := p.Embed(context.Background(), "  ...  ")

	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), vec)
}

func TestEmbed_CancelledContext(t *testing.T) {
	p, err := NewEmbeddingProvider(8)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Embed(ctx, "text")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestMetadata(t *testing.T) {
	p, err := NewEmbeddingProvider(16)
	require.NoError(t, err)

	assert.Equal(t, 16, p.Dimensions())
	assert.Equal(t, ModelName, p.ModelName())
	assert.NoError(t, p.Ping(context.Background()))
	assert.NoError(t, p.Close())
}
