// Package openai provides an embedding provider backed by the OpenAI API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
)

// Ensure EmbeddingProvider implements the interface.
var _ driven.EmbeddingProvider = (*EmbeddingProvider)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the OpenAI embedding provider.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the embedding model to use (default: text-embedding-3-small).
	Model string

	// Timeout bounds one request (default: 60s).
	Timeout time.Duration

	// Dimensions overrides the model's native vector size.
	// Only text-embedding-3-* models accept an override.
	Dimensions int

	// RequestsPerSecond caps the request rate. Zero disables limiting.
	RequestsPerSecond float64
}

// EmbeddingProvider generates embeddings using the OpenAI API.
type EmbeddingProvider struct {
	client     *goopenai.Client
	model      string
	dimensions int
	override   int
	timeout    time.Duration
	limiter    *rate.Limiter
}

// NewEmbeddingProvider creates a new OpenAI embedding provider.
func NewEmbeddingProvider(cfg Config) (*EmbeddingProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai API key is required", domain.ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	native, known := domain.EmbeddingDimensions()[cfg.Model]
	dims := cfg.Dimensions
	override := 0
	switch {
	case dims == 0 && known:
		dims = native
	case dims == 0:
		return nil, fmt.Errorf("%w: dimensions required for unknown model %s", domain.ErrInvalidConfig, cfg.Model)
	case !known || dims != native:
		override = dims
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	p := &EmbeddingProvider{
		client:     goopenai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		dimensions: dims,
		override:   override,
		timeout:    cfg.Timeout,
	}
	if cfg.RequestsPerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return p, nil
}

// Embed generates a vector embedding for the given text.
func (p *EmbeddingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("openai: rate limiter: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input:          []string{text},
		Model:          goopenai.EmbeddingModel(p.model),
		EncodingFormat: goopenai.EmbeddingEncodingFormatFloat,
		Dimensions:     p.override,
	})
	if err != nil {
		return nil, describe(err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("openai: no embedding in response")
	}

	vec := resp.Data[0].Embedding
	if len(vec) != p.dimensions {
		return nil, fmt.Errorf("%w: openai returned %d dimensions, expected %d",
			domain.ErrDimensionMismatch, len(vec), p.dimensions)
	}
	return vec, nil
}

// Dimensions returns the embedding vector size.
func (p *EmbeddingProvider) Dimensions() int {
	return p.dimensions
}

// ModelName returns the name of the embedding model being used.
func (p *EmbeddingProvider) ModelName() string {
	return p.model
}

// Ping validates the API key by listing models. It does not consume
// embedding quota.
func (p *EmbeddingProvider) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if _, err := p.client.ListModels(ctx); err != nil {
		return describe(err)
	}
	return nil
}

// Close releases resources.
func (p *EmbeddingProvider) Close() error {
	return nil
}

// describe turns client errors into messages that never carry the key.
func describe(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("openai error (status %d): %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("openai error (status %d): %w", reqErr.HTTPStatusCode, reqErr.Err)
	}
	return fmt.Errorf("openai: %w", err)
}
