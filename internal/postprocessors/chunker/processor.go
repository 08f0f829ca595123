// Package chunker provides a word-window text chunker.
package chunker

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
)

var _ driven.Chunker = (*Processor)(nil)

// DefaultWindowSize is the default number of words per chunk.
const DefaultWindowSize = domain.DefaultChunkWindow

// DefaultOverlap is the default number of words shared by consecutive chunks.
const DefaultOverlap = domain.DefaultChunkOverlap

// Processor splits text into overlapping fixed-size word windows.
type Processor struct {
	windowSize int
	overlap    int
	newID      func() string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithWindowSize sets the window size in words.
func WithWindowSize(size int) Option {
	return func(p *Processor) {
		p.windowSize = size
	}
}

// WithOverlap sets the overlap between consecutive windows in words.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// WithIDGenerator replaces the chunk ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(p *Processor) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// New creates a chunker. The overlap must be smaller than the window,
// otherwise the window would never advance.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		windowSize: DefaultWindowSize,
		overlap:    DefaultOverlap,
		newID:      uuid.NewString,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.windowSize <= 0 {
		return nil, fmt.Errorf("%w: chunk window must be positive, got %d", domain.ErrInvalidConfig, p.windowSize)
	}
	if p.overlap < 0 || p.overlap >= p.windowSize {
		return nil, fmt.Errorf("%w: chunk overlap %d must be in [0, %d)",
			domain.ErrInvalidConfig, p.overlap, p.windowSize)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// WindowSize returns the configured window in words.
func (p *Processor) WindowSize() int { return p.windowSize }

// Overlap returns the configured overlap in words.
func (p *Processor) Overlap() int { return p.overlap }

// Chunk splits text on whitespace and emits one chunk per window.
// The last window is the first one that reaches the end of the text.
func (p *Processor) Chunk(text string) []domain.Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := p.windowSize - p.overlap
	chunks := make([]domain.Chunk, 0, ExpectedCount(len(words), p.windowSize, p.overlap))

	for start := 0; ; start += step {
		end := min(start+p.windowSize, len(words))

		content := strings.Join(words[start:end], " ")
		if strings.TrimSpace(content) != "" {
			chunks = append(chunks, domain.Chunk{
				ID:              p.newID(),
				Index:           len(chunks),
				Content:         content,
				WordCount:       end - start,
				StartWordOffset: start,
				EndWordOffset:   end,
			})
		}

		if end >= len(words) {
			break
		}
	}

	return chunks
}

// ExpectedCount returns how many chunks Chunk emits for a text of
// words words: 0 for empty text, 1 when it fits one window, otherwise
// ceil((words-overlap)/(window-overlap)).
func ExpectedCount(words, window, overlap int) int {
	switch {
	case words <= 0:
		return 0
	case words <= window:
		return 1
	}
	step := window - overlap
	return (words - overlap + step - 1) / step
}
