// Package plaintext decodes text/plain documents as UTF-8.
package plaintext

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
)

// MediaType is the media type handled by this extractor.
const MediaType = "text/plain"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "plaintext"
}

// SupportedMediaTypes returns the media types this extractor handles.
func (e *Extractor) SupportedMediaTypes() []string {
	return []string{MediaType}
}

// Extract decodes content as UTF-8. A leading byte order mark is dropped
// and invalid sequences are replaced with U+FFFD.
func (e *Extractor) Extract(_ context.Context, content []byte) (string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if utf8.Valid(content) {
		return string(content), nil
	}
	return strings.ToValidUTF8(string(content), "�"), nil
}
