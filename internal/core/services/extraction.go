package services

import (
	"context"
	"fmt"
	"mime"
	"sort"
	"strings"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driving"
	"github.com/custodia-labs/tala-knowledge/internal/logger"
)

// Ensure TextExtractor implements the interface.
var _ driving.TextExtractor = (*TextExtractor)(nil)

// TextExtractor selects an extractor by media type.
type TextExtractor struct {
	byType map[string]driven.Extractor
}

// NewTextExtractor registers extractors by their supported media types.
// Later extractors replace earlier ones for the same media type.
func NewTextExtractor(extractors ...driven.Extractor) *TextExtractor {
	t := &TextExtractor{byType: make(map[string]driven.Extractor)}
	for _, e := range extractors {
		for _, mt := range e.SupportedMediaTypes() {
			t.byType[NormaliseMediaType(mt)] = e
		}
	}
	return t
}

// SupportedMediaTypes returns every registered media type, sorted.
func (t *TextExtractor) SupportedMediaTypes() []string {
	types := make([]string, 0, len(t.byType))
	for mt := range t.byType {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// Supports reports whether mediaType has an extractor.
func (t *TextExtractor) Supports(mediaType string) bool {
	_, ok := t.byType[NormaliseMediaType(mediaType)]
	return ok
}

// Extract converts content to text. Empty text is returned as "" so the
// caller decides whether an empty document is acceptable.
func (t *TextExtractor) Extract(ctx context.Context, content []byte, mediaType, filename string) (string, error) {
	mt := NormaliseMediaType(mediaType)
	extractor, ok := t.byType[mt]
	if !ok {
		return "", &domain.UnsupportedMediaTypeError{MediaType: mediaType}
	}

	logger.Debug("Extracting %s (%d bytes) with %s extractor", filename, len(content), extractor.Name())

	text, err := extractor.Extract(ctx, content)
	if err != nil {
		return "", &domain.ExtractionError{Filename: filename, Err: err}
	}
	return text, nil
}

// NormaliseMediaType lowercases a media type and drops its parameters,
// so "Text/Plain; charset=utf-8" becomes "text/plain".
func NormaliseMediaType(mediaType string) string {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mediaType))
	}
	return mt
}

// MediaTypeFromFilename guesses a media type from a file extension for
// callers without a declared type, such as the CLI.
func MediaTypeFromFilename(filename string) (string, error) {
	ext := strings.ToLower(filenameExt(filename))
	if mt, ok := extensionMediaTypes[ext]; ok {
		return mt, nil
	}
	return "", fmt.Errorf("%w: cannot infer media type of %q", domain.ErrInvalidInput, filename)
}

var extensionMediaTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".doc":  "application/msword",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
	".txt":  "text/plain",
	".text": "text/plain",
	".md":   "text/plain",
}

func filenameExt(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || strings.ContainsAny(name[i:], `/\`) {
		return ""
	}
	return name[i:]
}
