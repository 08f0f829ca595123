package driven

import "context"

// Extractor converts the bytes of one family of media types to plain text.
//
// Implementations return "" (not an error) when a valid document simply
// has no text. Parser failures are returned as plain errors; the
// TextExtractor service wraps them with the filename.
type Extractor interface {
	// Name identifies the extractor in logs.
	Name() string

	// SupportedMediaTypes returns the media types this extractor handles.
	SupportedMediaTypes() []string

	// Extract returns the document's text.
	Extract(ctx context.Context, content []byte) (string, error)
}
