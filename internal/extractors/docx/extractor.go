// Package docx extracts the raw text of Word documents. Formatting is
// discarded; paragraphs (including those inside tables) become lines.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
)

// Media types handled by this extractor. Legacy binary .doc files are
// routed here too and fail because they are not zip packages.
const (
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeDOC  = "application/msword"
)

const documentPart = "word/document.xml"

// ErrNotWordDocument is returned for zip packages without a main document part.
var ErrNotWordDocument = errors.New("docx: missing " + documentPart)

var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles Word documents.
type Extractor struct{}

// New creates a new Word extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "docx"
}

// SupportedMediaTypes returns the media types this extractor handles.
func (e *Extractor) SupportedMediaTypes() []string {
	return []string{MediaTypeDOCX, MediaTypeDOC}
}

// Extract returns the document body as text, one paragraph per line.
func (e *Extractor) Extract(_ context.Context, content []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("opening docx package: %w", err)
	}

	for _, file := range reader.File {
		if file.Name != documentPart {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("opening %s: %w", documentPart, err)
		}
		defer rc.Close()

		return parseDocumentXML(rc)
	}
	return "", ErrNotWordDocument
}

// parseDocumentXML walks the WordprocessingML token stream. Text runs
// (w:t) are copied, w:tab becomes a tab, w:br and w:cr become newlines,
// and every closed paragraph (w:p) ends a line.
func parseDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		out    strings.Builder
		inText bool
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing %s: %w", documentPart, err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br", "cr":
				out.WriteByte('\n')
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(el)
			}
		}
	}

	return strings.TrimSpace(out.String()), nil
}
