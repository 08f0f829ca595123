// Package extractors holds one sub-package per document format. Each
// sub-package provides a driven.Extractor that turns raw bytes into plain
// text; the TextExtractor service dispatches to them by media type.
package extractors

import (
	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
	"github.com/custodia-labs/tala-knowledge/internal/extractors/docx"
	"github.com/custodia-labs/tala-knowledge/internal/extractors/pdf"
	"github.com/custodia-labs/tala-knowledge/internal/extractors/plaintext"
	"github.com/custodia-labs/tala-knowledge/internal/extractors/spreadsheet"
)

// Defaults returns the built-in extractors for PDF, Word, Excel and
// plain text documents.
func Defaults() []driven.Extractor {
	return []driven.Extractor{
		pdf.New(),
		docx.New(),
		spreadsheet.NewXLSX(),
		spreadsheet.NewXLS(),
		plaintext.New(),
	}
}
