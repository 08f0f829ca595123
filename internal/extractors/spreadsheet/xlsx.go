package spreadsheet

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
)

var _ driven.Extractor = (*XLSX)(nil)

// XLSX handles Office Open XML workbooks.
type XLSX struct{}

// NewXLSX creates a new XLSX extractor.
func NewXLSX() *XLSX {
	return &XLSX{}
}

// Name returns the extractor name.
func (e *XLSX) Name() string {
	return "xlsx"
}

// SupportedMediaTypes returns the media types this extractor handles.
func (e *XLSX) SupportedMediaTypes() []string {
	return []string{MediaTypeXLSX}
}

// Extract converts every sheet to CSV.
func (e *XLSX) Extract(ctx context.Context, content []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	sheets := make([]sheet, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return "", fmt.Errorf("reading sheet %s: %w", name, err)
		}
		sheets = append(sheets, sheet{name: name, rows: rows})
	}

	return render(sheets)
}
