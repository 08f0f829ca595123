package spreadsheet

import (
	"bytes"
	"context"
	"fmt"

	"github.com/extrame/xls"

	"github.com/custodia-labs/tala-knowledge/internal/core/ports/driven"
)

var _ driven.Extractor = (*XLS)(nil)

// XLS handles legacy BIFF8 workbooks.
type XLS struct {
	charset string
}

// NewXLS creates a new XLS extractor.
func NewXLS() *XLS {
	return &XLS{charset: "utf-8"}
}

// Name returns the extractor name.
func (e *XLS) Name() string {
	return "xls"
}

// SupportedMediaTypes returns the media types this extractor handles.
func (e *XLS) SupportedMediaTypes() []string {
	return []string{MediaTypeXLS}
}

// Extract converts every sheet to CSV.
func (e *XLS) Extract(ctx context.Context, content []byte) (text string, err error) {
	// The BIFF reader panics on truncated streams.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(content), e.charset)
	if err != nil {
		return "", fmt.Errorf("opening workbook: %w", err)
	}

	sheets := make([]sheet, 0, wb.NumSheets())
	for i := 0; i < wb.NumSheets(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		sheets = append(sheets, sheet{name: ws.Name, rows: readRows(ws)})
	}

	return render(sheets)
}

func readRows(ws *xls.WorkSheet) [][]string {
	var rows [][]string
	for r := 0; r <= int(ws.MaxRow); r++ {
		row := ws.Row(r)
		if row == nil {
			rows = append(rows, []string{})
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			if c < row.FirstCol() {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}
	return trimTrailingEmpty(rows)
}

func trimTrailingEmpty(rows [][]string) [][]string {
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows
}
