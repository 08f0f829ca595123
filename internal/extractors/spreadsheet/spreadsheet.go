// Package spreadsheet extracts Excel workbooks as CSV text. Every sheet is
// written in workbook order under a "Sheet: <name>" header line.
package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// Media types handled by the extractors in this package.
const (
	MediaTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MediaTypeXLS  = "application/vnd.ms-excel"
)

// sheet is one worksheet in workbook order.
type sheet struct {
	name string
	rows [][]string
}

// render writes every sheet as a header line followed by its CSV rows.
// Sheets are separated by a blank line.
func render(sheets []sheet) (string, error) {
	var out strings.Builder

	for i, s := range sheets {
		if i > 0 {
			out.WriteString("\n")
		}
		fmt.Fprintf(&out, "Sheet: %s\n", s.name)

		w := csv.NewWriter(&out)
		if err := w.WriteAll(s.rows); err != nil {
			return "", fmt.Errorf("writing sheet %s: %w", s.name, err)
		}
	}

	return out.String(), nil
}
