package decoder

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"budgetgrader/internal/domain"
)

// metadataRows is how many leading sheet rows feed name and unit extraction.
const metadataRows = 10

// decodeXLSX reads the active sheet. Blank rows separate tables; cell values
// are taken formatted so "5%" stays "5%".
func decodeXLSX(content []byte) (*domain.DecodedDocument, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no active sheet")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	return &domain.DecodedDocument{
		Tables: splitOnBlankRows(rows),
		Text:   leadingText(rows, metadataRows),
	}, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// splitOnBlankRows groups consecutive non-blank rows into tables.
func splitOnBlankRows(rows [][]string) []domain.RawTable {
	var tables []domain.RawTable
	var cur domain.RawTable
	for _, row := range rows {
		if blankRow(row) {
			if len(cur) > 0 {
				tables = append(tables, cur)
				cur = nil
			}
			continue
		}
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.TrimSpace(c)
		}
		cur = append(cur, cells)
	}
	if len(cur) > 0 {
		tables = append(tables, cur)
	}
	return tables
}

// leadingText joins the non-empty cells of the first n rows with spaces.
func leadingText(rows [][]string, n int) string {
	var parts []string
	for i, row := range rows {
		if i >= n {
			break
		}
		for _, c := range row {
			if c = strings.TrimSpace(c); c != "" {
				parts = append(parts, c)
			}
		}
	}
	return strings.Join(parts, " ")
}
