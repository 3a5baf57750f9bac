package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"budgetgrader/internal/domain"
)

const (
	summarySheet = "Summary"
	detailsSheet = "Details"

	passColor = "#27AE60"
	failColor = "#E74C3C"
)

// WriteXLSX writes a workbook with a Summary sheet and a Details sheet.
func WriteXLSX(w io.Writer, r *domain.ScoreReport) error {
	f, err := BuildWorkbook(r)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("report.WriteXLSX: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// BuildWorkbook lays the report out as an excelize workbook.
func BuildWorkbook(r *domain.ScoreReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(detailsSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	passStyle, err := resultStyle(f, passColor)
	if err != nil {
		return nil, err
	}
	failStyle, err := resultStyle(f, failColor)
	if err != nil {
		return nil, err
	}

	if err := writeSummary(f, r, headerStyle, passStyle, failStyle); err != nil {
		return nil, err
	}
	if err := writeDetails(f, r, headerStyle, passStyle, failStyle); err != nil {
		return nil, err
	}
	return f, nil
}

func resultStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: color}})
}

func writeSummary(f *excelize.File, r *domain.ScoreReport, headerStyle, passStyle, failStyle int) error {
	result, style := "FAIL", failStyle
	if Passed(r) {
		result, style = "PASS", passStyle
	}

	rows := [][]interface{}{
		{"Field", "Value"},
		{"Student", r.StudentName},
		{"Department", r.Department},
		{"Correct", r.CorrectCount},
		{"Total Calculations", r.TotalCalculations},
		{"Percentage", fmt.Sprintf("%.1f%%", r.Percentage)},
		{"Result", result},
	}
	if r.Summary != "" {
		rows = append(rows, []interface{}{"Summary", r.Summary})
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetRowStyle(summarySheet, 1, 1, headerStyle); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "B6", "B7", style); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 22); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "B", "B", 45)
}

func writeDetails(f *excelize.File, r *domain.ScoreReport, headerStyle, passStyle, failStyle int) error {
	header := make([]interface{}, len(csvColumns))
	for i, c := range csvColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(detailsSheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(detailsSheet, 1, 1, headerStyle); err != nil {
		return err
	}

	for i, d := range detailRows(r) {
		rowNum := i + 2
		var actual interface{}
		if d.Result.Actual != nil {
			actual = *d.Result.Actual
		}
		row := []interface{}{
			d.Section,
			d.Description,
			d.Field,
			d.Result.Status,
			d.Result.Expected,
			actual,
			formatBool(d.Result.Correct),
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(detailsSheet, cell, &row); err != nil {
			return err
		}

		style := failStyle
		if d.Result.Correct {
			style = passStyle
		}
		statusCell, _ := excelize.CoordinatesToCellName(4, rowNum)
		if err := f.SetCellStyle(detailsSheet, statusCell, statusCell, style); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(detailsSheet, "A", "A", 10); err != nil {
		return err
	}
	if err := f.SetColWidth(detailsSheet, "B", "C", 34); err != nil {
		return err
	}
	return f.SetColWidth(detailsSheet, "D", "G", 18)
}
