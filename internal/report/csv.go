package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"budgetgrader/internal/domain"
)

// BOM is written first so Excel on Windows detects UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

var csvColumns = []string{
	"Section",
	"Description",
	"Field",
	"Status",
	"Expected",
	"Actual",
	"Correct",
}

// WriteCSV writes one row per validation followed by summary rows.
func WriteCSV(w io.Writer, r *domain.ScoreReport) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}

	for _, d := range detailRows(r) {
		row := []string{
			d.Section,
			d.Description,
			d.Field,
			d.Result.Status,
			formatNumber(d.Result.Expected),
			formatOptional(d.Result.Actual),
			formatBool(d.Result.Correct),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	summary := [][]string{
		{"Summary", "Student", r.StudentName},
		{"Summary", "Department", r.Department},
		{"Summary", "Correct", strconv.Itoa(r.CorrectCount)},
		{"Summary", "Total Calculations", strconv.Itoa(r.TotalCalculations)},
		{"Summary", "Percentage", strconv.FormatFloat(r.Percentage, 'f', 1, 64)},
	}
	if r.Summary != "" {
		summary = append(summary, []string{"Summary", "Notes", r.Summary})
	}
	for _, row := range summary {
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatNumber(*v)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
