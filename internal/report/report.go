// Package report renders a ScoreReport for download. Every renderer is a
// pure function of the report.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"budgetgrader/internal/domain"
)

// Format is a report download format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// PassThreshold is the percentage at or above which a report counts as passing.
const PassThreshold = 70.0

var contentTypes = map[Format]string{
	FormatJSON: "application/json",
	FormatYAML: "application/yaml",
	FormatCSV:  "text/csv; charset=utf-8",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatPDF:  "application/pdf",
}

// ParseFormat validates a format name. An empty name selects JSON.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatJSON, nil
	}
	if f == "yml" {
		return FormatYAML, nil
	}
	if _, ok := contentTypes[f]; !ok {
		return "", fmt.Errorf("unknown report format %q; allowed: json, yaml, csv, xlsx, pdf", s)
	}
	return f, nil
}

// ContentType returns the MIME type served for f.
func ContentType(f Format) string {
	return contentTypes[f]
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// BuildFilename returns grading_report_<name>_<yyyymmdd>.<ext>.
func BuildFilename(studentName string, date time.Time, f Format) string {
	name := strings.Trim(unsafeFilenameChars.ReplaceAllString(studentName, "_"), "_")
	if name == "" {
		name = "student"
	}
	return fmt.Sprintf("grading_report_%s_%s.%s", name, date.Format("20060102"), f)
}

// Render writes r to w in format f.
func Render(w io.Writer, r *domain.ScoreReport, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatXLSX:
		return WriteXLSX(w, r)
	case FormatPDF:
		return WritePDF(w, r)
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

// WriteJSON writes the report field-for-field as indented JSON.
func WriteJSON(w io.Writer, r *domain.ScoreReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteYAML writes the report as YAML using the same field names as JSON.
func WriteYAML(w io.Writer, r *domain.ScoreReport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// Passed reports whether the percentage meets PassThreshold.
func Passed(r *domain.ScoreReport) bool {
	return r.Percentage >= PassThreshold
}

// detailRow is one validation flattened for tabular output.
type detailRow struct {
	Section     string
	Description string
	Field       string
	Result      domain.ValidationResult
}

// detailRows flattens the report in display order: fixed items, variable
// items, then totals. Known fields come first in their canonical order,
// followed by any other keys sorted by name.
func detailRows(r *domain.ScoreReport) []detailRow {
	var rows []detailRow
	for _, item := range r.FixedExpensesResults {
		for _, field := range orderedFields(item.Validations, domain.FixedValidatedFields) {
			rows = append(rows, detailRow{"Fixed", item.Description, field, item.Validations[field]})
		}
	}
	for _, item := range r.VariableExpensesResults {
		for _, field := range orderedFields(item.Validations, domain.VariableValidatedFields) {
			rows = append(rows, detailRow{"Variable", item.Description, field, item.Validations[field]})
		}
	}
	for _, field := range orderedFields(r.TotalExpensesResults, domain.TotalValidatedFields) {
		rows = append(rows, detailRow{"Total", "Total Expenses", field, r.TotalExpensesResults[field]})
	}
	return rows
}

func orderedFields(m map[string]domain.ValidationResult, preferred []string) []string {
	out := make([]string, 0, len(m))
	seen := make(map[string]bool, len(preferred))
	for _, f := range preferred {
		seen[f] = true
		if _, ok := m[f]; ok {
			out = append(out, f)
		}
	}
	var extra []string
	for f := range m {
		if !seen[f] {
			extra = append(extra, f)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
