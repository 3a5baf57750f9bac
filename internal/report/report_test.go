package report_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"budgetgrader/internal/domain"
	"budgetgrader/internal/report"
)

func fp(v float64) *float64 { return &v }

func sampleReport() *domain.ScoreReport {
	return &domain.ScoreReport{
		StudentName: "Jane Doe",
		Department:  "ICU",
		FixedExpensesResults: []domain.ItemResult{
			{
				Description: "Office Supplies",
				Validations: map[string]domain.ValidationResult{
					"year_2024_consumption": {Correct: false, Status: "Missing value", Expected: 1200},
					"monthly_consumption":   {Correct: true, Status: "Correct", Expected: 100, Actual: fp(100)},
				},
			},
		},
		VariableExpensesResults: []domain.ItemResult{},
		TotalExpensesResults: map[string]domain.ValidationResult{
			"total_amount":           {Correct: false, Status: "Incorrect (off by 10.00)", Expected: 95130, Actual: fp(95140)},
			"five_month_consumption": {Correct: true, Status: "Correct", Expected: 500, Actual: fp(500)},
		},
		CorrectCount:      2,
		TotalCalculations: 4,
		Percentage:        50,
		Summary:           "2 of 4 calculations correct (50.0%).",
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    report.Format
		wantErr bool
	}{
		{"", report.FormatJSON, false},
		{"JSON", report.FormatJSON, false},
		{"yml", report.FormatYAML, false},
		{"csv", report.FormatCSV, false},
		{" xlsx ", report.FormatXLSX, false},
		{"PDF", report.FormatPDF, false},
		{"html", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := report.ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildFilename(t *testing.T) {
	date := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "grading_report_Jane_Doe_20250309.pdf", report.BuildFilename("Jane Doe", date, report.FormatPDF))
	assert.Equal(t, "grading_report_O_Brien_20250309.csv", report.BuildFilename("O'Brien", date, report.FormatCSV))
	assert.Equal(t, "grading_report_student_20250309.json", report.BuildFilename("  ", date, report.FormatJSON))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", report.ContentType(report.FormatJSON))
	assert.Contains(t, report.ContentType(report.FormatXLSX), "spreadsheetml")
	assert.Equal(t, "application/pdf", report.ContentType(report.FormatPDF))
}

func TestWriteJSON_FieldForField(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, sampleReport(), report.FormatJSON))

	var got domain.ScoreReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, *sampleReport(), got)
}

func TestWriteYAML_UsesWireFieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, sampleReport(), report.FormatYAML))

	out := buf.String()
	assert.Contains(t, out, "student_name: Jane Doe")
	assert.Contains(t, out, "correct_count: 2")
	assert.Contains(t, out, "fixed_expenses_results:")

	var got domain.ScoreReport
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 50.0, got.Percentage)
}

func TestWriteCSV_RowsInDisplayOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, sampleReport(), report.FormatCSV))

	require.True(t, bytes.HasPrefix(buf.Bytes(), report.BOM))
	r := csv.NewReader(bytes.NewReader(buf.Bytes()[len(report.BOM):]))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Section", "Description", "Field", "Status", "Expected", "Actual", "Correct"}, records[0])
	assert.Equal(t, []string{"Fixed", "Office Supplies", "monthly_consumption", "Correct", "100.00", "100.00", "Yes"}, records[1])
	assert.Equal(t, []string{"Fixed", "Office Supplies", "year_2024_consumption", "Missing value", "1200.00", "", "No"}, records[2])
	assert.Equal(t, "five_month_consumption", records[3][2])
	assert.Equal(t, "total_amount", records[4][2])
	assert.Equal(t, []string{"Summary", "Student", "Jane Doe"}, records[5])
	assert.Equal(t, []string{"Summary", "Percentage", "50.0"}, records[9])
	assert.Equal(t, []string{"Summary", "Notes", "2 of 4 calculations correct (50.0%)."}, records[10])
}

func TestWriteXLSX_SummaryAndDetails(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, sampleReport(), report.FormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Summary", "Details"}, f.GetSheetList())

	student, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", student)
	result, err := f.GetCellValue("Summary", "B7")
	require.NoError(t, err)
	assert.Equal(t, "FAIL", result)

	rows, err := f.GetRows("Details")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "monthly_consumption", rows[1][2])
	assert.Equal(t, "Total", rows[4][0])
}

func TestWritePDF_Validates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, sampleReport(), report.FormatPDF))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	require.NoError(t, api.Validate(bytes.NewReader(out), model.NewDefaultConfiguration()))
}

func TestWritePDF_ManyItemsSpanPages(t *testing.T) {
	r := sampleReport()
	for i := 0; i < 60; i++ {
		r.VariableExpensesResults = append(r.VariableExpensesResults, domain.ItemResult{
			Description: fmt.Sprintf("Gasas estériles ✓ lote %d", i),
			Validations: map[string]domain.ValidationResult{
				"total_amount": {Correct: true, Status: "Correct", Expected: 10, Actual: fp(10)},
			},
		})
	}
	r.StudentName = ""
	r.Summary = ""

	var buf bytes.Buffer
	require.NoError(t, report.WritePDF(&buf, r))

	rs := bytes.NewReader(buf.Bytes())
	require.NoError(t, api.Validate(rs, model.NewDefaultConfiguration()))
	pages, err := api.PageCount(bytes.NewReader(buf.Bytes()), model.NewDefaultConfiguration())
	require.NoError(t, err)
	assert.Greater(t, pages, 1)
}

func TestBuildPDFLayout(t *testing.T) {
	tests := []struct {
		name      string
		pct       float64
		wantColor string
		wantText  string
	}{
		{"pass at threshold", 70, "#27AE60", "PASS"},
		{"fail below threshold", 69.9, "#E74C3C", "FAIL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sampleReport()
			r.Percentage = tt.pct

			raw, err := report.BuildPDFLayout(r)
			require.NoError(t, err)

			var layout struct {
				Pages map[string]struct {
					Content struct {
						Text []struct {
							Value string `json:"value"`
							BgCol string `json:"bgCol"`
						} `json:"text"`
						Table []struct {
							Rows   int        `json:"rows"`
							Values [][]string `json:"values"`
						} `json:"table"`
					} `json:"content"`
				} `json:"pages"`
			}
			require.NoError(t, json.Unmarshal(raw, &layout))
			require.Len(t, layout.Pages, 1)
			page := layout.Pages["1"].Content

			var score string
			for _, tx := range page.Text {
				if tx.BgCol != "" {
					score = tx.Value
					assert.Equal(t, tt.wantColor, tx.BgCol)
				}
			}
			assert.Contains(t, score, tt.wantText)
			assert.Contains(t, score, "2 / 4")

			require.Len(t, page.Table, 3)
			assert.Equal(t, "monthly_consumption", page.Table[0].Values[0][1])
			assert.Equal(t, [][]string{{"No calculations"}}, page.Table[1].Values)
			assert.Equal(t, 2, page.Table[2].Rows)
		})
	}
}

func TestPassed(t *testing.T) {
	assert.True(t, report.Passed(&domain.ScoreReport{Percentage: 70}))
	assert.False(t, report.Passed(&domain.ScoreReport{Percentage: 69.9}))
}
