package extractor_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetgrader/internal/domain"
	"budgetgrader/internal/extractor"
)

func budgetDocument() *domain.DecodedDocument {
	return &domain.DecodedDocument{
		FileName: "budget.docx",
		FileType: domain.FileTypeDOCX,
		Text:     "Student: Jane Doe.\nBudget for the Emergency Department. Prepared in May.",
		Tables: []domain.RawTable{
			{{"Patient data", ""}, {"Patient days", "4500"}},
			{fixedHeader, {"Office Supplies", "500", "100", "1200", "5", "60", "1260"}},
			{variableHeader, {"Gloves", "1000", "500", "2", "1200", "2400", "5", "120", "2520"}},
			{totalHeader, {"1500", "3600", "5", "180", "3780"}},
			{{"Notes"}},
		},
	}
}

func TestExtractor_Extract(t *testing.T) {
	rec, err := extractor.New().Extract(context.Background(), budgetDocument())
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", rec.StudentName)
	assert.Equal(t, "Budget for the Emergency Department", rec.Department)
	require.Len(t, rec.FixedExpenses, 1)
	require.Len(t, rec.VariableExpenses, 1)
	assert.Equal(t, "Office Supplies", rec.FixedExpenses[0].Description)
	assert.Equal(t, "Gloves", rec.VariableExpenses[0].Description)
	require.NotNil(t, rec.TotalExpenses.TotalAmount)
	assert.Equal(t, 3780.0, *rec.TotalExpenses.TotalAmount)
	require.NotNil(t, rec.PatientDaysInitial)
	assert.Equal(t, 4500.0, *rec.PatientDaysInitial)
	assert.False(t, rec.NeedsExternalExtraction)
	assert.Empty(t, rec.RawText)
	assert.True(t, rec.HasGradableData())
}

func TestExtractor_Extract_LaterTableReplacesEarlier(t *testing.T) {
	doc := &domain.DecodedDocument{
		Tables: []domain.RawTable{
			{fixedHeader, {"First", "500", "100", "1200", "5", "60", "1260"}},
			{fixedHeader, {"Second", "50", "10", "120", "5", "6", "126"}},
		},
	}

	rec, err := extractor.New().Extract(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, rec.FixedExpenses, 1)
	assert.Equal(t, "Second", rec.FixedExpenses[0].Description)
}

func TestExtractor_Extract_TextOnly(t *testing.T) {
	doc := &domain.DecodedDocument{
		FileName: "budget.pdf",
		FileType: domain.FileTypePDF,
		Text:     "Author: Sam Lee\nNICU supplies budget",
	}

	rec, err := extractor.New().Extract(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, rec.NeedsExternalExtraction)
	assert.Equal(t, doc.Text, rec.RawText)
	assert.Equal(t, "Sam Lee", rec.StudentName)
	assert.Empty(t, rec.FixedExpenses)
	assert.False(t, rec.HasGradableData())
}

func TestExtractor_Extract_NoRecognizedTables(t *testing.T) {
	doc := &domain.DecodedDocument{
		Tables: []domain.RawTable{{{"a", "b"}, {"c", "d"}}},
	}

	rec, err := extractor.New().Extract(context.Background(), doc)
	require.NoError(t, err)
	assert.False(t, rec.HasGradableData())
	assert.Equal(t, domain.DefaultStudentName, rec.StudentName)
	assert.Equal(t, domain.DefaultDepartment, rec.Department)
	assert.NotNil(t, rec.FixedExpenses)
	assert.NotNil(t, rec.VariableExpenses)
}

func TestExtractor_Extract_Idempotent(t *testing.T) {
	e := extractor.New()
	first, err := e.Extract(context.Background(), budgetDocument())
	require.NoError(t, err)
	second, err := e.Extract(context.Background(), budgetDocument())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExtractStudentName(t *testing.T) {
	tests := []struct {
		name, text, want string
	}{
		{"labelled", "Budget\nName: Maria Lopez Garcia\n", "Maria Lopez Garcia"},
		{"first line", "John Smith\nICU budget", "John Smith"},
		{"before newline", "submitted by: ana Lee Park Kim\n", "Lee Park Kim"},
		{"none", "budget worksheet", domain.DefaultStudentName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractor.ExtractStudentName(tt.text))
		})
	}
}

func TestExtractDepartment(t *testing.T) {
	assert.Equal(t, "Pediatric ward supplies", extractor.ExtractDepartment("Pediatric ward supplies. Other."))
	assert.Equal(t, domain.DefaultDepartment, extractor.ExtractDepartment("budget 2025"))

	long := "Nursing " + strings.Repeat("x", 200)
	assert.Len(t, []rune(extractor.ExtractDepartment(long)), 100)
}

func TestExtractDepartment_WholeWordKeywords(t *testing.T) {
	assert.Equal(t, "Unit: ICU", extractor.ExtractDepartment("Unit: ICU. Beds: 12"))
	assert.Equal(t, "Staffing for the ED", extractor.ExtractDepartment("Staffing for the ED. Reviewed here"))
	assert.Equal(t, domain.DefaultDepartment, extractor.ExtractDepartment("Prepared here by the manager"))
}
