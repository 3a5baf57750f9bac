// Package extractor turns decoded worksheet tables into a CanonicalRecord
// using header keyword heuristics. It never fails on malformed content:
// unmatched headers and unparseable cells simply leave fields absent.
package extractor

import (
	"context"
	"log"

	"budgetgrader/internal/domain"
	"budgetgrader/internal/port"
)

// Extractor is the rule-based port.Extractor. It holds no mutable state.
type Extractor struct{}

var _ port.Extractor = (*Extractor)(nil)

// New creates a rule-based extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract classifies each table and builds the canonical record. Documents
// without tables come back flagged for external extraction with their text.
func (e *Extractor) Extract(_ context.Context, doc *domain.DecodedDocument) (*domain.CanonicalRecord, error) {
	rec := &domain.CanonicalRecord{
		StudentName:      ExtractStudentName(doc.Text),
		Department:       ExtractDepartment(doc.Text),
		FixedExpenses:    []domain.FixedExpenseItem{},
		VariableExpenses: []domain.VariableExpenseItem{},
	}

	if !doc.HasTables() {
		rec.RawText = doc.Text
		rec.NeedsExternalExtraction = true
		log.Printf("extractor.Extract: %s has no tables (%d pages, %d chars of text), deferring to external extraction",
			doc.FileName, doc.PageCount, len(doc.Text))
		return rec, nil
	}

	for i, table := range doc.Tables {
		if len(table) < 2 {
			continue
		}
		kind := Classify(table)
		switch kind {
		case TableFixed:
			rec.FixedExpenses = ParseFixedRows(table)
		case TableVariable:
			rec.VariableExpenses = ParseVariableRows(table)
		case TableTotal:
			rec.TotalExpenses = ParseTotalRow(table)
		case TablePatientDays:
			rec.PatientDaysInitial = ExtractPatientDays(table)
		}
		log.Printf("extractor.Extract: %s table %d classified as %s", doc.FileName, i, kind)
	}

	log.Printf("extractor.Extract: %s yielded %d fixed, %d variable items",
		doc.FileName, len(rec.FixedExpenses), len(rec.VariableExpenses))
	return rec, nil
}
