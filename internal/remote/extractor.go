// Package remote adapts a port.TextCompleter into the Extractor and Grader
// ports, for worksheets the heuristic extractor cannot read and for
// deployments that delegate grading to a language model.
package remote

import (
	"context"
	"fmt"
	"log"
	"strings"

	"budgetgrader/internal/domain"
	"budgetgrader/internal/extractor"
	"budgetgrader/internal/llm"
	"budgetgrader/internal/port"
)

const stageExtract = "extraction"

// Extractor builds a CanonicalRecord from a document's free text.
type Extractor struct {
	completer port.TextCompleter
	maxTokens int
}

// NewExtractor creates a remote Extractor. maxTokens bounds the response size.
func NewExtractor(completer port.TextCompleter, maxTokens int) *Extractor {
	return &Extractor{completer: completer, maxTokens: maxTokens}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.DecodedDocument) (*domain.CanonicalRecord, error) {
	if strings.TrimSpace(doc.Text) == "" {
		return nil, fmt.Errorf("remote.Extractor: %s: %w", doc.FileName, domain.ErrNoGradableData)
	}

	out, err := e.completer.Complete(ctx, port.CompletionInput{
		SystemPrompt: llm.BuildExtractionPrompt(),
		UserPrompt:   llm.BuildExtractionUserPrompt(doc.Text),
		MaxTokens:    e.maxTokens,
	})
	if err != nil {
		return nil, serviceError(stageExtract, err)
	}

	var rec domain.CanonicalRecord
	if err := decodeObject(stageExtract, out.Text, &rec); err != nil {
		return nil, err
	}
	normalizeRecord(&rec)

	log.Printf("remote.Extractor: %s via %s: %d fixed, %d variable items",
		doc.FileName, out.ModelUsed, len(rec.FixedExpenses), len(rec.VariableExpenses))
	return &rec, nil
}

// normalizeRecord applies the same defaults the heuristic extractor guarantees.
func normalizeRecord(rec *domain.CanonicalRecord) {
	rec.StudentName = strings.TrimSpace(rec.StudentName)
	if rec.StudentName == "" {
		rec.StudentName = domain.DefaultStudentName
	}
	rec.Department = strings.TrimSpace(rec.Department)
	if rec.Department == "" {
		rec.Department = domain.DefaultDepartment
	}

	fixed := make([]domain.FixedExpenseItem, 0, len(rec.FixedExpenses))
	for _, item := range rec.FixedExpenses {
		item.Description = extractor.CleanText(item.Description)
		if keepItem(item.Description) {
			fixed = append(fixed, item)
		}
	}
	rec.FixedExpenses = fixed

	variable := make([]domain.VariableExpenseItem, 0, len(rec.VariableExpenses))
	for _, item := range rec.VariableExpenses {
		item.Description = extractor.CleanText(item.Description)
		if keepItem(item.Description) {
			variable = append(variable, item)
		}
	}
	rec.VariableExpenses = variable

	rec.RawText = ""
	rec.NeedsExternalExtraction = false
}

// keepItem drops blank and total/subtotal/sum rows, as the heuristic extractor does.
func keepItem(description string) bool {
	return description != "" && !extractor.IsSummaryLabel(description)
}
