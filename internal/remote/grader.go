package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"budgetgrader/internal/domain"
	"budgetgrader/internal/llm"
	"budgetgrader/internal/port"
)

const stageGrade = "grading"

// Grader delegates formula checking to a remote model. The returned counts
// are always recomputed from the result sections.
type Grader struct {
	completer port.TextCompleter
	maxTokens int
}

// NewGrader creates a remote Grader. maxTokens bounds the response size.
func NewGrader(completer port.TextCompleter, maxTokens int) *Grader {
	return &Grader{completer: completer, maxTokens: maxTokens}
}

func (g *Grader) Grade(ctx context.Context, rec *domain.CanonicalRecord, opts domain.GradingOptions) (*domain.ScoreReport, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	payload, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling record: %w", err)
	}

	out, err := g.completer.Complete(ctx, port.CompletionInput{
		SystemPrompt: llm.BuildGradingPrompt(opts),
		UserPrompt:   llm.BuildGradingUserPrompt(payload),
		MaxTokens:    2 * g.maxTokens,
	})
	if err != nil {
		return nil, serviceError(stageGrade, err)
	}

	var report domain.ScoreReport
	err = decodeObject(stageGrade, out.Text, &report,
		"fixed_expenses_results", "variable_expenses_results", "total_expenses_results")
	if err != nil {
		return nil, err
	}

	if report.StudentName == "" {
		report.StudentName = rec.StudentName
	}
	if report.Department == "" {
		report.Department = rec.Department
	}
	if report.FixedExpensesResults == nil {
		report.FixedExpensesResults = []domain.ItemResult{}
	}
	if report.VariableExpensesResults == nil {
		report.VariableExpensesResults = []domain.ItemResult{}
	}
	if report.TotalExpensesResults == nil {
		report.TotalExpensesResults = map[string]domain.ValidationResult{}
	}

	claimedCorrect, claimedTotal := report.CorrectCount, report.TotalCalculations
	report.Recount()
	if claimedCorrect != report.CorrectCount || claimedTotal != report.TotalCalculations {
		log.Printf("remote.Grader: %s reported %d/%d, recounted %d/%d",
			out.ModelUsed, claimedCorrect, claimedTotal, report.CorrectCount, report.TotalCalculations)
	}

	log.Printf("remote.Grader: graded %q via %s: %d/%d (%.1f%%)",
		report.StudentName, out.ModelUsed, report.CorrectCount, report.TotalCalculations, report.Percentage)
	return &report, nil
}
