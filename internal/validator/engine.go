// Package validator recomputes derived budget figures and grades a
// CanonicalRecord against them.
package validator

import (
	"context"
	"fmt"
	"log"

	"budgetgrader/internal/domain"
	"budgetgrader/internal/port"
)

// Engine is the rule-based port.Grader. It holds no mutable state and is
// safe for concurrent use.
type Engine struct{}

var _ port.Grader = (*Engine)(nil)

// NewEngine creates a rule-based grading engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Grade checks options and validates the record.
func (e *Engine) Grade(_ context.Context, rec *domain.CanonicalRecord, opts domain.GradingOptions) (*domain.ScoreReport, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	report := Validate(rec, opts)
	log.Printf("validator.Engine: graded %q: %d/%d correct (%.1f%%)",
		report.StudentName, report.CorrectCount, report.TotalCalculations, report.Percentage)
	return report, nil
}

// Validate runs every applicable formula over the record and aggregates the
// results in a single pass.
func Validate(rec *domain.CanonicalRecord, opts domain.GradingOptions) *domain.ScoreReport {
	report := &domain.ScoreReport{
		StudentName:             rec.StudentName,
		Department:              rec.Department,
		FixedExpensesResults:    make([]domain.ItemResult, 0, len(rec.FixedExpenses)),
		VariableExpensesResults: make([]domain.ItemResult, 0, len(rec.VariableExpenses)),
	}
	tally := func(results map[string]domain.ValidationResult) {
		for _, r := range results {
			report.TotalCalculations++
			if r.Correct {
				report.CorrectCount++
			}
		}
	}

	fixed := fixedFormulas()
	for i := range rec.FixedExpenses {
		item := &rec.FixedExpenses[i]
		results := run(fixed, item, rateOr(item.InflationRate, opts.InflationRate), opts.Tolerance)
		report.FixedExpensesResults = append(report.FixedExpensesResults, domain.ItemResult{
			Description: item.Description, Validations: results,
		})
		tally(results)
	}

	variable := variableFormulas()
	for i := range rec.VariableExpenses {
		item := &rec.VariableExpenses[i]
		results := run(variable, item, rateOr(item.InflationRate, opts.InflationRate), opts.Tolerance)
		report.VariableExpensesResults = append(report.VariableExpensesResults, domain.ItemResult{
			Description: item.Description, Validations: results,
		})
		tally(results)
	}

	report.TotalExpensesResults = run(totalFormulas(), rec, rateOr(rec.TotalExpenses.InflationRate, opts.InflationRate), opts.Tolerance)
	tally(report.TotalExpensesResults)

	report.Percentage = domain.Percentage(report.CorrectCount, report.TotalCalculations)
	report.Summary = Summarize(report)
	return report
}

// Summarize renders a one-line score summary.
func Summarize(r *domain.ScoreReport) string {
	if r.TotalCalculations == 0 {
		return "No calculations could be checked."
	}
	return fmt.Sprintf("%d of %d calculations correct (%.1f%%).", r.CorrectCount, r.TotalCalculations, r.Percentage)
}
