package domain

import (
	"fmt"
	"math"
)

const (
	DefaultStudentName = "Unknown Student"
	DefaultDepartment  = "Unknown Department"

	DefaultInflationRate = 5.0
	DefaultTolerance     = 0.5
	MaxInflationRate     = 100.0
	MaxTolerance         = 5.0
)

// RawTable is a grid of cell strings as produced by a document decoder.
// Row 0 is the header row; rows may be shorter than the header.
type RawTable [][]string

// DecodedDocument is the decoder's view of an uploaded worksheet.
// PDF sources carry Text only; Tables is empty.
type DecodedDocument struct {
	FileName  string
	FileType  FileType
	Tables    []RawTable
	Text      string
	PageCount int
}

// HasTables reports whether any table structure was recovered.
func (d *DecodedDocument) HasTables() bool {
	return len(d.Tables) > 0
}

// FixedExpenseItem is one gradable row of the fixed-expenses table.
// Nil fields were absent or unparseable in the source.
type FixedExpenseItem struct {
	Description              string   `json:"description" yaml:"description"`
	FiveMonthConsumption     *float64 `json:"five_month_consumption" yaml:"five_month_consumption"`
	MonthlyConsumption       *float64 `json:"monthly_consumption" yaml:"monthly_consumption"`
	Year2024Consumption      *float64 `json:"year_2024_consumption" yaml:"year_2024_consumption"`
	InflationRate            *float64 `json:"inflation_rate" yaml:"inflation_rate"`
	InflationAmount          *float64 `json:"inflation_amount" yaml:"inflation_amount"`
	Estimated2025Consumption *float64 `json:"estimated_2025_consumption" yaml:"estimated_2025_consumption"`
}

// VariableExpenseItem is one gradable row of the variable-expenses table.
type VariableExpenseItem struct {
	Description                    string   `json:"description" yaml:"description"`
	FiveMonthConsumption           *float64 `json:"five_month_consumption" yaml:"five_month_consumption"`
	FiveMonthPatientDays           *float64 `json:"five_month_patient_days" yaml:"five_month_patient_days"`
	ConsumptionPerPatientDay       *float64 `json:"consumption_per_patient_day" yaml:"consumption_per_patient_day"`
	Estimated2025YearlyPatientDays *float64 `json:"estimated_2025_yearly_patient_days" yaml:"estimated_2025_yearly_patient_days"`
	AmountPerYearlyPatientDays     *float64 `json:"amount_per_yearly_patient_days" yaml:"amount_per_yearly_patient_days"`
	InflationRate                  *float64 `json:"inflation_rate" yaml:"inflation_rate"`
	InflationAmount                *float64 `json:"inflation_amount" yaml:"inflation_amount"`
	TotalAmount                    *float64 `json:"total_amount" yaml:"total_amount"`
}

// TotalExpenseRecord is the single summary row of the total-expenses table.
type TotalExpenseRecord struct {
	FiveMonthConsumption *float64 `json:"five_month_consumption" yaml:"five_month_consumption"`
	YearlyConsumption    *float64 `json:"yearly_consumption" yaml:"yearly_consumption"`
	InflationRate        *float64 `json:"inflation_rate" yaml:"inflation_rate"`
	InflationAmount      *float64 `json:"inflation_amount" yaml:"inflation_amount"`
	TotalAmount          *float64 `json:"total_amount" yaml:"total_amount"`
}

// CanonicalRecord is the normalized extraction result for one worksheet.
// When NeedsExternalExtraction is set the record carries RawText only and
// must be completed by a remote extractor before grading.
type CanonicalRecord struct {
	StudentName             string                `json:"student_name" yaml:"student_name"`
	Department              string                `json:"department" yaml:"department"`
	FixedExpenses           []FixedExpenseItem    `json:"fixed_expenses" yaml:"fixed_expenses"`
	VariableExpenses        []VariableExpenseItem `json:"variable_expenses" yaml:"variable_expenses"`
	TotalExpenses           TotalExpenseRecord    `json:"total_expenses" yaml:"total_expenses"`
	PatientDaysInitial      *float64              `json:"patient_days_initial" yaml:"patient_days_initial"`
	RawText                 string                `json:"raw_text,omitempty" yaml:"raw_text,omitempty"`
	NeedsExternalExtraction bool                  `json:"needs_external_extraction,omitempty" yaml:"needs_external_extraction,omitempty"`
}

// HasGradableData reports whether at least one expense line item was extracted.
func (r *CanonicalRecord) HasGradableData() bool {
	return len(r.FixedExpenses) > 0 || len(r.VariableExpenses) > 0
}

// ValidationResult is the outcome of checking one derived field.
type ValidationResult struct {
	Correct  bool     `json:"correct" yaml:"correct"`
	Status   string   `json:"status" yaml:"status"`
	Expected float64  `json:"expected" yaml:"expected"`
	Actual   *float64 `json:"actual" yaml:"actual"`
}

// ItemResult groups the validation results of one expense line item.
type ItemResult struct {
	Description string                      `json:"description" yaml:"description"`
	Validations map[string]ValidationResult `json:"validations" yaml:"validations"`
}

// ScoreReport is the graded outcome for one worksheet.
type ScoreReport struct {
	StudentName             string                      `json:"student_name" yaml:"student_name"`
	Department              string                      `json:"department" yaml:"department"`
	FixedExpensesResults    []ItemResult                `json:"fixed_expenses_results" yaml:"fixed_expenses_results"`
	VariableExpensesResults []ItemResult                `json:"variable_expenses_results" yaml:"variable_expenses_results"`
	TotalExpensesResults    map[string]ValidationResult `json:"total_expenses_results" yaml:"total_expenses_results"`
	CorrectCount            int                         `json:"correct_count" yaml:"correct_count"`
	TotalCalculations       int                         `json:"total_calculations" yaml:"total_calculations"`
	Percentage              float64                     `json:"percentage" yaml:"percentage"`
	Summary                 string                      `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Recount recomputes CorrectCount, TotalCalculations and Percentage from the
// three result sections.
func (r *ScoreReport) Recount() {
	correct, total := 0, 0
	tally := func(results map[string]ValidationResult) {
		for _, v := range results {
			total++
			if v.Correct {
				correct++
			}
		}
	}
	for i := range r.FixedExpensesResults {
		tally(r.FixedExpensesResults[i].Validations)
	}
	for i := range r.VariableExpensesResults {
		tally(r.VariableExpensesResults[i].Validations)
	}
	tally(r.TotalExpensesResults)

	r.CorrectCount = correct
	r.TotalCalculations = total
	r.Percentage = Percentage(correct, total)
}

// Percentage returns 100*correct/total, or 0 when total is 0.
func Percentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// GradingOptions are the two scalars the validator is configured with.
type GradingOptions struct {
	InflationRate float64 `json:"inflation_rate"`
	Tolerance     float64 `json:"tolerance"`
}

// DefaultGradingOptions returns inflation 5% and tolerance 0.5.
func DefaultGradingOptions() GradingOptions {
	return GradingOptions{InflationRate: DefaultInflationRate, Tolerance: DefaultTolerance}
}

// Validate checks the options are within the accepted ranges.
func (o GradingOptions) Validate() error {
	if !finite(o.InflationRate) {
		return fmt.Errorf("%w: inflation_rate must be a finite number, got %g", ErrInvalidGradingOptions, o.InflationRate)
	}
	if !finite(o.Tolerance) {
		return fmt.Errorf("%w: tolerance must be a finite number, got %g", ErrInvalidGradingOptions, o.Tolerance)
	}
	if o.InflationRate < 0 || o.InflationRate > MaxInflationRate {
		return fmt.Errorf("%w: inflation_rate must be between 0 and %.0f, got %g", ErrInvalidGradingOptions, MaxInflationRate, o.InflationRate)
	}
	if o.Tolerance < 0 || o.Tolerance > MaxTolerance {
		return fmt.Errorf("%w: tolerance must be between 0 and %.1f, got %g", ErrInvalidGradingOptions, MaxTolerance, o.Tolerance)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
