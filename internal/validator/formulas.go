package validator

import (
	"budgetgrader/internal/domain"
)

// formula recomputes one derived field. It is checked only when applies
// reports that every input and the submitted value are present.
type formula[T any] struct {
	field    string
	applies  func(*T) bool
	expected func(item *T, rate float64) float64
	actual   func(*T) *float64
}

func present(vals ...*float64) bool {
	for _, v := range vals {
		if v == nil {
			return false
		}
	}
	return true
}

func pct(base, rate float64) float64 {
	return base * rate / 100
}

// rateOr returns the submitted rate when present, else the configured one.
func rateOr(submitted *float64, fallback float64) float64 {
	if submitted != nil {
		return *submitted
	}
	return fallback
}

// run evaluates the formulas in order and returns the results keyed by field.
func run[T any](formulas []formula[T], item *T, rate, tolerance float64) map[string]domain.ValidationResult {
	results := make(map[string]domain.ValidationResult, len(formulas))
	for _, f := range formulas {
		if !f.applies(item) {
			continue
		}
		results[f.field] = Compare(f.actual(item), f.expected(item, rate), tolerance)
	}
	return results
}

type fixedItem = domain.FixedExpenseItem

// fixedFormulas returns the fixed-expense checks in display order.
func fixedFormulas() []formula[fixedItem] {
	return []formula[fixedItem]{
		{
			field:    domain.FieldMonthlyConsumption,
			applies:  func(i *fixedItem) bool { return present(i.FiveMonthConsumption, i.MonthlyConsumption) },
			expected: func(i *fixedItem, _ float64) float64 { return *i.FiveMonthConsumption / 5 },
			actual:   func(i *fixedItem) *float64 { return i.MonthlyConsumption },
		},
		{
			field:    domain.FieldYear2024Consumption,
			applies:  func(i *fixedItem) bool { return present(i.MonthlyConsumption, i.Year2024Consumption) },
			expected: func(i *fixedItem, _ float64) float64 { return *i.MonthlyConsumption * 12 },
			actual:   func(i *fixedItem) *float64 { return i.Year2024Consumption },
		},
		{
			field:    domain.FieldInflationAmount,
			applies:  func(i *fixedItem) bool { return present(i.Year2024Consumption, i.InflationAmount) },
			expected: func(i *fixedItem, rate float64) float64 { return pct(*i.Year2024Consumption, rate) },
			actual:   func(i *fixedItem) *float64 { return i.InflationAmount },
		},
		{
			field: domain.FieldEstimated2025Consumption,
			applies: func(i *fixedItem) bool {
				return present(i.Year2024Consumption, i.InflationAmount, i.Estimated2025Consumption)
			},
			expected: func(i *fixedItem, _ float64) float64 { return *i.Year2024Consumption + *i.InflationAmount },
			actual:   func(i *fixedItem) *float64 { return i.Estimated2025Consumption },
		},
	}
}

type variableItem = domain.VariableExpenseItem

// variableFormulas returns the variable-expense checks in display order.
func variableFormulas() []formula[variableItem] {
	return []formula[variableItem]{
		{
			field: domain.FieldEstimated2025YearlyPatientDays,
			applies: func(i *variableItem) bool {
				return present(i.FiveMonthPatientDays, i.Estimated2025YearlyPatientDays)
			},
			expected: func(i *variableItem, _ float64) float64 { return *i.FiveMonthPatientDays / 5 * 12 },
			actual:   func(i *variableItem) *float64 { return i.Estimated2025YearlyPatientDays },
		},
		{
			// undefined for zero patient days
			field: domain.FieldConsumptionPerPatientDay,
			applies: func(i *variableItem) bool {
				return present(i.FiveMonthConsumption, i.FiveMonthPatientDays, i.ConsumptionPerPatientDay) &&
					*i.FiveMonthPatientDays != 0
			},
			expected: func(i *variableItem, _ float64) float64 { return *i.FiveMonthConsumption / *i.FiveMonthPatientDays },
			actual:   func(i *variableItem) *float64 { return i.ConsumptionPerPatientDay },
		},
		{
			field: domain.FieldAmountPerYearlyPatientDays,
			applies: func(i *variableItem) bool {
				return present(i.ConsumptionPerPatientDay, i.Estimated2025YearlyPatientDays, i.AmountPerYearlyPatientDays)
			},
			expected: func(i *variableItem, _ float64) float64 {
				return *i.ConsumptionPerPatientDay * *i.Estimated2025YearlyPatientDays
			},
			actual: func(i *variableItem) *float64 { return i.AmountPerYearlyPatientDays },
		},
		{
			field:    domain.FieldInflationAmount,
			applies:  func(i *variableItem) bool { return present(i.AmountPerYearlyPatientDays, i.InflationAmount) },
			expected: func(i *variableItem, rate float64) float64 { return pct(*i.AmountPerYearlyPatientDays, rate) },
			actual:   func(i *variableItem) *float64 { return i.InflationAmount },
		},
		{
			field: domain.FieldTotalAmount,
			applies: func(i *variableItem) bool {
				return present(i.AmountPerYearlyPatientDays, i.InflationAmount, i.TotalAmount)
			},
			expected: func(i *variableItem, _ float64) float64 { return *i.AmountPerYearlyPatientDays + *i.InflationAmount },
			actual:   func(i *variableItem) *float64 { return i.TotalAmount },
		},
	}
}

type record = domain.CanonicalRecord

func sumOf[T any](items []T, field func(*T) *float64) float64 {
	var sum float64
	for i := range items {
		if v := field(&items[i]); v != nil {
			sum += *v
		}
	}
	return sum
}

// totalFormulas returns the totals-record checks. The five-month and yearly
// expectations are sums over the item lists; inflation and grand total chain
// off the submitted yearly figure.
func totalFormulas() []formula[record] {
	return []formula[record]{
		{
			field:   domain.FieldFiveMonthConsumption,
			applies: func(r *record) bool { return present(r.TotalExpenses.FiveMonthConsumption) },
			expected: func(r *record, _ float64) float64 {
				return sumOf(r.FixedExpenses, func(i *fixedItem) *float64 { return i.FiveMonthConsumption }) +
					sumOf(r.VariableExpenses, func(i *variableItem) *float64 { return i.FiveMonthConsumption })
			},
			actual: func(r *record) *float64 { return r.TotalExpenses.FiveMonthConsumption },
		},
		{
			field:   domain.FieldYearlyConsumption,
			applies: func(r *record) bool { return present(r.TotalExpenses.YearlyConsumption) },
			expected: func(r *record, _ float64) float64 {
				return sumOf(r.FixedExpenses, func(i *fixedItem) *float64 { return i.Year2024Consumption }) +
					sumOf(r.VariableExpenses, func(i *variableItem) *float64 { return i.AmountPerYearlyPatientDays })
			},
			actual: func(r *record) *float64 { return r.TotalExpenses.YearlyConsumption },
		},
		{
			field: domain.FieldInflationAmount,
			applies: func(r *record) bool {
				return present(r.TotalExpenses.YearlyConsumption, r.TotalExpenses.InflationAmount)
			},
			expected: func(r *record, rate float64) float64 { return pct(*r.TotalExpenses.YearlyConsumption, rate) },
			actual:   func(r *record) *float64 { return r.TotalExpenses.InflationAmount },
		},
		{
			field: domain.FieldTotalAmount,
			applies: func(r *record) bool {
				t := &r.TotalExpenses
				return present(t.YearlyConsumption, t.InflationAmount, t.TotalAmount)
			},
			expected: func(r *record, _ float64) float64 {
				return *r.TotalExpenses.YearlyConsumption + *r.TotalExpenses.InflationAmount
			},
			actual: func(r *record) *float64 { return r.TotalExpenses.TotalAmount },
		},
	}
}
