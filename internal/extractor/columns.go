package extractor

import (
	"strings"
	"unicode/utf8"

	"budgetgrader/internal/domain"
)

// ColumnMap maps a canonical field name to its column index.
type ColumnMap map[string]int

// headerRule assigns a header to a field when match returns true.
// col is the header's index and n the header count.
type headerRule struct {
	field string
	match func(h string, col, n int) bool
}

func patientWord(h string) bool { return containsAny(h, "pt", "patient") }

func inflationRate(h string, _, _ int) bool {
	return strings.Contains(h, "inflation") && containsAny(h, "rate", "%")
}

// Rules are evaluated top to bottom and the first match claims the header.
// The 2025/estimate rule precedes the 2024 rule.
var fixedRules = []headerRule{
	{domain.FieldDescription, func(h string, _, _ int) bool {
		return containsAny(h, "description", "expense", "item")
	}},
	{domain.FieldFiveMonthConsumption, func(h string, _, _ int) bool {
		return containsAll(h, "5", "month")
	}},
	{domain.FieldMonthlyConsumption, func(h string, _, _ int) bool {
		return strings.Contains(h, "monthly") && !containsAny(h, "2024", "2025", "year")
	}},
	{domain.FieldEstimated2025Consumption, func(h string, _, _ int) bool {
		return containsAny(h, "2025", "estimate")
	}},
	{domain.FieldYear2024Consumption, func(h string, _, _ int) bool {
		return strings.Contains(h, "2024")
	}},
	{domain.FieldInflationRate, inflationRate},
	{domain.FieldInflationAmount, func(h string, _, _ int) bool {
		return strings.Contains(h, "inflation") && containsAny(h, "amount", "$", "dollar")
	}},
}

var variableRules = []headerRule{
	{domain.FieldDescription, func(h string, _, _ int) bool {
		return containsAny(h, "description", "item") && !containsAny(h, "consumption", "amount", "day")
	}},
	{domain.FieldDescription, func(h string, _, _ int) bool {
		return strings.Contains(h, "expense") && utf8.RuneCountInString(h) < 15 && !containsAny(h, "consumption", "cons.", "amount", "day")
	}},
	{domain.FieldFiveMonthConsumption, func(h string, _, _ int) bool {
		return containsAny(h, "5-month", "5m") && containsAny(h, "consumption", "cons")
	}},
	{domain.FieldFiveMonthPatientDays, func(h string, _, _ int) bool {
		return containsAny(h, "5-month", "5m") && patientWord(h) && strings.Contains(h, "day")
	}},
	{domain.FieldConsumptionPerPatientDay, func(h string, _, _ int) bool {
		return containsAny(h, "consumption", "cons") && containsAll(h, "per", "day") && patientWord(h)
	}},
	{domain.FieldEstimated2025YearlyPatientDays, func(h string, _, _ int) bool {
		return containsAny(h, "2025", "estimated", "yearly") && patientWord(h) &&
			strings.Contains(h, "day") && !strings.Contains(h, "amount")
	}},
	{domain.FieldAmountPerYearlyPatientDays, func(h string, _, _ int) bool {
		return containsAny(h, "yearly", "per") && strings.Contains(h, "amount")
	}},
	{domain.FieldInflationRate, inflationRate},
	{domain.FieldInflationAmount, func(h string, _, _ int) bool {
		return strings.Contains(h, "inflation") && containsAny(h, "amount", "$", "dollar")
	}},
	{domain.FieldTotalAmount, func(h string, _, _ int) bool {
		return strings.Contains(h, "total") && containsAny(h, "amount", "2025")
	}},
}

var totalRules = []headerRule{
	{domain.FieldFiveMonthConsumption, func(h string, col, _ int) bool {
		return strings.Contains(h, "5-month") || (containsAll(h, "5", "month") && col < 3)
	}},
	{domain.FieldYearlyConsumption, func(h string, _, _ int) bool {
		return strings.Contains(h, "yearly") && containsAny(h, "consumption", "total")
	}},
	{domain.FieldInflationRate, inflationRate},
	{domain.FieldInflationAmount, func(h string, _, _ int) bool {
		return strings.Contains(h, "inflation") && containsAny(h, "amount", "$", "dollar")
	}},
	{domain.FieldTotalAmount, func(h string, col, n int) bool {
		return (strings.Contains(h, "total") && containsAny(h, "2025", "amount")) ||
			(col == n-1 && strings.Contains(h, "total"))
	}},
}

func rulesFor(kind TableKind) []headerRule {
	switch kind {
	case TableFixed:
		return fixedRules
	case TableVariable:
		return variableRules
	case TableTotal:
		return totalRules
	default:
		return nil
	}
}

// MapColumns assigns header columns to canonical fields for a table kind.
// Headers are matched case-insensitively and each header maps to at most one
// field. When several headers map to the same field the rightmost one wins.
func MapColumns(kind TableKind, headers []string) ColumnMap {
	rules := rulesFor(kind)
	cols := make(ColumnMap)
	for i, raw := range headers {
		h := normalizeHeader(raw)
		for _, r := range rules {
			if r.match(h, i, len(headers)) {
				cols[r.field] = i
				break
			}
		}
	}
	return cols
}
