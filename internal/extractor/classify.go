package extractor

import (
	"strings"

	"budgetgrader/internal/domain"
)

// TableKind is the role a worksheet table plays in the budget.
type TableKind string

const (
	TableFixed        TableKind = "fixed_expenses"
	TableVariable     TableKind = "variable_expenses"
	TableTotal        TableKind = "total_expenses"
	TablePatientDays  TableKind = "patient_days_seed"
	TableUnrecognized TableKind = "unrecognized"
)

// maxTotalTableRows bounds the size of a totals table, header included.
const maxTotalTableRows = 3

// normalizeHeaders lower-cases and trims the header row.
func normalizeHeaders(table domain.RawTable) []string {
	if len(table) == 0 {
		return nil
	}
	headers := make([]string, len(table[0]))
	for i, h := range table[0] {
		headers[i] = normalizeHeader(h)
	}
	return headers
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func anyContains(headers []string, subs ...string) bool {
	for _, h := range headers {
		if containsAny(h, subs...) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// Classify decides which budget table a RawTable is. Checks run in a fixed
// order and the first match wins: fixed, variable, total, patient-days seed.
func Classify(table domain.RawTable) TableKind {
	if len(table) == 0 {
		return TableUnrecognized
	}
	headers := normalizeHeaders(table)

	switch {
	case anyContains(headers, "fixed") ||
		(anyContains(headers, "monthly") && anyContains(headers, "2024")):
		return TableFixed
	case anyContains(headers, "variable", "pt day", "patient day"):
		return TableVariable
	case anyContains(headers, "total") &&
		anyContains(headers, "yearly", "inflation") &&
		len(table) <= maxTotalTableRows:
		return TableTotal
	case tableMentions(table, "patient days"):
		return TablePatientDays
	default:
		return TableUnrecognized
	}
}

func tableMentions(table domain.RawTable, phrase string) bool {
	for _, row := range table {
		for _, cell := range row {
			if strings.Contains(strings.ToLower(cell), phrase) {
				return true
			}
		}
	}
	return false
}
