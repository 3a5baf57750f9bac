package validator

import (
	"fmt"
	"math"

	"budgetgrader/internal/domain"
)

const (
	StatusCorrect = "Correct"
	StatusMissing = "Missing value"
)

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func fmtf(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// IncorrectStatus formats the status of a value outside tolerance.
func IncorrectStatus(diff float64) string {
	return "Incorrect (off by " + fmtf(diff) + ")"
}

// Compare checks a submitted value against the recomputed one.
// A nil actual yields "Missing value".
func Compare(actual *float64, expected, tolerance float64) domain.ValidationResult {
	if actual == nil {
		return domain.ValidationResult{
			Correct:  false,
			Status:   StatusMissing,
			Expected: Round2(expected),
		}
	}

	diff := math.Abs(*actual - expected)
	correct := diff <= tolerance
	status := StatusCorrect
	if !correct {
		status = IncorrectStatus(diff)
	}
	rounded := Round2(*actual)
	return domain.ValidationResult{
		Correct:  correct,
		Status:   status,
		Expected: Round2(expected),
		Actual:   &rounded,
	}
}
