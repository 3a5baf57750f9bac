package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	numberNoise  = regexp.MustCompile(`[$,\s%]`)
	textNoise    = regexp.MustCompile(`[^\p{L}\p{N}_ \-/(),.]`)
	summaryLabel = regexp.MustCompile(`(?i)\b(total|subtotal|sum)\b`)
)

// ParseNumber coerces a worksheet cell to a number. It returns nil for empty
// cells, the literal "none", and anything that does not parse. Inline formulas
// such as "100 x 12= 1,200$" yield the value after the last '='.
func ParseNumber(cell string) *float64 {
	s := strings.TrimSpace(cell)
	if s == "" || strings.EqualFold(s, "none") {
		return nil
	}
	if i := strings.LastIndex(s, "="); i >= 0 {
		s = s[i+1:]
	}
	s = numberNoise.ReplaceAllString(s, "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// CleanText collapses runs of whitespace and drops characters other than
// letters, digits, spaces and _-/(),.
func CleanText(s string) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(textNoise.ReplaceAllString(collapsed, ""))
}

// IsSummaryLabel reports whether a description names a total, subtotal or sum row.
func IsSummaryLabel(description string) bool {
	return summaryLabel.MatchString(description)
}
