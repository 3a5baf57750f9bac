package extractor

import (
	"regexp"
	"strings"

	"budgetgrader/internal/domain"
)

const maxDepartmentRunes = 100

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)(?:Student|Name|By|Author):\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)`),
	regexp.MustCompile(`(?m)^([A-Z][a-z]+\s+[A-Z][a-z]+)`),
	regexp.MustCompile(`(?m)([A-Z][a-z]+\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\s*\n`),
}

// Keyword order matters; the first keyword found in the text wins.
var departmentKeywords = []string{
	"Emergency Department", "ED", "ER", "Emergency Room",
	"Neonatal Intensive Care", "NICU", "ICU",
	"Pediatric", "Surgical", "Medical",
	"Nursing", "HSON", "Hariri School",
}

var departmentPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(departmentKeywords))
	for i, kw := range departmentKeywords {
		out[i] = regexp.MustCompile(`(?i)([^.]*\b` + regexp.QuoteMeta(kw) + `\b[^.]*)`)
	}
	return out
}()

// ExtractStudentName returns the first name-like match in text, or the default.
func ExtractStudentName(text string) string {
	for _, re := range namePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return domain.DefaultStudentName
}

// ExtractDepartment returns the sentence fragment around the first department
// keyword found in text, capped at 100 characters. Keywords match whole words
// only, so "ED" does not fire inside "Pediatric".
func ExtractDepartment(text string) string {
	for _, re := range departmentPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return truncateRunes(strings.TrimSpace(m[1]), maxDepartmentRunes)
		}
	}
	return domain.DefaultDepartment
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
