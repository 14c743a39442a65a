package pipeline

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jchen-labs/media-summary/internal/models"
)

const (
	minSummaryRunes    = 10
	wordCountTolerance = 5
)

// CountWords counts CJK characters individually and latin-script words
// by whitespace separation, matching how the summary models report their
// own word counts for mixed-language text.
func CountWords(s string) int {
	cjk := 0
	var latin strings.Builder
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r):
			cjk++
			latin.WriteRune(' ')
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			latin.WriteRune(r)
		default:
			latin.WriteRune(' ')
		}
	}
	return cjk + len(strings.Fields(latin.String()))
}

// ValidateSummary runs the soft quality gate. Issues never fail the job;
// the flow logs them as warnings and completes normally.
func ValidateSummary(summary *models.SummaryResult, sourceText string) []string {
	var issues []string

	text := strings.TrimSpace(summary.Summary)
	if utf8.RuneCountInString(text) < minSummaryRunes {
		issues = append(issues, fmt.Sprintf("summary is suspiciously short (%d chars)", utf8.RuneCountInString(text)))
	}
	if text != "" && text == strings.TrimSpace(sourceText) {
		issues = append(issues, "summary is identical to the source text")
	}
	if summary.WordCount > 0 {
		actual := CountWords(text)
		diff := summary.WordCount - actual
		if diff < 0 {
			diff = -diff
		}
		if diff > wordCountTolerance {
			issues = append(issues, fmt.Sprintf("reported word count %d differs from actual %d", summary.WordCount, actual))
		}
	}

	return issues
}
