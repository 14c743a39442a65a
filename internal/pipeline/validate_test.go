package pipeline

import (
	"testing"

	"github.com/jchen-labs/media-summary/internal/models"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"hello world", 2},
		{"這是中文", 4},
		// Mixed: four CJK characters plus two latin words.
		{"這是中文 with english", 6},
		{"一、二。三！", 3},
	}
	for _, tt := range tests {
		if got := CountWords(tt.in); got != tt.want {
			t.Errorf("CountWords(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestValidateSummaryPasses(t *testing.T) {
	summary := &models.SummaryResult{
		Summary:   "這段內容探討了信仰的核心價值。",
		WordCount: CountWords("這段內容探討了信仰的核心價值。"),
	}
	if issues := ValidateSummary(summary, "完全不同的原始文本，很長很長。"); len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}
}

func TestValidateSummaryTooShort(t *testing.T) {
	summary := &models.SummaryResult{Summary: "太短"}
	issues := ValidateSummary(summary, "source")
	if len(issues) == 0 {
		t.Fatal("expected a short-summary issue")
	}
}

func TestValidateSummaryIdenticalToSource(t *testing.T) {
	text := "這段文本足夠長，可以通過長度檢查。"
	summary := &models.SummaryResult{Summary: text}
	issues := ValidateSummary(summary, text)
	if len(issues) == 0 {
		t.Fatal("expected an identical-to-source issue")
	}
}

func TestValidateSummaryWordCountTolerance(t *testing.T) {
	text := "這段內容探討了信仰的核心價值。"
	actual := CountWords(text)

	within := &models.SummaryResult{Summary: text, WordCount: actual + 5}
	if issues := ValidateSummary(within, "other source"); len(issues) != 0 {
		t.Errorf("count within tolerance flagged: %v", issues)
	}

	outside := &models.SummaryResult{Summary: text, WordCount: actual + 6}
	if issues := ValidateSummary(outside, "other source"); len(issues) == 0 {
		t.Error("count outside tolerance not flagged")
	}
}

func TestValidateSummaryZeroReportedCountSkipsCheck(t *testing.T) {
	summary := &models.SummaryResult{Summary: "這段內容探討了信仰的核心價值。", WordCount: 0}
	if issues := ValidateSummary(summary, "other source"); len(issues) != 0 {
		t.Errorf("zero reported count flagged: %v", issues)
	}
}
