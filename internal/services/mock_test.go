package services

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jchen-labs/media-summary/internal/logger"
)

func TestMockTranscribe(t *testing.T) {
	svc := NewMockService(logger.New("error"))

	res := svc.Transcribe(context.Background(), "/tmp/chunk_000.mp3", "zh-TW", "mock-model")
	if res.FailureReason != "" {
		t.Fatalf("unexpected failure: %s", res.FailureReason)
	}
	if strings.TrimSpace(res.RawText) == "" {
		t.Error("mock transcription is empty")
	}
	if res.Language != "zh-TW" || res.Model != "mock-model" {
		t.Errorf("metadata not echoed: %+v", res)
	}
}

func TestMockCorrectAppliesSubstitutionsAndPunctuation(t *testing.T) {
	svc := NewMockService(logger.New("error"))

	res := svc.Correct(context.Background(), "我們的教会一起祷告", "zh-TW", "mock-model")
	if res.FailureReason != "" {
		t.Fatalf("unexpected failure: %s", res.FailureReason)
	}
	if strings.Contains(res.CorrectedText, "教会") || strings.Contains(res.CorrectedText, "祷告") {
		t.Errorf("simplified variants survived correction: %q", res.CorrectedText)
	}
	if !strings.HasSuffix(res.CorrectedText, "。") {
		t.Errorf("corrected text lacks terminal punctuation: %q", res.CorrectedText)
	}
	if res.OriginalText != "我們的教会一起祷告" {
		t.Errorf("original text not preserved: %q", res.OriginalText)
	}
}

func TestMockCorrectKeepsExistingTerminal(t *testing.T) {
	svc := NewMockService(logger.New("error"))

	res := svc.Correct(context.Background(), "已經結束了。", "zh-TW", "mock-model")
	if strings.HasSuffix(res.CorrectedText, "。。") {
		t.Errorf("terminal punctuation doubled: %q", res.CorrectedText)
	}
}

func TestMockSummarizeWordLimit(t *testing.T) {
	svc := NewMockService(logger.New("error"))

	res := svc.Summarize(context.Background(), "source text", "", 20, "mock-model")
	if res.FailureReason != "" {
		t.Fatalf("unexpected failure: %s", res.FailureReason)
	}
	// Truncated output is at most the limit plus the ellipsis.
	if n := utf8.RuneCountInString(res.Summary); n > 23 {
		t.Errorf("summary has %d runes, want <= 23", n)
	}
	if res.WordCount != utf8.RuneCountInString(res.Summary) {
		t.Errorf("word count %d does not match rune count %d", res.WordCount, utf8.RuneCountInString(res.Summary))
	}
}

func TestMockSummarizeNoLimit(t *testing.T) {
	svc := NewMockService(logger.New("error"))

	res := svc.Summarize(context.Background(), "source text", "注重技術細節", 0, "mock-model")
	if strings.TrimSpace(res.Summary) == "" {
		t.Error("summary is empty")
	}
	if res.CustomInstructions != "注重技術細節" {
		t.Errorf("instructions not echoed: %q", res.CustomInstructions)
	}
}
