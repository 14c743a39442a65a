package pipeline

import (
	"strings"
	"testing"

	"github.com/jchen-labs/media-summary/internal/models"
)

func TestMergeOrdersByIndex(t *testing.T) {
	// Slice order deliberately shuffled relative to Index.
	corrections := []models.CorrectionResult{
		{Index: 2, CorrectedText: "第三段。"},
		{Index: 0, CorrectedText: "第一段。"},
		{Index: 1, CorrectedText: "第二段。"},
	}

	merged := MergeCorrections(corrections)
	want := "第一段。\n\n第二段。\n\n第三段。"
	if merged != want {
		t.Errorf("merged = %q, want %q", merged, want)
	}
}

func TestMergeAppendsTerminalPunctuation(t *testing.T) {
	corrections := []models.CorrectionResult{
		{Index: 0, CorrectedText: "沒有結尾的句子"},
		{Index: 1, CorrectedText: "有結尾的句子。"},
		{Index: 2, CorrectedText: "english sentence"},
	}

	merged := MergeCorrections(corrections)
	for i, segment := range strings.Split(merged, "\n\n") {
		if !endsWithTerminal(segment) {
			t.Errorf("segment %d lacks terminal punctuation: %q", i, segment)
		}
	}
	if strings.Contains(merged, "。。") {
		t.Errorf("punctuation doubled: %q", merged)
	}
}

func TestMergeSkipsEmptyChunks(t *testing.T) {
	corrections := []models.CorrectionResult{
		{Index: 0, CorrectedText: "第一段。"},
		{Index: 1, CorrectedText: "   "},
		{Index: 2, CorrectedText: "第三段。"},
	}

	merged := MergeCorrections(corrections)
	if strings.Count(merged, "\n\n") != 1 {
		t.Errorf("empty chunk produced a segment: %q", merged)
	}
}

func TestMergeEmptyInput(t *testing.T) {
	if merged := MergeCorrections(nil); merged != "" {
		t.Errorf("merged nil = %q, want empty", merged)
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	corrections := []models.CorrectionResult{
		{Index: 1, CorrectedText: "b。"},
		{Index: 0, CorrectedText: "a。"},
	}
	MergeCorrections(corrections)
	if corrections[0].Index != 1 {
		t.Error("input slice was reordered")
	}
}
