package pipeline

import (
	"sort"
	"strings"

	"github.com/jchen-labs/media-summary/internal/models"
)

var terminalPunctuation = []string{"。", "！", "？", "…", ".", "!", "?"}

func endsWithTerminal(s string) bool {
	for _, p := range terminalPunctuation {
		if strings.HasSuffix(s, p) {
			return true
		}
	}
	return false
}

// MergeCorrections joins corrected chunk texts into a single transcript.
// Chunks are ordered by Index regardless of slice order, and each chunk
// contributes a sentence-terminated segment so boundaries never fuse two
// sentences together.
func MergeCorrections(corrections []models.CorrectionResult) string {
	sorted := make([]models.CorrectionResult, len(corrections))
	copy(sorted, corrections)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	segments := make([]string, 0, len(sorted))
	for _, c := range sorted {
		text := strings.TrimSpace(c.CorrectedText)
		if text == "" {
			continue
		}
		if !endsWithTerminal(text) {
			text += "。"
		}
		segments = append(segments, text)
	}

	return strings.Join(segments, "\n\n")
}
