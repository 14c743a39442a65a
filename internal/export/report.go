// Package export renders finished job records into deliverables: a
// markdown report, a docx document, and an optional Google Drive upload.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jchen-labs/media-summary/internal/models"
)

// Title derives a human-readable report title from the job input.
func Title(rec *models.PipelineResult) string {
	if rec.Input == nil {
		return "Summary " + rec.JobID
	}
	switch rec.Input.EntryPoint {
	case models.EntryYouTube:
		return rec.Input.YouTubeURL
	case models.EntryAudioFile:
		base := filepath.Base(rec.Input.AudioFilePath)
		return strings.TrimSuffix(base, filepath.Ext(base))
	case models.EntryText:
		return "Text Summary"
	}
	return "Summary " + rec.JobID
}

// Transcript joins the corrected chunk texts in chunk order.
func Transcript(rec *models.PipelineResult) string {
	corrections := make([]models.CorrectionResult, len(rec.Corrections))
	copy(corrections, rec.Corrections)
	sort.Slice(corrections, func(i, j int) bool { return corrections[i].Index < corrections[j].Index })

	var b strings.Builder
	for _, c := range corrections {
		text := strings.TrimSpace(c.CorrectedText)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}
	return b.String()
}

// BuildMarkdown renders the job record as a markdown report.
func BuildMarkdown(rec *models.PipelineResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", Title(rec))
	fmt.Fprintf(&b, "- Job: %s\n", rec.JobID)
	fmt.Fprintf(&b, "- Source: %s\n", rec.EntryPoint)
	if rec.CompletedAt != nil {
		fmt.Fprintf(&b, "- Completed: %s\n", rec.CompletedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "- Processing time: %.1fs\n", rec.ProcessingDuration)
	fmt.Fprintf(&b, "- Credits: %d\n", rec.CreditsConsumed)

	if rec.Summary != nil {
		fmt.Fprintf(&b, "\n## 摘要\n\n%s\n", strings.TrimSpace(rec.Summary.Summary))
		fmt.Fprintf(&b, "\n(%d 字, model: %s)\n", rec.Summary.WordCount, rec.Summary.Model)
	}

	if transcript := Transcript(rec); transcript != "" {
		fmt.Fprintf(&b, "\n## 逐字稿\n\n%s\n", transcript)
	}

	return b.String()
}

// WriteReport writes the markdown report and plain transcript into
// outputDir and returns the report path.
func WriteReport(outputDir string, rec *models.PipelineResult) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	reportPath := filepath.Join(outputDir, rec.JobID+"_summary.md")
	if err := os.WriteFile(reportPath, []byte(BuildMarkdown(rec)), 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	if transcript := Transcript(rec); transcript != "" {
		transcriptPath := filepath.Join(outputDir, rec.JobID+"_transcript.txt")
		if err := os.WriteFile(transcriptPath, []byte(transcript), 0644); err != nil {
			return "", fmt.Errorf("write transcript: %w", err)
		}
	}

	return reportPath, nil
}
