package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/jchen-labs/media-summary/internal/models"
)

const (
	docxFont     = "Noto Sans TC"
	docxBodySize = 12
)

var (
	reDocxHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reDocxBullet  = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
)

// WriteDocx renders the job's markdown report into a docx file and
// returns its path.
func WriteDocx(outputDir string, rec *models.PipelineResult) (string, error) {
	outputPath := filepath.Join(outputDir, rec.JobID+"_summary.docx")
	if err := BuildDocx(Title(rec), BuildMarkdown(rec), outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

// BuildDocx converts a markdown report to a styled docx document.
func BuildDocx(title, markdown, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create docx dir: %w", err)
	}

	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create docx document: %w", err)
	}

	addDocxRun(doc.AddParagraph(""), title, true, 16)
	doc.AddParagraph("")

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := reDocxHeading.FindStringSubmatch(trimmed); m != nil {
			addDocxRun(doc.AddParagraph(""), m[2], true, docxHeadingSize(len(m[1])))
			continue
		}
		if m := reDocxBullet.FindStringSubmatch(trimmed); m != nil {
			addDocxRun(doc.AddParagraph(""), "• "+m[1], false, docxBodySize)
			continue
		}

		addDocxRun(doc.AddParagraph(""), trimmed, false, docxBodySize)
	}

	if err := doc.SaveTo(outputPath); err != nil {
		return fmt.Errorf("save docx: %w", err)
	}
	return nil
}

func docxHeadingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 14
	default:
		return docxBodySize
	}
}

func addDocxRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "`", "")
	run := p.AddText(text).Font(docxFont).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
