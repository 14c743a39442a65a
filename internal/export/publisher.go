package export

import (
	"context"
	"time"

	"github.com/jchen-labs/media-summary/internal/logger"
	"github.com/jchen-labs/media-summary/internal/models"
)

// Publisher writes the deliverables for a completed job. Every step is
// best effort: a failed docx render or Drive upload is logged and never
// turns a completed job into a failed one.
type Publisher struct {
	outputDir string
	writeDocx bool
	drive     *DriveUploader
	logger    logger.Logger
}

func NewPublisher(outputDir string, writeDocx bool, drive *DriveUploader, log logger.Logger) *Publisher {
	return &Publisher{outputDir: outputDir, writeDocx: writeDocx, drive: drive, logger: log}
}

// Publish renders the report, docx and Drive upload for a completed job.
func (p *Publisher) Publish(ctx context.Context, rec *models.PipelineResult) {
	if rec.Status != models.StatusCompleted {
		return
	}

	reportPath, err := WriteReport(p.outputDir, rec)
	if err != nil {
		p.logger.Error(ctx, "job %s: write report: %v", rec.JobID, err)
		return
	}
	p.logger.Info(ctx, "job %s: report written to %s", rec.JobID, reportPath)

	if p.writeDocx {
		docxPath, err := WriteDocx(p.outputDir, rec)
		if err != nil {
			p.logger.Warn(ctx, "job %s: write docx: %v", rec.JobID, err)
		} else {
			p.logger.Info(ctx, "job %s: docx written to %s", rec.JobID, docxPath)
		}
	}

	if p.drive != nil {
		p.uploadWithRetry(ctx, rec)
	}
}

func (p *Publisher) uploadWithRetry(ctx context.Context, rec *models.PipelineResult) {
	for attempt := 1; attempt <= 3; attempt++ {
		url, err := p.drive.Upload(rec)
		if err == nil {
			p.logger.Info(ctx, "job %s: uploaded to %s", rec.JobID, url)
			return
		}
		p.logger.Warn(ctx, "job %s: drive upload attempt %d/3 failed: %v", rec.JobID, attempt, err)
		if attempt < 3 {
			select {
			case <-time.After(time.Duration(attempt*attempt) * time.Second):
			case <-ctx.Done():
				return
			}
		}
	}
	p.logger.Error(ctx, "job %s: drive upload failed after 3 attempts, report kept locally", rec.JobID)
}
