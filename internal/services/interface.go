// Package services holds the capability implementations the pipeline
// calls out to: transcription, correction and summarization providers,
// plus the YouTube audio downloader.
package services

import (
	"context"

	"github.com/jchen-labs/media-summary/internal/models"
)

// Capability is the contract every provider implements. Calls never
// return an error for ordinary failure; they encode it in the result's
// FailureReason field with empty output (failure-as-data). The stage-task
// layer converts that field into a hard error where appropriate.
type Capability interface {
	Transcribe(ctx context.Context, audioPath, language, model string) *models.TranscriptionResult
	Correct(ctx context.Context, text, targetLanguage, model string) *models.CorrectionResult
	Summarize(ctx context.Context, text, instructions string, wordLimit int, model string) *models.SummaryResult
}

// Downloader fetches audio for a source URL with an optional clip range.
type Downloader interface {
	DownloadAudio(ctx context.Context, url string, startTime, endTime *float64) (*models.AudioResult, error)
}

// AudioProber inspects a local audio file and reports its metadata.
type AudioProber interface {
	Probe(ctx context.Context, path string) (*models.AudioResult, error)
}
