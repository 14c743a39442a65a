package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jchen-labs/media-summary/internal/models"
)

// Run executes the flow for a validated input and always returns a
// terminal job record. Stage failures, including panics, land in the
// record's ErrorMessage with Status failed; they are never re-raised.
func (r *Runner) Run(ctx context.Context, input *models.PipelineInput) *models.PipelineResult {
	now := time.Now()
	createdAt := input.SubmittedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	rec := &models.PipelineResult{
		JobID:      input.JobID,
		UserID:     input.UserID,
		Status:     models.StatusRunning,
		EntryPoint: input.EntryPoint,
		CreatedAt:  createdAt,
		StartedAt:  &now,
		Input:      input,
	}
	r.save(ctx, rec)
	r.logger.Info(ctx, "job %s: started (%s)", input.JobID, input.EntryPoint)

	err := r.dispatch(ctx, rec, input)

	completed := time.Now()
	rec.CompletedAt = &completed
	rec.ProcessingDuration = completed.Sub(*rec.StartedAt).Seconds()

	if err != nil {
		rec.Status = models.StatusFailed
		rec.ErrorMessage = err.Error()
		rec.CreditsConsumed = 0
		r.logger.Error(ctx, "job %s: failed after %.1fs: %v", input.JobID, rec.ProcessingDuration, err)
	} else {
		rec.Status = models.StatusCompleted
		r.logger.Info(ctx, "job %s: completed in %.1fs (%d credits)", input.JobID, rec.ProcessingDuration, rec.CreditsConsumed)
	}

	r.save(ctx, rec)
	return rec
}

func (r *Runner) dispatch(ctx context.Context, rec *models.PipelineResult, input *models.PipelineInput) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("internal error: %v", p)
		}
	}()

	switch input.EntryPoint {
	case models.EntryYouTube:
		return r.runYouTube(ctx, rec, input)
	case models.EntryAudioFile:
		return r.runAudioFile(ctx, rec, input)
	case models.EntryText:
		return r.runText(ctx, rec, input)
	}
	return fmt.Errorf("unsupported entry point: %q", input.EntryPoint)
}

func (r *Runner) runYouTube(ctx context.Context, rec *models.PipelineResult, input *models.PipelineInput) error {
	audio, err := r.acquireAudio(ctx, input)
	if err != nil {
		return fmt.Errorf("download stage: %w", err)
	}
	return r.processAudio(ctx, rec, input, audio)
}

func (r *Runner) runAudioFile(ctx context.Context, rec *models.PipelineResult, input *models.PipelineInput) error {
	audio, err := r.prober.Probe(ctx, input.AudioFilePath)
	if err != nil {
		return fmt.Errorf("audio validation stage: %w", err)
	}
	return r.processAudio(ctx, rec, input, audio)
}

// processAudio is the shared tail for audio-bearing entry points:
// chunk, transcribe, correct, merge, summarize, validate.
func (r *Runner) processAudio(ctx context.Context, rec *models.PipelineResult, input *models.PipelineInput, audio *models.AudioResult) error {
	chunkDir := r.art.ChunkFolder(audio, input.ChunkSizeMinutes)
	// Chunk files are scratch space and are removed on every exit path;
	// the downloaded audio itself stays cached.
	defer func() {
		if err := r.art.RemoveChunks(audio, input.ChunkSizeMinutes); err != nil {
			r.logger.Warn(ctx, "job %s: remove chunk dir: %v", input.JobID, err)
		}
	}()

	// Chunking is local and deterministic; a failure here is not retried.
	chunks, err := r.chunker.Split(ctx, audio, input.ChunkSizeMinutes, chunkDir)
	if err != nil {
		return fmt.Errorf("chunking stage: %w", err)
	}
	rec.AudioChunks = chunks
	r.save(ctx, rec)

	transcriptions := r.transcribeAll(ctx, input, chunks)
	rec.Transcriptions = transcriptions
	r.save(ctx, rec)
	if failed := failedTranscriptionIndexes(transcriptions); len(failed) > 0 {
		return fmt.Errorf("transcription stage: chunks %v failed", failed)
	}

	corrections := r.correctAll(ctx, input, transcriptions)
	rec.Corrections = corrections
	r.save(ctx, rec)
	if failed := failedCorrectionIndexes(corrections); len(failed) > 0 {
		return fmt.Errorf("correction stage: chunks %v failed", failed)
	}

	merged := MergeCorrections(corrections)
	if err := r.finishWithSummary(ctx, rec, input, merged); err != nil {
		return err
	}

	rec.CreditsConsumed = audioCredits(audio.Duration)
	return nil
}

func (r *Runner) runText(ctx context.Context, rec *models.PipelineResult, input *models.PipelineInput) error {
	text := input.TextContent
	if wantsTraditionalChinese(input.TargetLanguage) {
		text = r.normalizer.Normalize(text)
	}

	// Text jobs skip the audio stages entirely: the chunk lists on the
	// record stay empty and the text goes straight through correction.
	correction := r.correctChunk(ctx, input, models.TranscriptionResult{
		RawText:  text,
		Language: input.TargetLanguage,
		Model:    "none",
	})
	if correction.FailureReason != "" {
		return fmt.Errorf("correction stage: %s", correction.FailureReason)
	}

	merged := MergeCorrections([]models.CorrectionResult{correction})
	if err := r.finishWithSummary(ctx, rec, input, merged); err != nil {
		return err
	}

	rec.CreditsConsumed = 1
	return nil
}

func (r *Runner) finishWithSummary(ctx context.Context, rec *models.PipelineResult, input *models.PipelineInput, merged string) error {
	if merged == "" {
		return fmt.Errorf("merge stage: no usable text to summarize")
	}

	summary, err := r.summarize(ctx, input, merged)
	if err != nil {
		return fmt.Errorf("summarization stage: %w", err)
	}

	// The quality gate is advisory: issues are logged and the job still
	// completes.
	for _, issue := range ValidateSummary(summary, merged) {
		r.logger.Warn(ctx, "job %s: summary validation: %s", input.JobID, issue)
	}

	rec.Summary = summary
	return nil
}

// audioCredits charges one credit per started hour of audio, minimum one.
func audioCredits(durationSeconds float64) int {
	credits := int(math.Ceil(durationSeconds / 3600))
	if credits < 1 {
		credits = 1
	}
	return credits
}
