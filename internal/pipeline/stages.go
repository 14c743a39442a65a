package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/jchen-labs/media-summary/internal/models"
	"github.com/jchen-labs/media-summary/internal/registry"
)

// acquireAudio resolves the audio asset for a youtube job, cache first.
func (r *Runner) acquireAudio(ctx context.Context, input *models.PipelineInput) (*models.AudioResult, error) {
	key := r.art.Key(map[string]interface{}{
		"url":        input.YouTubeURL,
		"start_time": ptrParam(input.StartTime),
		"end_time":   ptrParam(input.EndTime),
		"quality":    r.cfg.YouTube.AudioQuality,
		"format":     r.cfg.YouTube.AudioFormat,
	})

	cached, err := r.art.GetAudio(key)
	if err != nil {
		r.logger.Warn(ctx, "job %s: read cached download: %v", input.JobID, err)
	}
	if cached != nil {
		if _, statErr := os.Stat(cached.FilePath); statErr == nil {
			r.logger.Info(ctx, "job %s: reusing cached download %s", input.JobID, key)
			return cached, nil
		}
		r.logger.Warn(ctx, "job %s: cached metadata without audio file, re-downloading", input.JobID)
	}

	dl := r.newDownloader(r.art.AudioFolder(key))
	audio, err := withRetry(ctx, r.logger, "download", func(ctx context.Context) (*models.AudioResult, error) {
		return dl.DownloadAudio(ctx, input.YouTubeURL, input.StartTime, input.EndTime)
	})
	if err != nil {
		return nil, err
	}

	maxSeconds := float64(r.cfg.YouTube.MaxDurationHours) * 3600
	if audio.OriginalDuration > maxSeconds {
		return nil, fmt.Errorf("video duration %.0fs exceeds the %dh limit", audio.OriginalDuration, r.cfg.YouTube.MaxDurationHours)
	}

	if err := r.art.SaveAudio(key, audio); err != nil {
		r.logger.Warn(ctx, "job %s: cache download metadata: %v", input.JobID, err)
	}
	return audio, nil
}

func ptrParam(p *float64) interface{} {
	if p == nil {
		return "none"
	}
	return *p
}

// transcribeAll fans chunk transcription out over the worker pool.
// Results come back indexed by chunk, so output order never depends on
// completion order.
func (r *Runner) transcribeAll(ctx context.Context, input *models.PipelineInput, chunks []models.AudioChunk) []models.TranscriptionResult {
	results := make([]models.TranscriptionResult, len(chunks))
	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup

	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk models.AudioChunk) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = r.transcribeChunk(ctx, input, chunk)
		}(i, chunk)
	}
	wg.Wait()

	return results
}

func (r *Runner) transcribeChunk(ctx context.Context, input *models.PipelineInput, chunk models.AudioChunk) models.TranscriptionResult {
	model := input.TranscriptionModel
	if model == "" {
		model = r.cfg.Pipeline.TranscriptionModel
	}

	res, err := r.tryTranscribe(ctx, chunk, input.TargetLanguage, model)
	if err != nil {
		secondary := registry.FallbackFor(registry.ProviderFor(model))
		fallback := registry.DefaultModel(secondary, registry.TaskTranscription)
		if fallback != "" && fallback != model {
			r.logger.Warn(ctx, "job %s: chunk %d: model %s exhausted, falling back to %s: %v",
				input.JobID, chunk.Index, model, fallback, err)
			res, err = r.tryTranscribe(ctx, chunk, input.TargetLanguage, fallback)
		}
	}
	if err != nil {
		return models.TranscriptionResult{
			ChunkID:       chunk.ChunkID,
			Index:         chunk.Index,
			Language:      input.TargetLanguage,
			Model:         model,
			FailureReason: err.Error(),
		}
	}

	res.ChunkID = chunk.ChunkID
	res.Index = chunk.Index
	if wantsTraditionalChinese(input.TargetLanguage) {
		res.RawText = r.normalizer.Normalize(res.RawText)
	}
	return *res
}

func (r *Runner) tryTranscribe(ctx context.Context, chunk models.AudioChunk, language, model string) (*models.TranscriptionResult, error) {
	op := fmt.Sprintf("transcribe chunk %d (%s)", chunk.Index, model)
	return withRetry(ctx, r.logger, op, func(ctx context.Context) (*models.TranscriptionResult, error) {
		svc := r.factory.ForModel(model)
		res := svc.Transcribe(ctx, chunk.FilePath, language, model)
		if res.FailureReason != "" {
			return nil, errors.New(res.FailureReason)
		}
		return res, nil
	})
}

// correctAll fans text correction out over the worker pool, one task per
// transcribed chunk.
func (r *Runner) correctAll(ctx context.Context, input *models.PipelineInput, transcriptions []models.TranscriptionResult) []models.CorrectionResult {
	results := make([]models.CorrectionResult, len(transcriptions))
	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup

	for i, tr := range transcriptions {
		wg.Add(1)
		go func(i int, tr models.TranscriptionResult) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = r.correctChunk(ctx, input, tr)
		}(i, tr)
	}
	wg.Wait()

	return results
}

func (r *Runner) correctChunk(ctx context.Context, input *models.PipelineInput, tr models.TranscriptionResult) models.CorrectionResult {
	model := input.CorrectionModel
	if model == "" {
		model = r.cfg.Pipeline.CorrectionModel
	}

	op := fmt.Sprintf("correct chunk %d (%s)", tr.Index, model)
	res, err := withRetry(ctx, r.logger, op, func(ctx context.Context) (*models.CorrectionResult, error) {
		svc := r.factory.ForModel(model)
		res := svc.Correct(ctx, tr.RawText, input.TargetLanguage, model)
		if res.FailureReason != "" {
			return nil, errors.New(res.FailureReason)
		}
		return res, nil
	})
	if err != nil {
		return models.CorrectionResult{
			ChunkID:       tr.ChunkID,
			Index:         tr.Index,
			OriginalText:  tr.RawText,
			Language:      input.TargetLanguage,
			Model:         model,
			FailureReason: err.Error(),
		}
	}

	res.ChunkID = tr.ChunkID
	res.Index = tr.Index
	if wantsTraditionalChinese(input.TargetLanguage) {
		res.CorrectedText = r.normalizer.Normalize(res.CorrectedText)
	}
	return *res
}

// summarize produces the final summary, converting in-band failures into
// a hard error once retries are exhausted.
func (r *Runner) summarize(ctx context.Context, input *models.PipelineInput, text string) (*models.SummaryResult, error) {
	model := input.SummarizationModel
	if model == "" {
		model = r.cfg.Pipeline.SummarizationModel
	}

	return withRetry(ctx, r.logger, fmt.Sprintf("summarize (%s)", model), func(ctx context.Context) (*models.SummaryResult, error) {
		svc := r.factory.ForModel(model)
		res := svc.Summarize(ctx, text, input.SummaryInstructions, input.SummaryWordLimit, model)
		if res.FailureReason != "" {
			return nil, errors.New(res.FailureReason)
		}
		return res, nil
	})
}

func failedTranscriptionIndexes(results []models.TranscriptionResult) []int {
	var out []int
	for _, res := range results {
		if res.FailureReason != "" {
			out = append(out, res.Index)
		}
	}
	return out
}

func failedCorrectionIndexes(results []models.CorrectionResult) []int {
	var out []int
	for _, res := range results {
		if res.FailureReason != "" {
			out = append(out, res.Index)
		}
	}
	return out
}
