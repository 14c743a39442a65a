package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jchen-labs/media-summary/internal/logger"
	"github.com/jchen-labs/media-summary/internal/models"
	"github.com/jchen-labs/media-summary/pkg/executor"
)

// Chunker splits an audio asset into fixed-size slices written to
// destDir. Slice boundaries are accumulated offsets from zero, so the
// concatenation of all slices covers the whole asset exactly once.
type Chunker interface {
	Split(ctx context.Context, audio *models.AudioResult, chunkSizeMinutes int, destDir string) ([]models.AudioChunk, error)
}

type boundary struct {
	start, end float64
}

func chunkBoundaries(duration float64, chunkSizeMinutes int) []boundary {
	size := float64(chunkSizeMinutes) * 60
	var out []boundary
	for start := 0.0; start < duration; start += size {
		end := start + size
		if end > duration {
			end = duration
		}
		out = append(out, boundary{start: start, end: end})
	}
	return out
}

// FFmpegChunker slices audio with ffmpeg stream copy.
type FFmpegChunker struct {
	exec   executor.Executor
	logger logger.Logger
}

func NewFFmpegChunker(exec executor.Executor, log logger.Logger) *FFmpegChunker {
	return &FFmpegChunker{exec: exec, logger: log}
}

func (c *FFmpegChunker) Split(ctx context.Context, audio *models.AudioResult, chunkSizeMinutes int, destDir string) ([]models.AudioChunk, error) {
	if audio.Duration <= 0 {
		return nil, fmt.Errorf("cannot chunk audio with duration %g", audio.Duration)
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("create chunk dir: %w", err)
	}

	ext := filepath.Ext(audio.FilePath)
	bounds := chunkBoundaries(audio.Duration, chunkSizeMinutes)
	chunks := make([]models.AudioChunk, 0, len(bounds))

	for i, b := range bounds {
		outPath := filepath.Join(destDir, fmt.Sprintf("chunk_%03d%s", i, ext))
		_, err := c.exec.Execute(ctx, "ffmpeg",
			"-y",
			"-i", audio.FilePath,
			"-ss", fmt.Sprintf("%g", b.start),
			"-t", fmt.Sprintf("%g", b.end-b.start),
			"-acodec", "copy",
			outPath,
		)
		if err != nil {
			return nil, fmt.Errorf("ffmpeg slice %d: %w", i, err)
		}

		chunks = append(chunks, models.AudioChunk{
			ChunkID:   fmt.Sprintf("chunk_%03d", i),
			Index:     i,
			StartTime: b.start,
			EndTime:   b.end,
			Duration:  b.end - b.start,
			FilePath:  outPath,
		})
	}

	c.logger.Info(ctx, "split %.1fs of audio into %d chunks of %dmin", audio.Duration, len(chunks), chunkSizeMinutes)
	return chunks, nil
}

// MockChunker produces the same chunk records as FFmpegChunker but
// writes placeholder files instead of invoking ffmpeg.
type MockChunker struct{}

func (MockChunker) Split(ctx context.Context, audio *models.AudioResult, chunkSizeMinutes int, destDir string) ([]models.AudioChunk, error) {
	if audio.Duration <= 0 {
		return nil, fmt.Errorf("cannot chunk audio with duration %g", audio.Duration)
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("create chunk dir: %w", err)
	}

	ext := filepath.Ext(audio.FilePath)
	if ext == "" {
		ext = ".mp3"
	}
	bounds := chunkBoundaries(audio.Duration, chunkSizeMinutes)
	chunks := make([]models.AudioChunk, 0, len(bounds))

	for i, b := range bounds {
		outPath := filepath.Join(destDir, fmt.Sprintf("chunk_%03d%s", i, ext))
		if err := os.WriteFile(outPath, []byte("mock chunk data"), 0644); err != nil {
			return nil, fmt.Errorf("write mock chunk %d: %w", i, err)
		}
		chunks = append(chunks, models.AudioChunk{
			ChunkID:   fmt.Sprintf("chunk_%03d", i),
			Index:     i,
			StartTime: b.start,
			EndTime:   b.end,
			Duration:  b.end - b.start,
			FilePath:  outPath,
		})
	}
	return chunks, nil
}
