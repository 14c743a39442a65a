package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"time"

	"github.com/jchen-labs/media-summary/internal/logger"
	"github.com/jchen-labs/media-summary/internal/models"
)

// MockDownloader fabricates download results without touching the
// network. It still writes a placeholder file so downstream stages that
// stat the path behave the same as with a real download.
type MockDownloader struct {
	destDir string
	logger  logger.Logger
}

func NewMockDownloader(destDir string, log logger.Logger) *MockDownloader {
	return &MockDownloader{destDir: destDir, logger: log}
}

func (m *MockDownloader) DownloadAudio(ctx context.Context, url string, startTime, endTime *float64) (*models.AudioResult, error) {
	if err := os.MkdirAll(m.destDir, 0755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	outputPath := filepath.Join(m.destDir, "audio.mp3")
	if err := os.WriteFile(outputPath, []byte("mock audio data"), 0644); err != nil {
		return nil, fmt.Errorf("write placeholder audio: %w", err)
	}

	// Derive a stable duration from the URL so repeated runs of the
	// same input produce identical metadata and cache keys.
	h := fnv.New32a()
	h.Write([]byte(url))
	original := 300 + float64(h.Sum32()%10500)

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("stat placeholder audio: %w", err)
	}

	result := &models.AudioResult{
		Title:            fmt.Sprintf("Mock Video %08x", h.Sum32()),
		Duration:         clippedDuration(original, startTime, endTime),
		FilePath:         outputPath,
		Format:           "mp3",
		SampleRate:       44100,
		FileSize:         info.Size(),
		UploadDate:       time.Now().Format("20060102"),
		OriginalDuration: original,
		StartTime:        startTime,
		EndTime:          endTime,
	}

	m.logger.Debug(ctx, "mock download for %s: %.0fs", url, result.Duration)
	return result, nil
}
