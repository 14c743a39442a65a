package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jchen-labs/media-summary/internal/logger"
	"github.com/jchen-labs/media-summary/internal/models"
	"github.com/jchen-labs/media-summary/pkg/executor"
)

var supportedAudioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
	".aac":  true,
}

// FFProbeService reads audio metadata with ffprobe.
type FFProbeService struct {
	exec   executor.Executor
	logger logger.Logger
}

func NewFFProbeService(exec executor.Executor, log logger.Logger) *FFProbeService {
	return &FFProbeService{exec: exec, logger: log}
}

type ffprobeOutput struct {
	Format struct {
		Duration   string `json:"duration"`
		FormatName string `json:"format_name"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		SampleRate string `json:"sample_rate"`
	} `json:"streams"`
}

func (s *FFProbeService) Probe(ctx context.Context, path string) (*models.AudioResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("audio file not accessible: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedAudioExtensions[ext] {
		return nil, fmt.Errorf("unsupported audio format %q", ext)
	}

	out, err := s.exec.Execute(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration,format_name",
		"-show_entries", "stream=codec_type,sample_rate",
		"-of", "json",
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}

	var probed ffprobeOutput
	if err := json.Unmarshal([]byte(out), &probed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	duration, err := strconv.ParseFloat(probed.Format.Duration, 64)
	if err != nil {
		return nil, fmt.Errorf("parse audio duration %q: %w", probed.Format.Duration, err)
	}

	sampleRate := 44100
	for _, stream := range probed.Streams {
		if stream.CodecType == "audio" && stream.SampleRate != "" {
			if sr, err := strconv.Atoi(stream.SampleRate); err == nil {
				sampleRate = sr
			}
			break
		}
	}

	result := &models.AudioResult{
		Title:            strings.TrimSuffix(filepath.Base(path), ext),
		Duration:         duration,
		FilePath:         path,
		Format:           strings.TrimPrefix(ext, "."),
		SampleRate:       sampleRate,
		FileSize:         info.Size(),
		OriginalDuration: duration,
	}

	s.logger.Debug(ctx, "probed %s: %.1fs %dHz", path, duration, sampleRate)
	return result, nil
}

// MockProber reports fixed metadata for any existing file, so pipeline
// runs in mock mode do not require ffprobe.
type MockProber struct{}

func (MockProber) Probe(ctx context.Context, path string) (*models.AudioResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("audio file not accessible: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedAudioExtensions[ext] {
		return nil, fmt.Errorf("unsupported audio format %q", ext)
	}

	return &models.AudioResult{
		Title:            strings.TrimSuffix(filepath.Base(path), ext),
		Duration:         1800,
		FilePath:         path,
		Format:           strings.TrimPrefix(ext, "."),
		SampleRate:       44100,
		FileSize:         info.Size(),
		OriginalDuration: 1800,
	}, nil
}
