package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/jchen-labs/media-summary/internal/config"
	"github.com/jchen-labs/media-summary/internal/logger"
	"github.com/jchen-labs/media-summary/internal/models"
	"github.com/jchen-labs/media-summary/pkg/executor"
)

// YouTubeService downloads audio with yt-dlp. The destination directory
// is fixed at construction so the download stage can point it at the
// artifact cache folder for the job's key.
type YouTubeService struct {
	destDir string
	cfg     config.YouTubeConfig
	exec    executor.Executor
	logger  logger.Logger
}

// NewYouTubeService creates a downloader writing into destDir.
func NewYouTubeService(destDir string, cfg config.YouTubeConfig, exec executor.Executor, log logger.Logger) *YouTubeService {
	return &YouTubeService{destDir: destDir, cfg: cfg, exec: exec, logger: log}
}

// ytMetadata is the subset of yt-dlp's -J output we need.
type ytMetadata struct {
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
	UploadDate string  `json:"upload_date"`
}

// DownloadAudio fetches the audio track for a YouTube URL, optionally
// clipped to [startTime, endTime].
func (s *YouTubeService) DownloadAudio(ctx context.Context, url string, startTime, endTime *float64) (*models.AudioResult, error) {
	if err := os.MkdirAll(s.destDir, 0755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	meta, err := s.fetchMetadata(ctx, url)
	if err != nil {
		return nil, err
	}
	if meta.Title == "" {
		// yt-dlp occasionally omits the title for embedded players; fall
		// back to the page title.
		if title, probeErr := s.probePageTitle(url); probeErr == nil {
			meta.Title = title
		} else {
			s.logger.Warn(ctx, "page title probe failed: %v", probeErr)
			meta.Title = "Unknown Title"
		}
	}

	args := []string{
		"-x",
		"--audio-format", s.cfg.AudioFormat,
		"--audio-quality", s.cfg.AudioQuality,
		"--no-playlist",
		"-o", filepath.Join(s.destDir, "audio.%(ext)s"),
	}
	if startTime != nil || endTime != nil {
		var ffmpegArgs string
		if startTime != nil {
			ffmpegArgs += fmt.Sprintf("-ss %g ", *startTime)
		}
		if endTime != nil {
			start := 0.0
			if startTime != nil {
				start = *startTime
			}
			ffmpegArgs += fmt.Sprintf("-t %g", *endTime-start)
		}
		args = append(args, "--postprocessor-args", "ffmpeg:"+ffmpegArgs)
	}
	args = append(args, url)

	if _, err := s.exec.Execute(ctx, "yt-dlp", args...); err != nil {
		return nil, fmt.Errorf("yt-dlp download: %w", err)
	}

	outputPath, err := s.findOutputFile()
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("stat downloaded file: %w", err)
	}

	result := &models.AudioResult{
		Title:            meta.Title,
		Duration:         clippedDuration(meta.Duration, startTime, endTime),
		FilePath:         outputPath,
		Format:           s.cfg.AudioFormat,
		SampleRate:       44100,
		FileSize:         info.Size(),
		UploadDate:       meta.UploadDate,
		OriginalDuration: meta.Duration,
		StartTime:        startTime,
		EndTime:          endTime,
	}

	s.logger.Info(ctx, "downloaded %q (%.1fs, %.1fMB)", result.Title, result.Duration, float64(result.FileSize)/1024/1024)
	return result, nil
}

func (s *YouTubeService) fetchMetadata(ctx context.Context, url string) (*ytMetadata, error) {
	out, err := s.exec.Execute(ctx, "yt-dlp", "-J", "--no-playlist", url)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp metadata: %w", err)
	}

	var meta ytMetadata
	if err := json.Unmarshal([]byte(out), &meta); err != nil {
		return nil, fmt.Errorf("parse yt-dlp metadata: %w", err)
	}
	return &meta, nil
}

// probePageTitle loads the video page in headless Chrome and reads
// document.title.
func (s *YouTubeService) probePageTitle(url string) (string, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var title string
	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(`document.title`, &title, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
	)
	if err != nil {
		return "", err
	}
	return title, nil
}

// findOutputFile locates the file yt-dlp produced; the postprocessor may
// pick a different extension than requested.
func (s *YouTubeService) findOutputFile() (string, error) {
	for _, ext := range []string{"." + s.cfg.AudioFormat, ".mp3", ".m4a", ".webm", ".ogg", ".opus"} {
		candidate := filepath.Join(s.destDir, "audio"+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("downloaded file not found in %s", s.destDir)
}

func clippedDuration(original float64, startTime, endTime *float64) float64 {
	switch {
	case startTime != nil && endTime != nil:
		return *endTime - *startTime
	case startTime != nil:
		return original - *startTime
	case endTime != nil:
		if *endTime < original {
			return *endTime
		}
		return original
	}
	return original
}
