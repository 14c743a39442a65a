// Package cleanup prunes stale scratch files: uploaded temp audio and
// chunk folders left behind by crashed runs.
package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/jchen-labs/media-summary/internal/logger"
)

// Scheduler periodically removes files older than the configured age
// from the temp directory and the artifact chunk tree. Cached downloads
// are never touched.
type Scheduler struct {
	tempDir   string
	chunksDir string
	interval  time.Duration
	maxAge    time.Duration
	stopChan  chan struct{}
	logger    logger.Logger
}

func NewScheduler(tempDir, chunksDir string, intervalMinutes, maxAgeHours int, log logger.Logger) *Scheduler {
	return &Scheduler{
		tempDir:   tempDir,
		chunksDir: chunksDir,
		interval:  time.Duration(intervalMinutes) * time.Minute,
		maxAge:    time.Duration(maxAgeHours) * time.Hour,
		stopChan:  make(chan struct{}),
		logger:    log,
	}
}

// Start runs one sweep immediately, then sweeps on the interval until
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep(ctx)
			case <-s.stopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	s.logger.Info(ctx, "cleanup scheduler started (interval: %s, max age: %s)", s.interval, s.maxAge)
}

func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) sweep(ctx context.Context) {
	deleted, freed := s.sweepFiles(ctx, s.tempDir)
	deleted2, freed2 := s.sweepChunkFolders(ctx)
	deleted += deleted2
	freed += freed2

	if deleted > 0 {
		s.logger.Info(ctx, "cleanup: removed %d entries, freed %.2fMB", deleted, float64(freed)/(1024*1024))
	}
}

func (s *Scheduler) sweepFiles(ctx context.Context, dir string) (int, int64) {
	if dir == "" {
		return 0, 0
	}

	now := time.Now()
	var deleted int
	var freed int64

	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if now.Sub(info.ModTime()) <= s.maxAge {
			return nil
		}

		size := info.Size()
		if err := os.Remove(path); err != nil {
			s.logger.Warn(ctx, "cleanup: remove %s: %v", path, err)
			return nil
		}
		deleted++
		freed += size
		return nil
	})

	return deleted, freed
}

// sweepChunkFolders removes whole chunk directories whose newest file
// exceeded the age limit. A normal run deletes its own chunk folder;
// anything still here belonged to a run that died mid-flow.
func (s *Scheduler) sweepChunkFolders(ctx context.Context) (int, int64) {
	if s.chunksDir == "" {
		return 0, 0
	}

	sizeDirs, err := os.ReadDir(s.chunksDir)
	if err != nil {
		return 0, 0
	}

	now := time.Now()
	var deleted int
	var freed int64

	for _, sizeDir := range sizeDirs {
		if !sizeDir.IsDir() {
			continue
		}
		parent := filepath.Join(s.chunksDir, sizeDir.Name())
		folders, err := os.ReadDir(parent)
		if err != nil {
			continue
		}

		for _, folder := range folders {
			path := filepath.Join(parent, folder.Name())
			newest, size := newestModTime(path)
			if now.Sub(newest) <= s.maxAge {
				continue
			}
			if err := os.RemoveAll(path); err != nil {
				s.logger.Warn(ctx, "cleanup: remove chunk folder %s: %v", path, err)
				continue
			}
			deleted++
			freed += size
		}
	}

	return deleted, freed
}

func newestModTime(dir string) (time.Time, int64) {
	var newest time.Time
	var size int64

	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})

	return newest, size
}

// EnsureDir creates a scratch directory if it does not exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
