package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jchen-labs/media-summary/internal/logger"
)

func writeAged(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("scratch"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	old := time.Now().Add(-age)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func TestSweepFilesRemovesOnlyAged(t *testing.T) {
	tempDir := t.TempDir()
	writeAged(t, filepath.Join(tempDir, "old.mp3"), 48*time.Hour)
	writeAged(t, filepath.Join(tempDir, "fresh.mp3"), time.Minute)

	s := NewScheduler(tempDir, "", 60, 24, logger.New("error"))
	deleted, freed := s.sweepFiles(context.Background(), tempDir)

	if deleted != 1 {
		t.Fatalf("deleted %d files, want 1", deleted)
	}
	if freed <= 0 {
		t.Error("freed bytes not reported")
	}
	if _, err := os.Stat(filepath.Join(tempDir, "old.mp3")); !os.IsNotExist(err) {
		t.Error("aged file survived the sweep")
	}
	if _, err := os.Stat(filepath.Join(tempDir, "fresh.mp3")); err != nil {
		t.Error("fresh file removed by the sweep")
	}
}

func TestSweepChunkFoldersRemovesStaleFolders(t *testing.T) {
	chunksDir := t.TempDir()

	stale := filepath.Join(chunksDir, "10min", "abcd1234")
	writeAged(t, filepath.Join(stale, "chunk_000.mp3"), 48*time.Hour)
	writeAged(t, filepath.Join(stale, "chunk_001.mp3"), 48*time.Hour)

	// One recent file keeps the whole folder alive.
	active := filepath.Join(chunksDir, "10min", "ffff0000")
	writeAged(t, filepath.Join(active, "chunk_000.mp3"), 48*time.Hour)
	writeAged(t, filepath.Join(active, "chunk_001.mp3"), time.Minute)

	s := NewScheduler("", chunksDir, 60, 24, logger.New("error"))
	deleted, _ := s.sweepChunkFolders(context.Background())

	if deleted != 1 {
		t.Fatalf("deleted %d folders, want 1", deleted)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale chunk folder survived")
	}
	if _, err := os.Stat(active); err != nil {
		t.Error("active chunk folder removed")
	}
}

func TestSweepHandlesMissingDirs(t *testing.T) {
	s := NewScheduler(filepath.Join(t.TempDir(), "absent"), filepath.Join(t.TempDir(), "also-absent"), 60, 24, logger.New("error"))
	// Must not panic or error on directories that do not exist yet.
	s.sweep(context.Background())
}

func TestStartStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler(t.TempDir(), "", 60, 24, logger.New("error"))
	s.Start(ctx)
	s.Stop()
}
