package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jchen-labs/media-summary/internal/models"
)

func TestChunkBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		duration  float64
		sizeMin   int
		wantCount int
		wantLast  float64
	}{
		{"exact multiple", 1800, 10, 3, 600},
		{"partial tail", 7500, 10, 13, 300},
		{"shorter than one chunk", 90, 10, 1, 90},
		{"one second over", 601, 10, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bounds := chunkBoundaries(tt.duration, tt.sizeMin)
			if len(bounds) != tt.wantCount {
				t.Fatalf("got %d chunks, want %d", len(bounds), tt.wantCount)
			}

			// Boundaries must tile the duration exactly: each chunk starts
			// where the previous ended.
			prev := 0.0
			for i, b := range bounds {
				if b.start != prev {
					t.Errorf("chunk %d starts at %g, want %g", i, b.start, prev)
				}
				if b.end <= b.start {
					t.Errorf("chunk %d has non-positive span [%g, %g]", i, b.start, b.end)
				}
				prev = b.end
			}
			if prev != tt.duration {
				t.Errorf("last chunk ends at %g, want %g", prev, tt.duration)
			}

			last := bounds[len(bounds)-1]
			if got := last.end - last.start; got != tt.wantLast {
				t.Errorf("last chunk duration = %g, want %g", got, tt.wantLast)
			}
		})
	}
}

func TestMockChunkerSplit(t *testing.T) {
	dir := t.TempDir()
	audio := &models.AudioResult{
		FilePath: filepath.Join(dir, "audio.mp3"),
		Duration: 1500,
	}

	destDir := filepath.Join(dir, "chunks")
	chunks, err := MockChunker{}.Split(context.Background(), audio, 10, destDir)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}

	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d has index %d", i, chunk.Index)
		}
		if chunk.StartTime != float64(i)*600 {
			t.Errorf("chunk %d starts at %g", i, chunk.StartTime)
		}
		if _, err := os.Stat(chunk.FilePath); err != nil {
			t.Errorf("chunk %d file missing: %v", i, err)
		}
	}

	if last := chunks[2]; last.Duration != 300 {
		t.Errorf("last chunk duration = %g, want 300", last.Duration)
	}
}

func TestMockChunkerRejectsZeroDuration(t *testing.T) {
	audio := &models.AudioResult{FilePath: "audio.mp3", Duration: 0}
	if _, err := (MockChunker{}).Split(context.Background(), audio, 10, t.TempDir()); err == nil {
		t.Fatal("expected error for zero duration")
	}
}
