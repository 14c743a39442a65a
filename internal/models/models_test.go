package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func TestNewPipelineInputDefaults(t *testing.T) {
	input, err := NewPipelineInput(PipelineInput{
		EntryPoint:  EntryText,
		TextContent: "some source text",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if input.ChunkSizeMinutes != 10 {
		t.Errorf("chunk size = %d, want default 10", input.ChunkSizeMinutes)
	}
	if input.TargetLanguage != "zh-TW" {
		t.Errorf("target language = %q, want default zh-TW", input.TargetLanguage)
	}
	if input.JobID == "" {
		t.Error("job id was not assigned")
	}
}

func TestNewPipelineInputKeepsJobID(t *testing.T) {
	input, err := NewPipelineInput(PipelineInput{
		EntryPoint:  EntryText,
		TextContent: "text",
		JobID:       "fixed-id",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if input.JobID != "fixed-id" {
		t.Errorf("job id = %q, want fixed-id", input.JobID)
	}
}

func TestPipelineInputValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   PipelineInput
		wantErr string
	}{
		{
			name:    "youtube without url",
			input:   PipelineInput{EntryPoint: EntryYouTube, ChunkSizeMinutes: 10},
			wantErr: "youtube_url",
		},
		{
			name:    "audio file without path",
			input:   PipelineInput{EntryPoint: EntryAudioFile, ChunkSizeMinutes: 10},
			wantErr: "audio_file_path",
		},
		{
			name:    "text without content",
			input:   PipelineInput{EntryPoint: EntryText, ChunkSizeMinutes: 10},
			wantErr: "text_content",
		},
		{
			name:    "unknown entry point",
			input:   PipelineInput{EntryPoint: "podcast", ChunkSizeMinutes: 10},
			wantErr: "entry point",
		},
		{
			name:    "chunk size too small",
			input:   PipelineInput{EntryPoint: EntryText, TextContent: "t", ChunkSizeMinutes: 0},
			wantErr: "chunk_size_minutes",
		},
		{
			name:    "chunk size too large",
			input:   PipelineInput{EntryPoint: EntryText, TextContent: "t", ChunkSizeMinutes: 31},
			wantErr: "chunk_size_minutes",
		},
		{
			name: "negative start time",
			input: PipelineInput{
				EntryPoint: EntryYouTube, YouTubeURL: "https://youtu.be/x",
				ChunkSizeMinutes: 10, StartTime: floatPtr(-5),
			},
			wantErr: "start_time",
		},
		{
			name: "end before start",
			input: PipelineInput{
				EntryPoint: EntryYouTube, YouTubeURL: "https://youtu.be/x",
				ChunkSizeMinutes: 10, StartTime: floatPtr(120), EndTime: floatPtr(60),
			},
			wantErr: "end_time",
		},
		{
			name: "word limit below range",
			input: PipelineInput{
				EntryPoint: EntryText, TextContent: "t",
				ChunkSizeMinutes: 10, SummaryWordLimit: 20,
			},
			wantErr: "summary_word_limit",
		},
		{
			name: "word limit above range",
			input: PipelineInput{
				EntryPoint: EntryText, TextContent: "t",
				ChunkSizeMinutes: 10, SummaryWordLimit: 5000,
			},
			wantErr: "summary_word_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestPipelineInputValidCases(t *testing.T) {
	valid := []PipelineInput{
		{EntryPoint: EntryYouTube, YouTubeURL: "https://youtu.be/x", ChunkSizeMinutes: 1},
		{EntryPoint: EntryYouTube, YouTubeURL: "https://youtu.be/x", ChunkSizeMinutes: 30,
			StartTime: floatPtr(10), EndTime: floatPtr(200)},
		{EntryPoint: EntryAudioFile, AudioFilePath: "/tmp/a.mp3", ChunkSizeMinutes: 10},
		{EntryPoint: EntryText, TextContent: "t", ChunkSizeMinutes: 10, SummaryWordLimit: 50},
		{EntryPoint: EntryText, TextContent: "t", ChunkSizeMinutes: 10, SummaryWordLimit: 2000},
	}
	for i, input := range valid {
		if err := input.Validate(); err != nil {
			t.Errorf("case %d: unexpected error: %v", i, err)
		}
	}
}

func TestAudioResultRoundTrip(t *testing.T) {
	start := 30.0
	original := AudioResult{
		Title:            "講座錄音",
		Duration:         570,
		FilePath:         "/cache/downloads/abc/audio.mp3",
		Format:           "mp3",
		SampleRate:       44100,
		FileSize:         1 << 20,
		UploadDate:       "20260815",
		OriginalDuration: 600,
		StartTime:        &start,
	}

	data, err := json.Marshal(&original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored AudioResult
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if restored.Title != original.Title || restored.Duration != original.Duration ||
		restored.OriginalDuration != original.OriginalDuration || restored.FileSize != original.FileSize {
		t.Errorf("round trip mismatch: %+v vs %+v", restored, original)
	}
	if restored.StartTime == nil || *restored.StartTime != start {
		t.Errorf("start time did not survive round trip: %v", restored.StartTime)
	}
	if restored.EndTime != nil {
		t.Errorf("nil end time became %v", *restored.EndTime)
	}
}

func TestIsComplete(t *testing.T) {
	for status, want := range map[JobStatus]bool{
		StatusPending:   false,
		StatusRunning:   false,
		StatusCompleted: true,
		StatusFailed:    true,
		StatusCancelled: true,
	} {
		rec := PipelineResult{Status: status}
		if got := rec.IsComplete(); got != want {
			t.Errorf("IsComplete(%s) = %v, want %v", status, got, want)
		}
	}
}
