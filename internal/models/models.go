// Package models holds the data contracts passed between pipeline stages.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobStatus tracks the lifecycle of a pipeline job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// EntryPoint is the source-data category for a job.
type EntryPoint string

const (
	EntryYouTube   EntryPoint = "youtube"
	EntryAudioFile EntryPoint = "audio_file"
	EntryText      EntryPoint = "text"
)

// PipelineInput is the job request. Immutable once a flow starts.
type PipelineInput struct {
	EntryPoint EntryPoint `json:"entry_point"`

	// Source data, one of these per entry point.
	YouTubeURL    string `json:"youtube_url,omitempty"`
	AudioFilePath string `json:"audio_file_path,omitempty"`
	TextContent   string `json:"text_content,omitempty"`

	// Optional clip range in seconds for YouTube sources.
	StartTime *float64 `json:"start_time,omitempty"`
	EndTime   *float64 `json:"end_time,omitempty"`

	ChunkSizeMinutes int    `json:"chunk_size_minutes"`
	TargetLanguage   string `json:"target_language"`

	TranscriptionModel string `json:"transcription_model"`
	CorrectionModel    string `json:"correction_model"`
	SummarizationModel string `json:"summarization_model"`

	SummaryInstructions string `json:"summary_instructions,omitempty"`
	SummaryWordLimit    int    `json:"summary_word_limit,omitempty"`

	UserID string `json:"user_id,omitempty"`
	JobID  string `json:"job_id"`

	// SubmittedAt anchors the job record's creation time; it survives
	// every later upsert so queue wait time stays visible.
	SubmittedAt time.Time `json:"submitted_at"`
}

// Validate checks input construction rules. It is the only failure class
// surfaced synchronously to the caller; everything after construction is
// reported through the job record.
func (in *PipelineInput) Validate() error {
	switch in.EntryPoint {
	case EntryYouTube:
		if in.YouTubeURL == "" {
			return fmt.Errorf("youtube_url is required for youtube entry point")
		}
	case EntryAudioFile:
		if in.AudioFilePath == "" {
			return fmt.Errorf("audio_file_path is required for audio_file entry point")
		}
	case EntryText:
		if in.TextContent == "" {
			return fmt.Errorf("text_content is required for text entry point")
		}
	default:
		return fmt.Errorf("unsupported entry point: %q", in.EntryPoint)
	}

	if in.ChunkSizeMinutes < 1 || in.ChunkSizeMinutes > 30 {
		return fmt.Errorf("chunk_size_minutes must be between 1 and 30, got %d", in.ChunkSizeMinutes)
	}
	if in.StartTime != nil && *in.StartTime < 0 {
		return fmt.Errorf("start_time must not be negative")
	}
	if in.EndTime != nil && *in.EndTime < 0 {
		return fmt.Errorf("end_time must not be negative")
	}
	if in.StartTime != nil && in.EndTime != nil && *in.EndTime <= *in.StartTime {
		return fmt.Errorf("end_time must be greater than start_time")
	}
	if in.SummaryWordLimit != 0 && (in.SummaryWordLimit < 50 || in.SummaryWordLimit > 2000) {
		return fmt.Errorf("summary_word_limit must be between 50 and 2000, got %d", in.SummaryWordLimit)
	}

	return nil
}

// NewPipelineInput validates the input and assigns a job id if absent.
func NewPipelineInput(in PipelineInput) (*PipelineInput, error) {
	if in.ChunkSizeMinutes == 0 {
		in.ChunkSizeMinutes = 10
	}
	if in.TargetLanguage == "" {
		in.TargetLanguage = "zh-TW"
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.JobID == "" {
		in.JobID = uuid.New().String()
	}
	if in.SubmittedAt.IsZero() {
		in.SubmittedAt = time.Now()
	}
	return &in, nil
}

// AudioResult is the metadata for a downloaded or sourced audio asset.
// The JSON form round-trips losslessly through the artifact cache.
type AudioResult struct {
	Title            string   `json:"title"`
	Duration         float64  `json:"duration"`
	FilePath         string   `json:"file_path"`
	Format           string   `json:"format"`
	SampleRate       int      `json:"sample_rate"`
	FileSize         int64    `json:"file_size"`
	UploadDate       string   `json:"upload_date,omitempty"`
	OriginalDuration float64  `json:"original_duration"`
	StartTime        *float64 `json:"start_time,omitempty"`
	EndTime          *float64 `json:"end_time,omitempty"`
}

// AudioChunk is one slice of audio. Ordering is defined by Index,
// not by position in any collection.
type AudioChunk struct {
	ChunkID   string  `json:"chunk_id"`
	Index     int     `json:"index"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Duration  float64 `json:"duration"`
	FilePath  string  `json:"file_path"`
}

// TranscriptionResult is raw transcribed text for a single chunk.
// An empty RawText with FailureReason set signals failure-as-data.
type TranscriptionResult struct {
	ChunkID       string `json:"chunk_id,omitempty"`
	Index         int    `json:"index"`
	RawText       string `json:"raw_text"`
	Language      string `json:"language"`
	Model         string `json:"model"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// CorrectionResult is the corrected text for a single chunk.
type CorrectionResult struct {
	ChunkID       string `json:"chunk_id,omitempty"`
	Index         int    `json:"index"`
	OriginalText  string `json:"original_text"`
	CorrectedText string `json:"corrected_text"`
	Language      string `json:"language"`
	Model         string `json:"model"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// SummaryResult is the final summary.
type SummaryResult struct {
	Summary            string `json:"summary"`
	WordCount          int    `json:"word_count"`
	Model              string `json:"model"`
	CustomInstructions string `json:"custom_instructions,omitempty"`
	FailureReason      string `json:"failure_reason,omitempty"`
}

// PipelineResult is the job record. The flow exclusively owns and mutates
// it; stage tasks only return new values.
type PipelineResult struct {
	JobID      string     `json:"job_id"`
	UserID     string     `json:"user_id,omitempty"`
	Status     JobStatus  `json:"status"`
	EntryPoint EntryPoint `json:"entry_point"`

	AudioChunks    []AudioChunk          `json:"audio_chunks,omitempty"`
	Transcriptions []TranscriptionResult `json:"transcriptions,omitempty"`
	Corrections    []CorrectionResult    `json:"corrections,omitempty"`
	Summary        *SummaryResult        `json:"summary,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`

	CreditsConsumed    int     `json:"credits_consumed"`
	ProcessingDuration float64 `json:"processing_duration,omitempty"`

	Input *PipelineInput `json:"input_params,omitempty"`
}

// NewPendingRecord builds the initial job record for an accepted input.
func NewPendingRecord(input *PipelineInput) *PipelineResult {
	createdAt := input.SubmittedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return &PipelineResult{
		JobID:      input.JobID,
		UserID:     input.UserID,
		Status:     StatusPending,
		EntryPoint: input.EntryPoint,
		CreatedAt:  createdAt,
		Input:      input,
	}
}

// IsComplete reports whether the job reached a terminal state.
func (r *PipelineResult) IsComplete() bool {
	switch r.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// DurationMinutes returns the processing duration in minutes, or zero if
// the job has not finished.
func (r *PipelineResult) DurationMinutes() float64 {
	return r.ProcessingDuration / 60.0
}
