package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration, loaded once at process start
// and injected into every component that needs it.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Workers   WorkersConfig   `yaml:"workers"`
	Logging   LoggingConfig   `yaml:"logging"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Providers ProvidersConfig `yaml:"providers"`
	YouTube   YouTubeConfig   `yaml:"youtube"`
	Storage   StorageConfig   `yaml:"storage"`
	JobStore  JobStoreConfig  `yaml:"job_store"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Watcher   WatcherConfig   `yaml:"watcher"`
	Drive     DriveConfig     `yaml:"google_drive"`
	Limits    LimitsConfig    `yaml:"limits"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type WorkersConfig struct {
	Count int `yaml:"count"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// PipelineConfig holds default processing parameters. Per-job values in
// PipelineInput override these.
type PipelineConfig struct {
	ChunkSizeMinutes   int    `yaml:"chunk_size_minutes"`
	TargetLanguage     string `yaml:"target_language"`
	TranscriptionModel string `yaml:"transcription_model"`
	CorrectionModel    string `yaml:"correction_model"`
	SummarizationModel string `yaml:"summarization_model"`
	UseMock            bool   `yaml:"use_mock"`
}

type ProvidersConfig struct {
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	MistralAPIKey string `yaml:"mistral_api_key"`
	GeminiAPIKey  string `yaml:"gemini_api_key"`
}

type YouTubeConfig struct {
	AudioQuality     string `yaml:"audio_quality"`
	AudioFormat      string `yaml:"audio_format"`
	MaxDurationHours int    `yaml:"max_duration_hours"`
}

type StorageConfig struct {
	ArtifactsDir string `yaml:"artifacts_dir"`
	TempDir      string `yaml:"temp_dir"`
	OutputDir    string `yaml:"output_dir"`
	Database     string `yaml:"database"`
}

// JobStoreConfig selects the job record backend: memory, sqlite or redis.
type JobStoreConfig struct {
	Backend   string `yaml:"backend"`
	RedisAddr string `yaml:"redis_addr"`
}

type CleanupConfig struct {
	IntervalMinutes int `yaml:"interval_minutes"`
	MaxAgeHours     int `yaml:"max_age_hours"`
}

type WatcherConfig struct {
	Enabled  bool   `yaml:"enabled"`
	InboxDir string `yaml:"inbox_dir"`
}

type DriveConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	FolderName      string `yaml:"folder_name"`
}

type LimitsConfig struct {
	MaxFileSizeMB int `yaml:"max_file_size_mb"`
}

// Load reads and validates configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks required fields and fills defaults.
func (c *Config) Validate() error {
	if c.Pipeline.ChunkSizeMinutes < 0 || c.Pipeline.ChunkSizeMinutes > 30 {
		return fmt.Errorf("pipeline.chunk_size_minutes must be between 1 and 30")
	}

	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Workers.Count == 0 {
		c.Workers.Count = 4
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Pipeline.ChunkSizeMinutes == 0 {
		c.Pipeline.ChunkSizeMinutes = 10
	}
	if c.Pipeline.TargetLanguage == "" {
		c.Pipeline.TargetLanguage = "zh-TW"
	}
	if c.Pipeline.TranscriptionModel == "" {
		c.Pipeline.TranscriptionModel = "voxtral-mini-latest"
	}
	if c.Pipeline.CorrectionModel == "" {
		c.Pipeline.CorrectionModel = "mistral-small-latest"
	}
	if c.Pipeline.SummarizationModel == "" {
		c.Pipeline.SummarizationModel = "mistral-small-latest"
	}
	if c.YouTube.AudioQuality == "" {
		c.YouTube.AudioQuality = "192K"
	}
	if c.YouTube.AudioFormat == "" {
		c.YouTube.AudioFormat = "mp3"
	}
	if c.YouTube.MaxDurationHours == 0 {
		c.YouTube.MaxDurationHours = 6
	}
	if c.Storage.ArtifactsDir == "" {
		c.Storage.ArtifactsDir = "pipeline_artifacts"
	}
	if c.Storage.TempDir == "" {
		c.Storage.TempDir = "temp"
	}
	if c.Storage.OutputDir == "" {
		c.Storage.OutputDir = "outputs"
	}
	if c.Storage.Database == "" {
		c.Storage.Database = "data/jobs.db"
	}
	if c.JobStore.Backend == "" {
		c.JobStore.Backend = "memory"
	}
	switch c.JobStore.Backend {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("job_store.backend must be one of memory, sqlite, redis")
	}
	if c.JobStore.Backend == "redis" && c.JobStore.RedisAddr == "" {
		c.JobStore.RedisAddr = "localhost:6379"
	}
	if c.Cleanup.IntervalMinutes == 0 {
		c.Cleanup.IntervalMinutes = 60
	}
	if c.Cleanup.MaxAgeHours == 0 {
		c.Cleanup.MaxAgeHours = 24
	}
	if c.Watcher.Enabled && c.Watcher.InboxDir == "" {
		return fmt.Errorf("watcher.inbox_dir is required when watcher is enabled")
	}
	if c.Limits.MaxFileSizeMB == 0 {
		c.Limits.MaxFileSizeMB = 500
	}

	return nil
}
