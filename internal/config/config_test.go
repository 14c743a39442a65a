package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateFillsDefaults(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults = %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Workers.Count != 4 {
		t.Errorf("workers.count = %d, want 4", cfg.Workers.Count)
	}
	if cfg.Pipeline.ChunkSizeMinutes != 10 {
		t.Errorf("chunk_size_minutes = %d, want 10", cfg.Pipeline.ChunkSizeMinutes)
	}
	if cfg.Pipeline.TargetLanguage != "zh-TW" {
		t.Errorf("target_language = %q", cfg.Pipeline.TargetLanguage)
	}
	if cfg.Pipeline.TranscriptionModel != "voxtral-mini-latest" {
		t.Errorf("transcription_model = %q", cfg.Pipeline.TranscriptionModel)
	}
	if cfg.YouTube.AudioQuality != "192K" || cfg.YouTube.AudioFormat != "mp3" {
		t.Errorf("youtube defaults = %s/%s", cfg.YouTube.AudioQuality, cfg.YouTube.AudioFormat)
	}
	if cfg.YouTube.MaxDurationHours != 6 {
		t.Errorf("max_duration_hours = %d, want 6", cfg.YouTube.MaxDurationHours)
	}
	if cfg.JobStore.Backend != "memory" {
		t.Errorf("job_store.backend = %q, want memory", cfg.JobStore.Backend)
	}
	if cfg.Limits.MaxFileSizeMB != 500 {
		t.Errorf("max_file_size_mb = %d, want 500", cfg.Limits.MaxFileSizeMB)
	}
}

func TestValidateKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Workers.Count = 8
	cfg.Pipeline.ChunkSizeMinutes = 5
	cfg.JobStore.Backend = "sqlite"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Workers.Count != 8 || cfg.Pipeline.ChunkSizeMinutes != 5 || cfg.JobStore.Backend != "sqlite" {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "chunk size too large",
			mutate:  func(c *Config) { c.Pipeline.ChunkSizeMinutes = 31 },
			wantErr: "chunk_size_minutes",
		},
		{
			name:    "chunk size negative",
			mutate:  func(c *Config) { c.Pipeline.ChunkSizeMinutes = -1 },
			wantErr: "chunk_size_minutes",
		},
		{
			name:    "unknown job store backend",
			mutate:  func(c *Config) { c.JobStore.Backend = "postgres" },
			wantErr: "job_store.backend",
		},
		{
			name:    "watcher without inbox",
			mutate:  func(c *Config) { c.Watcher.Enabled = true },
			wantErr: "watcher.inbox_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate accepted bad config")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRedisAddrDefault(t *testing.T) {
	cfg := &Config{}
	cfg.JobStore.Backend = "redis"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.JobStore.RedisAddr != "localhost:6379" {
		t.Errorf("redis_addr = %q, want localhost:6379", cfg.JobStore.RedisAddr)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
workers:
  count: 2
pipeline:
  chunk_size_minutes: 15
  target_language: zh-TW
  use_mock: true
job_store:
  backend: sqlite
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Workers.Count != 2 {
		t.Errorf("workers = %d, want 2", cfg.Workers.Count)
	}
	if cfg.Pipeline.ChunkSizeMinutes != 15 || !cfg.Pipeline.UseMock {
		t.Errorf("pipeline = %+v", cfg.Pipeline)
	}
	// Unset fields still get defaults.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q, want default", cfg.Server.Host)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load accepted a missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("server: [not a mapping"), 0644)
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted malformed yaml")
	}
}
