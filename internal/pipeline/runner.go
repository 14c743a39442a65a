// Package pipeline implements the media-to-summary flow: acquire audio,
// chunk it, transcribe and correct the chunks in parallel, merge, then
// summarize and validate. Failures inside stage calls are contained in
// the job record; Run never panics and never returns an error.
package pipeline

import (
	"context"
	"strings"

	"github.com/jchen-labs/media-summary/internal/artifacts"
	"github.com/jchen-labs/media-summary/internal/config"
	"github.com/jchen-labs/media-summary/internal/logger"
	"github.com/jchen-labs/media-summary/internal/models"
	"github.com/jchen-labs/media-summary/internal/services"
	"github.com/jchen-labs/media-summary/internal/translate"
	"github.com/jchen-labs/media-summary/pkg/executor"
)

// Sink receives job record snapshots as a flow progresses. Implementations
// must tolerate repeated saves for the same job id.
type Sink interface {
	Save(ctx context.Context, rec *models.PipelineResult) error
}

// DownloaderFactory builds a downloader writing into destDir. The flow
// picks the directory from the artifact cache key, so the factory is
// called once per download with a job-independent destination.
type DownloaderFactory func(destDir string) services.Downloader

// CapabilityResolver maps a model id to the provider service that runs
// it. *services.Factory is the production implementation.
type CapabilityResolver interface {
	ForModel(model string) services.Capability
}

type Runner struct {
	cfg           *config.Config
	art           *artifacts.Manager
	factory       CapabilityResolver
	newDownloader DownloaderFactory
	prober        services.AudioProber
	chunker       Chunker
	normalizer    *translate.Normalizer
	sink          Sink
	workers       int
	logger        logger.Logger
}

// RunnerDeps are the stage implementations a Runner dispatches to.
type RunnerDeps struct {
	Downloader DownloaderFactory
	Prober     services.AudioProber
	Chunker    Chunker
	Sink       Sink
}

func NewRunner(cfg *config.Config, art *artifacts.Manager, factory CapabilityResolver, log logger.Logger, deps RunnerDeps) *Runner {
	workers := cfg.Workers.Count
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		cfg:           cfg,
		art:           art,
		factory:       factory,
		newDownloader: deps.Downloader,
		prober:        deps.Prober,
		chunker:       deps.Chunker,
		normalizer:    translate.New(),
		sink:          deps.Sink,
		workers:       workers,
		logger:        log,
	}
}

// NewDefaultRunner wires real or mock stage implementations based on
// pipeline.use_mock.
func NewDefaultRunner(cfg *config.Config, art *artifacts.Manager, log logger.Logger, sink Sink) *Runner {
	if cfg.Pipeline.UseMock {
		return NewRunner(cfg, art, services.NewMockFactory(log), log, RunnerDeps{
			Downloader: func(destDir string) services.Downloader {
				return services.NewMockDownloader(destDir, log)
			},
			Prober:  services.MockProber{},
			Chunker: MockChunker{},
			Sink:    sink,
		})
	}

	exec := executor.New()
	return NewRunner(cfg, art, services.NewFactory(cfg, log), log, RunnerDeps{
		Downloader: func(destDir string) services.Downloader {
			return services.NewYouTubeService(destDir, cfg.YouTube, exec, log)
		},
		Prober:  services.NewFFProbeService(exec, log),
		Chunker: NewFFmpegChunker(exec, log),
		Sink:    sink,
	})
}

func (r *Runner) save(ctx context.Context, rec *models.PipelineResult) {
	if r.sink == nil {
		return
	}
	if err := r.sink.Save(ctx, rec); err != nil {
		r.logger.Warn(ctx, "job %s: save job record: %v", rec.JobID, err)
	}
}

func wantsTraditionalChinese(lang string) bool {
	switch strings.ToLower(lang) {
	case "zh-tw", "zh-hant", "zh-hk":
		return true
	}
	return false
}
