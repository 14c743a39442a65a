package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jchen-labs/media-summary/internal/artifacts"
	"github.com/jchen-labs/media-summary/internal/cleanup"
	"github.com/jchen-labs/media-summary/internal/config"
	"github.com/jchen-labs/media-summary/internal/export"
	"github.com/jchen-labs/media-summary/internal/handlers"
	"github.com/jchen-labs/media-summary/internal/jobstore"
	"github.com/jchen-labs/media-summary/internal/logger"
	"github.com/jchen-labs/media-summary/internal/models"
	"github.com/jchen-labs/media-summary/internal/pipeline"
	"github.com/jchen-labs/media-summary/internal/queue"
	"github.com/jchen-labs/media-summary/internal/watcher"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLog := logger.New(cfg.Logging.Level)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, dir := range []string{cfg.Storage.TempDir, cfg.Storage.OutputDir} {
		if err := cleanup.EnsureDir(dir); err != nil {
			log.Fatalf("create %s: %v", dir, err)
		}
	}

	art, err := artifacts.New(cfg.Storage.ArtifactsDir)
	if err != nil {
		log.Fatalf("init artifact cache: %v", err)
	}

	store, err := jobstore.Open(cfg.JobStore, cfg.Storage.Database)
	if err != nil {
		log.Fatalf("open job store: %v", err)
	}
	defer store.Close()

	// Drive export is optional: missing credentials means local-only
	// delivery, not a startup failure.
	var drive *export.DriveUploader
	if cfg.Drive.CredentialsFile != "" {
		if _, err := os.Stat(cfg.Drive.CredentialsFile); err == nil {
			drive, err = export.NewDriveUploader(ctx, cfg.Drive.CredentialsFile, cfg.Drive.TokenFile, cfg.Drive.FolderName)
			if err != nil {
				appLog.Warn(ctx, "google drive unavailable, saving locally only: %v", err)
				drive = nil
			} else {
				appLog.Info(ctx, "google drive export enabled (folder %q)", cfg.Drive.FolderName)
			}
		} else {
			appLog.Info(ctx, "google drive credentials not found, saving locally only")
		}
	}

	hub := handlers.NewHub(appLog)
	sink := pipeline.MultiSink{storeSink{store}, hub}
	runner := pipeline.NewDefaultRunner(cfg, art, appLog, sink)
	publisher := export.NewPublisher(cfg.Storage.OutputDir, true, drive, appLog)

	pool := queue.NewWorkerPool(cfg.Workers.Count, runner, publisher, appLog)
	pool.Start(ctx)

	sched := cleanup.NewScheduler(
		cfg.Storage.TempDir,
		filepath.Join(cfg.Storage.ArtifactsDir, "chunks"),
		cfg.Cleanup.IntervalMinutes,
		cfg.Cleanup.MaxAgeHours,
		appLog,
	)
	sched.Start(ctx)
	defer sched.Stop()

	if cfg.Watcher.Enabled {
		if err := startInboxWatcher(ctx, cfg, pool, store, appLog); err != nil {
			log.Fatalf("start inbox watcher: %v", err)
		}
	}

	app := fiber.New(fiber.Config{
		BodyLimit: cfg.Limits.MaxFileSizeMB * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	api := handlers.NewAPI(cfg, store, pool, hub, appLog)
	api.Register(app)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		appLog.Info(ctx, "shutting down")
		cancel()
		app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLog.Info(ctx, "server listening on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// storeSink adapts the job store to the pipeline sink interface.
type storeSink struct {
	store jobstore.Store
}

func (s storeSink) Save(ctx context.Context, rec *models.PipelineResult) error {
	return s.store.Save(ctx, rec)
}

// startInboxWatcher submits every audio file dropped into the inbox as
// an audio_file job with the configured defaults.
func startInboxWatcher(ctx context.Context, cfg *config.Config, pool *queue.WorkerPool, store jobstore.Store, appLog logger.Logger) error {
	if err := cleanup.EnsureDir(cfg.Watcher.InboxDir); err != nil {
		return err
	}

	w, err := watcher.New(cfg.Watcher.InboxDir, func(ctx context.Context, filePath string) error {
		input, err := models.NewPipelineInput(models.PipelineInput{
			EntryPoint:       models.EntryAudioFile,
			AudioFilePath:    filePath,
			ChunkSizeMinutes: cfg.Pipeline.ChunkSizeMinutes,
			TargetLanguage:   cfg.Pipeline.TargetLanguage,
		})
		if err != nil {
			return err
		}
		if err := store.Save(ctx, models.NewPendingRecord(input)); err != nil {
			return err
		}
		return pool.Enqueue(input)
	}, appLog)
	if err != nil {
		return err
	}

	go func() {
		if err := w.Start(ctx); err != nil && ctx.Err() == nil {
			appLog.Error(ctx, "inbox watcher exited: %v", err)
		}
		w.Stop()
	}()
	return nil
}
