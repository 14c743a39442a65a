// Package queue runs accepted jobs on a fixed pool of workers feeding
// off a buffered channel.
package queue

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/jchen-labs/media-summary/internal/export"
	"github.com/jchen-labs/media-summary/internal/logger"
	"github.com/jchen-labs/media-summary/internal/models"
	"github.com/jchen-labs/media-summary/internal/pipeline"
)

const queueCapacity = 100

// WorkerPool dispatches queued pipeline inputs to the flow runner.
type WorkerPool struct {
	jobQueue    chan *models.PipelineInput
	workerCount int
	runner      *pipeline.Runner
	publisher   *export.Publisher
	logger      logger.Logger
}

func NewWorkerPool(workerCount int, runner *pipeline.Runner, publisher *export.Publisher, log logger.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &WorkerPool{
		jobQueue:    make(chan *models.PipelineInput, queueCapacity),
		workerCount: workerCount,
		runner:      runner,
		publisher:   publisher,
		logger:      log,
	}
}

// Start launches the workers. They exit when ctx is cancelled or the
// queue is closed.
func (wp *WorkerPool) Start(ctx context.Context) {
	wp.logger.Info(ctx, "starting worker pool with %d workers", wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		go wp.worker(ctx, i)
	}
}

// Enqueue adds a job to the queue. It fails instead of blocking when
// the queue is full, so the HTTP layer can report backpressure.
func (wp *WorkerPool) Enqueue(input *models.PipelineInput) error {
	select {
	case wp.jobQueue <- input:
		wp.logger.Info(context.Background(), "job %s enqueued (%s)", input.JobID, input.EntryPoint)
		return nil
	default:
		return fmt.Errorf("job queue is full (%d pending)", queueCapacity)
	}
}

// Pending reports the number of queued jobs not yet picked up.
func (wp *WorkerPool) Pending() int {
	return len(wp.jobQueue)
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.logger.Debug(ctx, "worker %d started", id)
	for {
		select {
		case <-ctx.Done():
			return
		case input, ok := <-wp.jobQueue:
			if !ok {
				return
			}
			wp.process(ctx, id, input)
		}
	}
}

func (wp *WorkerPool) process(ctx context.Context, id int, input *models.PipelineInput) {
	// The runner contains its own panic recovery; this guard protects
	// the worker loop from publisher faults.
	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error(ctx, "worker %d: panic processing job %s: %v\n%s",
				id, input.JobID, r, string(debug.Stack()))
		}
	}()

	wp.logger.Debug(ctx, "worker %d: processing job %s", id, input.JobID)
	rec := wp.runner.Run(ctx, input)

	if wp.publisher != nil {
		wp.publisher.Publish(ctx, rec)
	}
}
