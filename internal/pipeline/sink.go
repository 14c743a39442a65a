package pipeline

import (
	"context"

	"github.com/jchen-labs/media-summary/internal/models"
)

// MultiSink fans job record saves out to several sinks. Every sink is
// attempted; the first error is returned after all have run.
type MultiSink []Sink

func (m MultiSink) Save(ctx context.Context, rec *models.PipelineResult) error {
	var firstErr error
	for _, s := range m {
		if err := s.Save(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
