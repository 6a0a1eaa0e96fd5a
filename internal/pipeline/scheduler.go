package pipeline

import (
	"context"
	"time"

	"blogsmith/internal/logger"
)

// Scheduler runs the pipeline on a fixed interval until the context is
// cancelled. Each tick is one ordered run; ticks never overlap because the
// loop is single-threaded.
type Scheduler struct {
	pipeline *Pipeline
	interval time.Duration
}

// NewScheduler wraps a pipeline in an interval loop.
func NewScheduler(p *Pipeline, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{pipeline: p, interval: interval}
}

// Start runs immediately, then once per interval. It blocks until ctx is
// cancelled and returns ctx.Err().
func (s *Scheduler) Start(ctx context.Context) error {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	result, err := s.pipeline.Run(ctx)
	if err != nil {
		logger.Error("pipeline run failed", err)
		return
	}
	if result.Skipped {
		logger.Info("pipeline run skipped", "process_id", result.ProcessID, "note", result.SkipNote)
		return
	}
	logger.Info("pipeline run completed",
		"process_id", result.ProcessID,
		"post_id", result.Post.ID,
		"slug", result.Post.Slug,
		"published", len(result.Published),
		"degraded", result.Degraded,
	)
}
