package pipelineimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ScheduleCycles runs a monitoring cycle at a random interval between the
// configured bounds. Singleton mode keeps cycles from overlapping; a slow
// cycle simply delays the next one.
func (p *PipelineImpl) ScheduleCycles(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	minInterval := time.Duration(p.Config.Monitor.IntervalMin) * time.Minute
	maxInterval := time.Duration(p.Config.Monitor.IntervalMax) * time.Minute

	_, err = scheduler.NewJob(
		gocron.DurationRandomJob(minInterval, maxInterval),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				p.Logger.Info("Context cancelled, stopping monitoring cycles")
				return
			}
			p.RunCycle(ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule monitoring cycles: %w", err)
	}

	scheduler.Start()
	p.Logger.Info("Scheduled monitoring cycles", "min", minInterval, "max", maxInterval)

	go func() {
		<-ctx.Done()
		p.Logger.Info("Stopping cycle scheduler")
		if err := scheduler.Shutdown(); err != nil {
			p.Logger.Error("Failed to shut down scheduler", "error", err)
		}
	}()

	return nil
}
