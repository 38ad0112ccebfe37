package app

import (
	"context"
	"time"
)

// startScheduler runs the analytics pipeline on the configured interval and
// the expired-signal sweep on its own slower interval. One pipeline pass
// runs immediately at startup so a fresh install has data without waiting a
// day.
func startScheduler(ctx context.Context, a *App) {
	runInterval := a.Config.Scheduler.GetRunInterval()
	sweepInterval := a.Config.Scheduler.GetSweepInterval()

	a.Logger.Info().
		Dur("run_interval", runInterval).
		Dur("sweep_interval", sweepInterval).
		Msg("Scheduler started")

	if err := a.RunPipeline(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("Initial pipeline run failed")
	}

	runTicker := time.NewTicker(runInterval)
	defer runTicker.Stop()
	sweepTicker := time.NewTicker(sweepInterval)
	defer sweepTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.Logger.Info().Msg("Scheduler stopped")
			return
		case <-runTicker.C:
			if err := a.RunPipeline(ctx); err != nil {
				a.Logger.Error().Err(err).Msg("Pipeline run failed")
			}
		case <-sweepTicker.C:
			if err := a.RunSweep(ctx); err != nil {
				a.Logger.Error().Err(err).Msg("Signal sweep failed")
			}
		}
	}
}
