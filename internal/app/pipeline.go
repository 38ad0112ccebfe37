package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kfujii/kabumori/internal/models"
)

// System KV keys for run bookkeeping.
const (
	kvLastRun   = "pipeline_last_run"
	kvLastSweep = "pipeline_last_sweep"
)

// runRecord is the last-run status stored in the system KV.
type runRecord struct {
	StartedAt  string `json:"started_at"`
	DurationMS int64  `json:"duration_ms"`
	Processed  int    `json:"processed"`
	Failed     int    `json:"failed"`
}

// RunPipeline executes one full analytics pass: risk metrics, health score,
// and alerts for every stored portfolio, then a signal scan across the
// watchlist and holdings tickers. A failure in one portfolio is logged and
// does not stop the others.
func (a *App) RunPipeline(ctx context.Context) error {
	start := time.Now()

	names, err := a.Storage.Portfolios().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list portfolios: %w", err)
	}

	processed := 0
	for _, name := range names {
		if err := a.runPortfolio(ctx, name); err != nil {
			a.Logger.Error().Err(err).Str("portfolio", name).Msg("Portfolio processing failed, continuing with remaining portfolios")
			continue
		}
		processed++
	}

	if err := a.runSignalScan(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("Signal scan failed")
	}

	record, _ := json.Marshal(runRecord{
		StartedAt:  start.Format(time.RFC3339),
		DurationMS: time.Since(start).Milliseconds(),
		Processed:  processed,
		Failed:     len(names) - processed,
	})
	if err := a.Storage.SystemKV().Set(ctx, kvLastRun, string(record)); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to record pipeline run status")
	}

	a.Logger.Info().
		Int("portfolios", processed).
		Int("total", len(names)).
		Dur("elapsed", time.Since(start)).
		Msg("Pipeline run complete")

	return nil
}

// runPortfolio computes and persists one portfolio's daily outputs. A panic
// inside the analytic services is converted to an error so one bad
// portfolio cannot take down the batch. Nothing is written unless the
// computation for that stage succeeded.
func (a *App) runPortfolio(ctx context.Context, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing portfolio '%s': %v", name, r)
		}
	}()

	portfolio, err := a.Storage.Portfolios().Get(ctx, name)
	if err != nil {
		return err
	}

	metrics, err := a.RiskService.ComputeRiskMetrics(ctx, portfolio)
	if err != nil {
		return fmt.Errorf("risk metrics: %w", err)
	}
	if err := a.Storage.RiskMetrics().Upsert(ctx, metrics); err != nil {
		return fmt.Errorf("persist risk metrics: %w", err)
	}

	score, err := a.HealthService.ScoreHealth(ctx, portfolio, metrics)
	if err != nil {
		return fmt.Errorf("health score: %w", err)
	}
	if err := a.Storage.HealthScores().Upsert(ctx, score); err != nil {
		return fmt.Errorf("persist health score: %w", err)
	}

	alerts, err := a.AlertService.GenerateAlerts(ctx, portfolio, score)
	if err != nil {
		return fmt.Errorf("alerts: %w", err)
	}
	if err := a.Storage.Alerts().Append(ctx, alerts); err != nil {
		return fmt.Errorf("persist alerts: %w", err)
	}

	a.Logger.Info().
		Str("portfolio", name).
		Float64("health", score.Total).
		Str("tier", string(score.Tier)).
		Int("alerts", len(alerts)).
		Msg("Portfolio processed")

	return nil
}

// runSignalScan detects signals across the union of watchlist tickers and
// every portfolio holding, then appends the results. Panics are converted
// to errors the same way runPortfolio does.
func (a *App) runSignalScan(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during signal scan: %v", r)
		}
	}()

	tickers, err := a.scanTickers(ctx)
	if err != nil {
		return err
	}
	if len(tickers) == 0 {
		return nil
	}

	detected, err := a.SignalService.DetectSignals(ctx, tickers)
	if err != nil {
		return fmt.Errorf("detect signals: %w", err)
	}
	if err := a.Storage.Signals().Append(ctx, detected); err != nil {
		return fmt.Errorf("persist signals: %w", err)
	}

	a.Logger.Info().
		Int("tickers", len(tickers)).
		Int("signals", len(detected)).
		Msg("Signal scan complete")

	return nil
}

func (a *App) scanTickers(ctx context.Context) ([]string, error) {
	tickers, err := a.Storage.Watchlists().AllTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("watchlist tickers: %w", err)
	}

	seen := map[string]bool{}
	for _, t := range tickers {
		seen[t] = true
	}

	names, err := a.Storage.Portfolios().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}
	for _, name := range names {
		var portfolio *models.Portfolio
		portfolio, err = a.Storage.Portfolios().Get(ctx, name)
		if err != nil {
			a.Logger.Warn().Err(err).Str("portfolio", name).Msg("Skipping portfolio in signal scan")
			continue
		}
		for _, t := range portfolio.Tickers() {
			if !seen[t] {
				seen[t] = true
				tickers = append(tickers, t)
			}
		}
	}

	return tickers, nil
}

// RunSweep invalidates signals whose expiry has passed.
func (a *App) RunSweep(ctx context.Context) error {
	count, err := a.Storage.Signals().InvalidateExpired(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("invalidate expired signals: %w", err)
	}

	if err := a.Storage.SystemKV().Set(ctx, kvLastSweep, time.Now().Format(time.RFC3339)); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to record sweep time")
	}

	a.Logger.Info().Int("invalidated", count).Msg("Signal sweep complete")
	return nil
}
