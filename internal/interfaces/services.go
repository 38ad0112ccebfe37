// Package interfaces defines service contracts for Kabumori
package interfaces

import (
	"context"

	"github.com/kfujii/kabumori/internal/models"
)

// RiskService computes portfolio risk statistics.
type RiskService interface {
	// ComputeRiskMetrics derives the full metric snapshot for a portfolio.
	// Missing or short price data degrades per ticker (recorded in
	// SkippedTickers), never errors.
	ComputeRiskMetrics(ctx context.Context, portfolio *models.Portfolio) (*models.RiskMetrics, error)
}

// HealthService maps risk metrics and holdings into a composite score.
type HealthService interface {
	// ScoreHealth returns the 0-100 health snapshot. An empty portfolio
	// yields the degenerate {0, red} result.
	ScoreHealth(ctx context.Context, portfolio *models.Portfolio, metrics *models.RiskMetrics) (*models.HealthScore, error)
}

// AlertSuppressor decides whether an alert that fired should be emitted.
// The engine re-evaluates every rule on every run; a suppressor lets a
// caller deduplicate against prior emissions without changing engine
// semantics. The default implementation passes everything through.
type AlertSuppressor interface {
	Suppress(ctx context.Context, alert *models.Alert) bool
}

// AlertService evaluates the ten warning rules for a portfolio.
type AlertService interface {
	// GenerateAlerts evaluates every rule and returns all that fired,
	// sorted by level descending with rule evaluation order as tiebreak.
	GenerateAlerts(ctx context.Context, portfolio *models.Portfolio, health *models.HealthScore) ([]*models.Alert, error)
}

// SignalService runs the three pattern detectors over tickers.
type SignalService interface {
	// DetectSignals scans each ticker independently and returns the union
	// of detected signals ordered by priority (high, medium, low). Tickers
	// without price data are skipped silently.
	DetectSignals(ctx context.Context, tickers []string) ([]*models.Signal, error)
}
