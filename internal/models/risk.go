package models

import (
	"time"
)

// RiskMetrics is an immutable snapshot of portfolio risk statistics for a
// single run. Persisted as an upsert keyed by (portfolio, date) so rerunning
// the same day replaces the earlier snapshot.
type RiskMetrics struct {
	PortfolioName string `json:"portfolio_name"`
	Date          string `json:"date"` // YYYY-MM-DD run date

	PortfolioVolatility float64 `json:"portfolio_volatility"` // annualized, fractional
	MaxDrawdown         float64 `json:"max_drawdown"`         // positive fraction
	SharpeRatio         float64 `json:"sharpe_ratio"`
	HHI                 float64 `json:"hhi"` // 0..1 concentration index
	VaR95               float64 `json:"var_95"`
	VaR99               float64 `json:"var_99"`
	AvgCorrelation      float64 `json:"avg_correlation"`

	Betas                  map[string]float64 `json:"betas"`
	IndividualVolatilities map[string]float64 `json:"individual_volatilities"`

	// SkippedTickers records holdings excluded from the computation and why
	// (e.g. "no price history"), so callers can distinguish zero risk from
	// absent data.
	SkippedTickers map[string]string `json:"skipped_tickers,omitempty"`

	ComputedAt time.Time `json:"computed_at"`
}

// HealthTier is the traffic-light classification of a health score
type HealthTier string

const (
	TierGreen  HealthTier = "green"
	TierYellow HealthTier = "yellow"
	TierRed    HealthTier = "red"
)

// ScoreBreakdown holds the five weighted sub-scores, each in [0,100].
type ScoreBreakdown struct {
	Diversity      float64 `json:"diversity"`
	Volatility     float64 `json:"volatility"`
	Drawdown       float64 `json:"drawdown"`
	Correlation    float64 `json:"correlation"`
	UnrealizedLoss float64 `json:"unrealized_loss"`
}

// HealthScore is the composite 0-100 portfolio health snapshot, keyed by
// (portfolio, date) like RiskMetrics.
type HealthScore struct {
	PortfolioName string         `json:"portfolio_name"`
	Date          string         `json:"date"`
	Total         float64        `json:"total"` // 0..100
	Tier          HealthTier     `json:"tier"`
	Message       string         `json:"message"`
	Breakdown     ScoreBreakdown `json:"breakdown"`
	ComputedAt    time.Time      `json:"computed_at"`
}
