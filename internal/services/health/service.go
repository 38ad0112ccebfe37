// Package health maps risk metrics and holdings into the composite 0-100
// portfolio health score.
package health

import (
	"context"
	"math"
	"time"

	"github.com/kfujii/kabumori/internal/common"
	"github.com/kfujii/kabumori/internal/interfaces"
	"github.com/kfujii/kabumori/internal/models"
)

// recentWindowDays is the price window fetched to compare current prices
// against cost basis.
const recentWindowDays = 10

// Service implements HealthService
type Service struct {
	client interfaces.MarketDataClient
	config common.HealthConfig
	logger *common.Logger
}

// NewService creates a new health scoring service
func NewService(client interfaces.MarketDataClient, config common.HealthConfig, logger *common.Logger) *Service {
	return &Service{
		client: client,
		config: config,
		logger: logger,
	}
}

// ScoreHealth computes the weighted composite health snapshot from a risk
// metrics snapshot plus the unrealized-loss ratio of the holdings.
func (s *Service) ScoreHealth(ctx context.Context, portfolio *models.Portfolio, metrics *models.RiskMetrics) (*models.HealthScore, error) {
	now := time.Now()

	if len(portfolio.Holdings) == 0 {
		return &models.HealthScore{
			PortfolioName: portfolio.Name,
			Date:          now.Format("2006-01-02"),
			Total:         0,
			Tier:          models.TierRed,
			Message:       "Portfolio has no holdings.",
			ComputedAt:    now,
		}, nil
	}

	lossRatio := s.unrealizedLossRatio(ctx, portfolio)

	breakdown := models.ScoreBreakdown{
		Diversity:      scoreInverse(metrics.HHI, s.config.HHIGood, s.config.HHIBad),
		Volatility:     scoreInverse(metrics.PortfolioVolatility, s.config.VolGood, s.config.VolBad),
		Drawdown:       scoreInverse(metrics.MaxDrawdown, s.config.DrawdownGood, s.config.DrawdownBad),
		Correlation:    scoreInverse(metrics.AvgCorrelation, s.config.CorrGood, s.config.CorrBad),
		UnrealizedLoss: scoreInverse(lossRatio, s.config.LossGood, s.config.LossBad),
	}

	total := breakdown.Diversity*s.config.WeightDiversity +
		breakdown.Volatility*s.config.WeightVolatility +
		breakdown.Drawdown*s.config.WeightDrawdown +
		breakdown.Correlation*s.config.WeightCorrelation +
		breakdown.UnrealizedLoss*s.config.WeightLoss
	total = round2(clip(total, 0, 100))

	tier, message := s.classify(total)

	breakdown.Diversity = round2(breakdown.Diversity)
	breakdown.Volatility = round2(breakdown.Volatility)
	breakdown.Drawdown = round2(breakdown.Drawdown)
	breakdown.Correlation = round2(breakdown.Correlation)
	breakdown.UnrealizedLoss = round2(breakdown.UnrealizedLoss)

	score := &models.HealthScore{
		PortfolioName: portfolio.Name,
		Date:          now.Format("2006-01-02"),
		Total:         total,
		Tier:          tier,
		Message:       message,
		Breakdown:     breakdown,
		ComputedAt:    now,
	}

	s.logger.Debug().
		Str("portfolio", portfolio.Name).
		Float64("total", total).
		Str("tier", string(tier)).
		Msg("Health score computed")

	return score, nil
}

// unrealizedLossRatio is the fraction of holdings trading below cost basis.
// Holdings without an available price are excluded from both numerator and
// denominator.
func (s *Service) unrealizedLossRatio(ctx context.Context, portfolio *models.Portfolio) float64 {
	lossCount := 0
	total := 0

	for _, h := range portfolio.Holdings {
		if h.CostBasis <= 0 {
			continue
		}

		bars, err := s.client.GetPriceHistory(ctx, h.Ticker, recentWindowDays)
		if err != nil || len(bars) == 0 {
			continue
		}

		total++
		if bars[0].Close < h.CostBasis {
			lossCount++
		}
	}

	if total == 0 {
		return 0
	}
	return float64(lossCount) / float64(total)
}

// classify maps a total score to its traffic-light tier and message.
func (s *Service) classify(total float64) (models.HealthTier, string) {
	switch {
	case total >= s.config.GreenThreshold:
		return models.TierGreen, "Portfolio is healthy. No action needed."
	case total >= s.config.YellowThreshold:
		return models.TierYellow, "Portfolio needs attention. Review the weaker sub-scores."
	default:
		return models.TierRed, "Portfolio is at risk. Consider concrete rebalancing actions."
	}
}

// scoreInverse maps a quantity where lower is better onto [0,100]: at or
// below good scores 100, at or above bad scores 0, linear in between.
func scoreInverse(value, good, bad float64) float64 {
	if bad == good {
		return 50
	}
	return clip((bad-value)/(bad-good)*100, 0, 100)
}

func clip(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Ensure Service implements HealthService
var _ interfaces.HealthService = (*Service)(nil)
