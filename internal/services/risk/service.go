// Package risk computes portfolio risk metrics from holdings and price
// history.
package risk

import (
	"context"
	"time"

	"github.com/kfujii/kabumori/internal/common"
	"github.com/kfujii/kabumori/internal/interfaces"
	"github.com/kfujii/kabumori/internal/models"
)

// Service implements RiskService
type Service struct {
	client interfaces.MarketDataClient
	config common.RiskConfig
	logger *common.Logger
}

// NewService creates a new risk metrics service
func NewService(client interfaces.MarketDataClient, config common.RiskConfig, logger *common.Logger) *Service {
	return &Service{
		client: client,
		config: config,
		logger: logger,
	}
}

// ComputeRiskMetrics derives the full risk snapshot for a portfolio.
// Tickers without usable price data degrade to skip entries; the call only
// errors on invariant violations, never on missing market data.
func (s *Service) ComputeRiskMetrics(ctx context.Context, portfolio *models.Portfolio) (*models.RiskMetrics, error) {
	metrics := &models.RiskMetrics{
		PortfolioName:          portfolio.Name,
		Date:                   time.Now().Format(dateLayout),
		Betas:                  map[string]float64{},
		IndividualVolatilities: map[string]float64{},
		SkippedTickers:         map[string]string{},
		ComputedAt:             time.Now(),
	}

	shares := map[string]float64{}
	for _, h := range portfolio.Holdings {
		shares[h.Ticker] += h.Shares
	}

	var series []TickerReturns
	weights := map[string]float64{}
	for _, ticker := range portfolio.Tickers() {
		bars, err := s.client.GetPriceHistory(ctx, ticker, s.config.LookbackDays)
		if err != nil {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Price history unavailable, skipping ticker")
			metrics.SkippedTickers[ticker] = "price fetch failed"
			continue
		}

		tr := buildTickerReturns(ticker, bars)
		if tr.Skipped() {
			metrics.SkippedTickers[ticker] = tr.SkipReason
			continue
		}

		series = append(series, tr)
		weights[ticker] = tr.LatestClose * shares[ticker]
	}

	totalValue := 0.0
	for _, w := range weights {
		totalValue += w
	}
	normWeights := map[string]float64{}
	if totalValue > 0 {
		for t, w := range weights {
			normWeights[t] = w / totalValue
		}
	}

	metrics.HHI = round4(HHI(weights))

	pfReturns := portfolioReturns(series, normWeights)
	metrics.PortfolioVolatility = round4(Volatility(pfReturns, s.config.TradingDays, true))
	metrics.MaxDrawdown = round4(MaxDrawdown(cumulativeCurve(pfReturns)))
	metrics.SharpeRatio = round4(SharpeRatio(pfReturns, s.config.RiskFreeRate, s.config.TradingDays))
	metrics.VaR95 = round4(VaR(pfReturns, 0.95, 1.0, s.config.MinVaRPoints))
	metrics.VaR99 = round4(VaR(pfReturns, 0.99, 1.0, s.config.MinVaRPoints))
	metrics.AvgCorrelation = round4(s.averageCorrelation(series))

	indexReturns := s.fetchIndexReturns(ctx, series)
	for _, tr := range series {
		metrics.IndividualVolatilities[tr.Ticker] = round4(Volatility(tr.Values, s.config.TradingDays, true))

		beta := 1.0
		if idx, ok := indexReturns[s.config.IndexFor(tr.Ticker)]; ok {
			stock, market := alignPair(tr, idx)
			beta = Beta(stock, market, s.config.MinBetaOverlap)
		}
		metrics.Betas[tr.Ticker] = round3(beta)
	}

	s.logger.Debug().
		Str("portfolio", portfolio.Name).
		Int("tickers", len(series)).
		Int("skipped", len(metrics.SkippedTickers)).
		Float64("volatility", metrics.PortfolioVolatility).
		Float64("hhi", metrics.HHI).
		Msg("Risk metrics computed")

	return metrics, nil
}

// averageCorrelation is the mean pairwise Pearson correlation, each pair
// aligned on its own overlapping dates. Zero with fewer than two series.
func (s *Service) averageCorrelation(series []TickerReturns) float64 {
	if len(series) < 2 {
		return 0
	}

	sum := 0.0
	count := 0
	for i := 0; i < len(series); i++ {
		for j := i + 1; j < len(series); j++ {
			a, b := alignPair(series[i], series[j])
			sum += Pearson(a, b)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// fetchIndexReturns fetches each market index needed for the given tickers
// exactly once.
func (s *Service) fetchIndexReturns(ctx context.Context, series []TickerReturns) map[string]TickerReturns {
	needed := map[string]bool{}
	for _, tr := range series {
		needed[s.config.IndexFor(tr.Ticker)] = true
	}

	out := map[string]TickerReturns{}
	for index := range needed {
		if index == "" {
			continue
		}
		bars, err := s.client.GetPriceHistory(ctx, index, s.config.LookbackDays)
		if err != nil {
			s.logger.Warn().Str("index", index).Err(err).Msg("Market index history unavailable, betas default to 1.0")
			continue
		}
		tr := buildTickerReturns(index, bars)
		if tr.Skipped() {
			continue
		}
		out[index] = tr
	}
	return out
}

// Ensure Service implements RiskService
var _ interfaces.RiskService = (*Service)(nil)
