package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kfujii/kabumori/internal/common"
	"github.com/kfujii/kabumori/internal/models"
)

// --- Mock market data client ---

type mockClient struct {
	history map[string][]models.EODBar
	errs    map[string]error
}

func (m *mockClient) GetPriceHistory(_ context.Context, ticker string, _ int) ([]models.EODBar, error) {
	if err, ok := m.errs[ticker]; ok {
		return nil, err
	}
	return m.history[ticker], nil
}

func (m *mockClient) GetFundamentals(_ context.Context, ticker string) (*models.Fundamentals, error) {
	return &models.Fundamentals{Ticker: ticker}, nil
}

// barsFromCloses builds a newest-first bar slice from chronological closes.
func barsFromCloses(closes ...float64) []models.EODBar {
	bars := make([]models.EODBar, len(closes))
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[len(closes)-1-i] = models.EODBar{
			Date:  base.AddDate(0, 0, i),
			Close: c,
		}
	}
	return bars
}

func testConfig() common.RiskConfig {
	return common.RiskConfig{
		LookbackDays:   365,
		TradingDays:    252,
		RiskFreeRate:   0.005,
		MinBetaOverlap: 2,
		MinVaRPoints:   10,
		DefaultIndex:   "^GSPC",
		IndexRules:     []common.IndexRule{{Suffix: ".T", Index: "^N225"}},
	}
}

func testPortfolio(holdings ...models.Holding) *models.Portfolio {
	return &models.Portfolio{ID: "main", Name: "main", Holdings: holdings}
}

func TestComputeRiskMetrics_SingleTicker(t *testing.T) {
	closes := barsFromCloses(100, 94, 110)
	client := &mockClient{history: map[string][]models.EODBar{
		"AAPL":  closes,
		"^GSPC": closes,
	}}
	svc := NewService(client, testConfig(), common.NewSilentLogger())

	metrics, err := svc.ComputeRiskMetrics(context.Background(), testPortfolio(
		models.Holding{Ticker: "AAPL", Shares: 10, CostBasis: 100},
	))
	require.NoError(t, err)

	assert.Equal(t, "main", metrics.PortfolioName)
	assert.InDelta(t, 1.0, metrics.HHI, 1e-9, "single holding concentrates fully")
	assert.InDelta(t, 0.06, metrics.MaxDrawdown, 1e-4)
	assert.Greater(t, metrics.PortfolioVolatility, 0.0)
	assert.Equal(t, 0.0, metrics.AvgCorrelation, "needs two tickers")
	assert.Empty(t, metrics.SkippedTickers)

	// identical series against its index
	assert.InDelta(t, 1.0, metrics.Betas["AAPL"], 1e-3)
	assert.Greater(t, metrics.IndividualVolatilities["AAPL"], 0.0)
}

func TestComputeRiskMetrics_IndexSelection(t *testing.T) {
	closes := barsFromCloses(100, 102, 101, 105)
	doubled := barsFromCloses(100, 104, 102, 110.1)
	client := &mockClient{history: map[string][]models.EODBar{
		"7203.T": doubled,
		"^N225":  closes,
	}}
	svc := NewService(client, testConfig(), common.NewSilentLogger())

	metrics, err := svc.ComputeRiskMetrics(context.Background(), testPortfolio(
		models.Holding{Ticker: "7203.T", Shares: 100, CostBasis: 90},
	))
	require.NoError(t, err)

	// the .T suffix routes beta against ^N225, which the mock serves;
	// ^GSPC is never requested
	beta, ok := metrics.Betas["7203.T"]
	require.True(t, ok)
	assert.NotEqual(t, 1.0, beta)
}

func TestComputeRiskMetrics_SkipsBadTickers(t *testing.T) {
	client := &mockClient{
		history: map[string][]models.EODBar{
			"AAPL": barsFromCloses(100, 94, 110),
			"ONE":  barsFromCloses(50),
			"NONE": {},
		},
		errs: map[string]error{"BOOM": errors.New("api down")},
	}
	// route everything to a missing index so betas default
	cfg := testConfig()
	cfg.DefaultIndex = ""
	svc := NewService(client, cfg, common.NewSilentLogger())

	metrics, err := svc.ComputeRiskMetrics(context.Background(), testPortfolio(
		models.Holding{Ticker: "AAPL", Shares: 10, CostBasis: 100},
		models.Holding{Ticker: "ONE", Shares: 5, CostBasis: 40},
		models.Holding{Ticker: "NONE", Shares: 5, CostBasis: 40},
		models.Holding{Ticker: "BOOM", Shares: 5, CostBasis: 40},
	))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"ONE":  "insufficient price history",
		"NONE": "no price history",
		"BOOM": "price fetch failed",
	}, metrics.SkippedTickers)

	// only AAPL survives, so concentration is total
	assert.InDelta(t, 1.0, metrics.HHI, 1e-9)
	assert.InDelta(t, 1.0, metrics.Betas["AAPL"], 1e-9, "no index data defaults beta")
}

func TestComputeRiskMetrics_EqualWeights(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultIndex = ""
	client := &mockClient{history: map[string][]models.EODBar{
		"A": barsFromCloses(100, 101, 99, 102),
		"B": barsFromCloses(100, 98, 103, 101),
	}}
	svc := NewService(client, cfg, common.NewSilentLogger())

	metrics, err := svc.ComputeRiskMetrics(context.Background(), testPortfolio(
		models.Holding{Ticker: "A", Shares: 10, CostBasis: 90},
		models.Holding{Ticker: "B", Shares: 10, CostBasis: 90},
	))
	require.NoError(t, err)

	// latest closes are ~equal so HHI sits near 1/2
	assert.InDelta(t, 0.5, metrics.HHI, 0.001)
	assert.NotZero(t, metrics.AvgCorrelation)
}

func TestComputeRiskMetrics_EmptyPortfolio(t *testing.T) {
	svc := NewService(&mockClient{}, testConfig(), common.NewSilentLogger())

	metrics, err := svc.ComputeRiskMetrics(context.Background(), testPortfolio())
	require.NoError(t, err)

	assert.Equal(t, 0.0, metrics.HHI)
	assert.Equal(t, 0.0, metrics.PortfolioVolatility)
	assert.Equal(t, 0.0, metrics.VaR95)
	assert.Empty(t, metrics.Betas)
}

func TestAverageCorrelation_PairwiseOverlap(t *testing.T) {
	svc := NewService(&mockClient{}, testConfig(), common.NewSilentLogger())

	dates := []string{"2026-01-05", "2026-01-06", "2026-01-07"}
	a := TickerReturns{Ticker: "A", Dates: dates, Values: []float64{0.01, 0.02, 0.03}}
	b := TickerReturns{Ticker: "B", Dates: dates, Values: []float64{0.02, 0.04, 0.06}}

	// linearly related series correlate at exactly 1
	got := svc.averageCorrelation([]TickerReturns{a, b})
	assert.InDelta(t, 1.0, got, 1e-9)

	assert.Equal(t, 0.0, svc.averageCorrelation([]TickerReturns{a}))
}
