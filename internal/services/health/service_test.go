package health

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

type mockClient struct {
	latestClose map[string]float64
	errs        map[string]error
}

func (m *mockClient) GetPriceHistory(_ context.Context, ticker string, _ int) ([]models.EODBar, error) {
	if err, ok := m.errs[ticker]; ok {
		return nil, err
	}
	price, ok := m.latestClose[ticker]
	if !ok {
		return nil, nil
	}
	return []models.EODBar{
		{Date: time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC), Close: price},
		{Date: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), Close: price},
	}, nil
}

func (m *mockClient) GetFundamentals(_ context.Context, ticker string) (*models.Fundamentals, error) {
	return &models.Fundamentals{Ticker: ticker}, nil
}

func testConfig() common.HealthConfig {
	return common.HealthConfig{
		HHIGood: 0.10, HHIBad: 0.50,
		VolGood: 0.15, VolBad: 0.40,
		DrawdownGood: 0.05, DrawdownBad: 0.30,
		CorrGood: 0.30, CorrBad: 0.80,
		LossGood: 0.00, LossBad: 0.50,

		WeightDiversity:   0.30,
		WeightVolatility:  0.25,
		WeightDrawdown:    0.20,
		WeightCorrelation: 0.15,
		WeightLoss:        0.10,

		GreenThreshold:  70,
		YellowThreshold: 40,
	}
}

func testPortfolio(holdings ...models.Holding) *models.Portfolio {
	return &models.Portfolio{ID: "main", Name: "main", Holdings: holdings}
}

func TestScoreHealth_AllGood(t *testing.T) {
	client := &mockClient{latestClose: map[string]float64{"AAPL": 150}}
	svc := NewService(client, testConfig(), common.NewSilentLogger())

	metrics := &models.RiskMetrics{
		HHI:                 0.10,
		PortfolioVolatility: 0.10,
		MaxDrawdown:         0.02,
		AvgCorrelation:      0.10,
	}
	score, err := svc.ScoreHealth(context.Background(), testPortfolio(
		models.Holding{Ticker: "AAPL", Shares: 10, CostBasis: 100}, // above cost
	), metrics)
	require.NoError(t, err)

	assert.InDelta(t, 100.0, score.Total, 1e-9)
	assert.Equal(t, models.TierGreen, score.Tier)
	assert.InDelta(t, 100.0, score.Breakdown.Diversity, 1e-9)
	assert.InDelta(t, 100.0, score.Breakdown.UnrealizedLoss, 1e-9)
}

func TestScoreHealth_AllBad(t *testing.T) {
	client := &mockClient{latestClose: map[string]float64{"AAPL": 50, "MSFT": 40}}
	svc := NewService(client, testConfig(), common.NewSilentLogger())

	metrics := &models.RiskMetrics{
		HHI:                 0.90,
		PortfolioVolatility: 0.55,
		MaxDrawdown:         0.45,
		AvgCorrelation:      0.95,
	}
	// both holdings under water: loss ratio 1.0, worse than LossBad
	score, err := svc.ScoreHealth(context.Background(), testPortfolio(
		models.Holding{Ticker: "AAPL", Shares: 10, CostBasis: 100},
		models.Holding{Ticker: "MSFT", Shares: 10, CostBasis: 100},
	), metrics)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, score.Total, 1e-9)
	assert.Equal(t, models.TierRed, score.Tier)
}

func TestScoreHealth_TierBoundaries(t *testing.T) {
	svc := &Service{config: testConfig(), logger: common.NewSilentLogger()}

	tests := []struct {
		total float64
		want  models.HealthTier
	}{
		{70.0, models.TierGreen},
		{69.99, models.TierYellow},
		{40.0, models.TierYellow},
		{39.99, models.TierRed},
		{0, models.TierRed},
	}

	for _, tt := range tests {
		tier, _ := svc.classify(tt.total)
		assert.Equal(t, tt.want, tier, "total %.2f", tt.total)
	}
}

func TestScoreHealth_EmptyPortfolio(t *testing.T) {
	svc := NewService(&mockClient{}, testConfig(), common.NewSilentLogger())

	score, err := svc.ScoreHealth(context.Background(), testPortfolio(), &models.RiskMetrics{})
	require.NoError(t, err)

	assert.Equal(t, 0.0, score.Total)
	assert.Equal(t, models.TierRed, score.Tier)
	assert.Equal(t, "Portfolio has no holdings.", score.Message)
}

func TestUnrealizedLossRatio(t *testing.T) {
	client := &mockClient{
		latestClose: map[string]float64{
			"WIN":  150, // above cost
			"LOSE": 50,  // below cost
		},
		errs: map[string]error{"GONE": errors.New("api down")},
	}
	svc := NewService(client, testConfig(), common.NewSilentLogger())

	// fetch-failed holding drops out of numerator and denominator
	ratio := svc.unrealizedLossRatio(context.Background(), testPortfolio(
		models.Holding{Ticker: "WIN", Shares: 1, CostBasis: 100},
		models.Holding{Ticker: "LOSE", Shares: 1, CostBasis: 100},
		models.Holding{Ticker: "GONE", Shares: 1, CostBasis: 100},
	))
	assert.InDelta(t, 0.5, ratio, 1e-9)

	t.Run("zero cost basis excluded", func(t *testing.T) {
		ratio := svc.unrealizedLossRatio(context.Background(), testPortfolio(
			models.Holding{Ticker: "LOSE", Shares: 1, CostBasis: 0},
		))
		assert.Equal(t, 0.0, ratio)
	})
}

func TestScoreInverse(t *testing.T) {
	assert.InDelta(t, 100, scoreInverse(0.05, 0.10, 0.50), 1e-9, "better than good")
	assert.InDelta(t, 100, scoreInverse(0.10, 0.10, 0.50), 1e-9, "exactly good")
	assert.InDelta(t, 0, scoreInverse(0.50, 0.10, 0.50), 1e-9, "exactly bad")
	assert.InDelta(t, 0, scoreInverse(0.90, 0.10, 0.50), 1e-9, "worse than bad")
	assert.InDelta(t, 50, scoreInverse(0.30, 0.10, 0.50), 1e-9, "midpoint")
	assert.InDelta(t, 50, scoreInverse(0.30, 0.20, 0.20), 1e-9, "degenerate bounds")
}
