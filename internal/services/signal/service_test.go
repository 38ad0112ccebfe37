package signal

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

func testConfig() common.SignalConfig {
	return common.SignalConfig{
		LookbackDays: 180,
		ShortWindow:  2,
		LongWindow:   3,
		SpikeRatio:   2.0,
		RSIPeriod:    2,
		RSIOversold:  30,
		RSILookback:  2,
		ExpiryDays:   7,
	}
}

// barsFromCloses builds a newest-first bar slice from chronological closes
// with flat volume.
func barsFromCloses(closes ...float64) []models.EODBar {
	bars := make([]models.EODBar, len(closes))
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[len(closes)-1-i] = models.EODBar{
			Date:   base.AddDate(0, 0, i),
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func TestDetectSignals(t *testing.T) {
	// golden cross pattern for GC, RSI reversal pattern for RSI
	client := &mockClient{
		history: map[string][]models.EODBar{
			"GC":   barsFromCloses(10, 10, 10, 10, 20),
			"RSI":  barsFromCloses(100, 98, 96, 94, 97),
			"FLAT": barsFromCloses(10, 10, 10, 10, 10),
		},
		errs: map[string]error{"GONE": errors.New("api down")},
	}
	svc := NewService(client, testConfig(), common.NewSilentLogger())

	detected, err := svc.DetectSignals(context.Background(), []string{"RSI", "GC", "FLAT", "GONE"})
	require.NoError(t, err)
	require.Len(t, detected, 2)

	// high priority golden cross sorts before the medium RSI reversal
	assert.Equal(t, models.SignalGoldenCross, detected[0].Type)
	assert.Equal(t, "GC", detected[0].Ticker)
	assert.Equal(t, models.SignalRSIReversal, detected[1].Type)
	assert.Equal(t, "RSI", detected[1].Ticker)

	for _, sig := range detected {
		assert.NotEmpty(t, sig.ID)
		assert.True(t, sig.Valid)
		assert.WithinDuration(t, sig.CreatedAt.Add(7*24*time.Hour), sig.ExpiresAt, time.Second)
	}
}

func TestDetectSignals_NoTickers(t *testing.T) {
	svc := NewService(&mockClient{}, testConfig(), common.NewSilentLogger())

	detected, err := svc.DetectSignals(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, detected)
}
