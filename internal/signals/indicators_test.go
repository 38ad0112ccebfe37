package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kfujii/kabumori/internal/models"
)

// barsFromCloses builds a newest-first bar slice from chronological closes.
func barsFromCloses(closes ...float64) []models.EODBar {
	bars := make([]models.EODBar, len(closes))
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		// closes[0] is the oldest day
		bars[len(closes)-1-i] = models.EODBar{
			Date:   base.AddDate(0, 0, i),
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func TestSMA(t *testing.T) {
	bars := barsFromCloses(1, 2, 3, 4)

	assert.InDelta(t, 3.5, SMA(bars, 2), 1e-9)
	assert.InDelta(t, 2.5, SMA(bars, 4), 1e-9)
	assert.Equal(t, 0.0, SMA(bars, 5), "period longer than series")
	assert.Equal(t, 0.0, SMA(bars, 0))
}

func TestRSI(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		period int
		want   float64
	}{
		{"all gains", []float64{10, 11, 12, 13}, 3, 100},
		{"all losses", []float64{13, 12, 11, 10}, 3, 0},
		{"mixed", []float64{10, 13, 12, 14}, 3, 83.3333}, // gains 5, losses 1
		{"too short", []float64{10, 11}, 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RSI(barsFromCloses(tt.closes...), tt.period)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestRSISeries(t *testing.T) {
	// chronological closes 100,98,96,94,97: two all-loss windows then a
	// partial recovery on the last day
	bars := barsFromCloses(100, 98, 96, 94, 97)

	series := RSISeries(bars, 2, 2)
	if assert.Len(t, series, 3) {
		assert.InDelta(t, 0, series[0], 0.001)
		assert.InDelta(t, 0, series[1], 0.001)
		assert.InDelta(t, 60, series[2], 0.001) // gains 3, losses 2
	}

	assert.Nil(t, RSISeries(bars, 3, 2), "needs period+points+1 bars")
}

func TestAverageVolume(t *testing.T) {
	bars := barsFromCloses(1, 2, 3)
	bars[0].Volume = 300
	bars[1].Volume = 200
	bars[2].Volume = 100

	assert.InDelta(t, 250, AverageVolume(bars, 2), 1e-9)
	assert.Equal(t, 0.0, AverageVolume(bars, 4))
}

func TestDailyReturns(t *testing.T) {
	returns := DailyReturns(barsFromCloses(100, 94, 110))
	if assert.Len(t, returns, 2) {
		assert.InDelta(t, -0.06, returns[0], 1e-9)
		assert.InDelta(t, 0.170213, returns[1], 1e-6)
	}

	assert.Nil(t, DailyReturns(barsFromCloses(100)))

	// zero previous close is dropped, not divided by
	withZero := DailyReturns(barsFromCloses(0, 100, 110))
	assert.Len(t, withZero, 1)
}

func TestLatestReturn(t *testing.T) {
	ret, ok := LatestReturn(barsFromCloses(100, 94))
	assert.True(t, ok)
	assert.InDelta(t, -0.06, ret, 1e-9)

	_, ok = LatestReturn(barsFromCloses(100))
	assert.False(t, ok)

	_, ok = LatestReturn(barsFromCloses(0, 100))
	assert.False(t, ok)
}
