// Package signals provides technical indicator calculations and the three
// pattern detectors. All functions operate on newest-first bar slices.
package signals

import (
	"github.com/kfujii/kabumori/internal/models"
)

// SMA calculates Simple Moving Average of closes for the given period
func SMA(bars []models.EODBar, period int) float64 {
	if period <= 0 || len(bars) < period {
		return 0
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += bars[i].Close
	}
	return sum / float64(period)
}

// RSI calculates Relative Strength Index over the most recent period
func RSI(bars []models.EODBar, period int) float64 {
	if period <= 0 || len(bars) < period+1 {
		return 50 // Neutral default
	}

	var gains, losses float64
	for i := 0; i < period; i++ {
		change := bars[i].Close - bars[i+1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// RSISeries computes RSI at each of the last points+1 days, oldest first.
// Returns nil when the window has too few bars.
func RSISeries(bars []models.EODBar, period, points int) []float64 {
	if len(bars) < period+points+1 {
		return nil
	}

	series := make([]float64, points+1)
	for i := 0; i <= points; i++ {
		series[points-i] = RSI(bars[i:], period)
	}
	return series
}

// AverageVolume calculates mean volume over the most recent period
func AverageVolume(bars []models.EODBar, period int) float64 {
	if period <= 0 || len(bars) < period {
		return 0
	}

	var sum int64
	for i := 0; i < period; i++ {
		sum += bars[i].Volume
	}
	return float64(sum) / float64(period)
}

// DailyReturns converts a newest-first bar slice into chronological daily
// returns (relative change of consecutive closes). Days whose previous
// close is zero are dropped.
func DailyReturns(bars []models.EODBar) []float64 {
	if len(bars) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(bars)-1)
	// bars are newest-first; walk from the oldest pair forward
	for i := len(bars) - 1; i > 0; i-- {
		prev := bars[i].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, (bars[i-1].Close-prev)/prev)
	}
	return returns
}

// LatestReturn returns the most recent 1-day return, or false when the
// series is too short or the previous close is zero.
func LatestReturn(bars []models.EODBar) (float64, bool) {
	if len(bars) < 2 || bars[1].Close == 0 {
		return 0, false
	}
	return (bars[0].Close - bars[1].Close) / bars[1].Close, true
}
