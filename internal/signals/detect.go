package signals

import (
	"fmt"
	"math"
	"time"

	"github.com/kfujii/kabumori/internal/models"
)

// newSignal stamps the common fields of a detected signal.
func newSignal(ticker, signalType, priority, message string, detail map[string]any, expiry time.Duration) *models.Signal {
	now := time.Now()
	return &models.Signal{
		Ticker:    ticker,
		Type:      signalType,
		Priority:  priority,
		Message:   message,
		Detail:    detail,
		Valid:     true,
		CreatedAt: now,
		ExpiresAt: now.Add(expiry),
	}
}

// DetectGoldenCross fires when the short SMA crossed above the long SMA
// between the two most recent days: short <= long on the prior day and
// strictly greater today. A series that is merely above throughout never
// fires.
func DetectGoldenCross(ticker string, bars []models.EODBar, shortWindow, longWindow int, expiry time.Duration) *models.Signal {
	if len(bars) < longWindow+1 {
		return nil
	}

	currShort := SMA(bars, shortWindow)
	currLong := SMA(bars, longWindow)
	prevShort := SMA(bars[1:], shortWindow)
	prevLong := SMA(bars[1:], longWindow)

	if prevShort <= prevLong && currShort > currLong {
		return newSignal(ticker, models.SignalGoldenCross, models.PriorityHigh,
			fmt.Sprintf("%s: golden cross (MA%d crossed above MA%d)", ticker, shortWindow, longWindow),
			map[string]any{
				"short_window": shortWindow,
				"long_window":  longWindow,
				"ma_short":     round2(currShort),
				"ma_long":      round2(currLong),
			}, expiry)
	}

	return nil
}

// DetectVolumeSpike fires when mean volume over the short window is at
// least spikeRatio times the mean over the long window.
func DetectVolumeSpike(ticker string, bars []models.EODBar, shortWindow, longWindow int, spikeRatio float64, expiry time.Duration) *models.Signal {
	if len(bars) < longWindow {
		return nil
	}

	avgShort := AverageVolume(bars, shortWindow)
	avgLong := AverageVolume(bars, longWindow)
	if avgLong <= 0 {
		return nil
	}

	ratio := avgShort / avgLong
	if ratio >= spikeRatio {
		return newSignal(ticker, models.SignalVolumeSpike, models.PriorityHigh,
			fmt.Sprintf("%s: volume spike (%.1fx average)", ticker, ratio),
			map[string]any{
				"avg_volume_short": math.Round(avgShort),
				"avg_volume_long":  math.Round(avgLong),
				"ratio":            round2(ratio),
			}, expiry)
	}

	return nil
}

// DetectRSIReversal fires when the RSI touched at or below the oversold
// threshold within the last lookback days (excluding today) and today's
// RSI is strictly above it.
func DetectRSIReversal(ticker string, bars []models.EODBar, period int, oversold float64, lookback int, expiry time.Duration) *models.Signal {
	series := RSISeries(bars, period, lookback)
	if series == nil {
		return nil
	}

	current := series[len(series)-1]
	past := series[:len(series)-1]

	minPast := math.MaxFloat64
	for _, v := range past {
		if v < minPast {
			minPast = v
		}
	}

	if minPast <= oversold && current > oversold {
		return newSignal(ticker, models.SignalRSIReversal, models.PriorityMedium,
			fmt.Sprintf("%s: RSI reversal (%.1f -> %.1f)", ticker, minPast, current),
			map[string]any{
				"current_rsi":        round2(current),
				"min_rsi_in_period":  round2(minPast),
				"period":             period,
				"oversold_threshold": oversold,
			}, expiry)
	}

	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
