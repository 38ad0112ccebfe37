package risk

import (
	"math"
	"sort"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev returns the sample standard deviation (n-1 denominator).
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// covariance returns the sample covariance of two equal-length series.
func covariance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return 0
	}
	ma := mean(a)
	mb := mean(b)
	sum := 0.0
	for i := range a {
		sum += (a[i] - ma) * (b[i] - mb)
	}
	return sum / float64(len(a)-1)
}

// Volatility is the standard deviation of daily returns, annualized by
// sqrt(tradingDays) when annualize is set. Zero for series with fewer than
// two points.
func Volatility(returns []float64, tradingDays int, annualize bool) float64 {
	if len(returns) < 2 {
		return 0
	}
	vol := stdDev(returns)
	if annualize {
		vol *= math.Sqrt(float64(tradingDays))
	}
	return vol
}

// MaxDrawdown is the largest peak-to-trough decline of a value curve,
// expressed as a positive fraction. Zero for curves shorter than two points.
func MaxDrawdown(curve []float64) float64 {
	if len(curve) < 2 {
		return 0
	}

	peak := curve[0]
	worst := 0.0
	for _, v := range curve {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (v - peak) / peak
			if dd < worst {
				worst = dd
			}
		}
	}
	return math.Abs(worst)
}

// SharpeRatio is (annualized mean return - riskFree) / annualized
// volatility. Zero when volatility is zero or the series is too short.
func SharpeRatio(returns []float64, riskFree float64, tradingDays int) float64 {
	if len(returns) < 2 {
		return 0
	}

	annualReturn := mean(returns) * float64(tradingDays)
	annualVol := Volatility(returns, tradingDays, true)
	if annualVol == 0 {
		return 0
	}
	return (annualReturn - riskFree) / annualVol
}

// Pearson is the correlation coefficient of two equal-length series. Zero
// when either series has no variance or fewer than two points.
func Pearson(a, b []float64) float64 {
	sa := stdDev(a)
	sb := stdDev(b)
	if sa == 0 || sb == 0 {
		return 0
	}
	return covariance(a, b) / (sa * sb)
}

// Beta is Cov(stock, market) / Var(market) over already-aligned series.
// Defaults to 1.0 when overlap is below minOverlap or market variance is
// zero.
func Beta(stock, market []float64, minOverlap int) float64 {
	if len(stock) != len(market) || len(stock) < minOverlap {
		return 1.0
	}

	varMarket := covariance(market, market)
	if varMarket == 0 {
		return 1.0
	}
	return covariance(stock, market) / varMarket
}

// HHI is the sum of squared normalized weights. Zero when the total weight
// is zero.
func HHI(weights map[string]float64) float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return 0
	}

	sum := 0.0
	for _, w := range weights {
		n := w / total
		sum += n * n
	}
	return sum
}

// VaR is the absolute value of the (1-confidence) percentile of the daily
// return distribution, scaled by notional. Zero with fewer than minPoints
// observations.
func VaR(returns []float64, confidence, notional float64, minPoints int) float64 {
	if len(returns) < minPoints {
		return 0
	}
	pct := (1.0 - confidence) * 100.0
	return math.Abs(percentile(returns, pct)) * notional
}

// percentile computes the pct-th percentile with linear interpolation
// between closest ranks.
func percentile(values []float64, pct float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := pct / 100.0 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		return sorted[0]
	}
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
