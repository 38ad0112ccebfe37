package risk

import (
	"sort"

	"github.com/kfujii/kabumori/internal/models"
)

// TickerReturns is the per-ticker daily return series, or an explicit skip
// when the ticker had no usable price data. Callers check SkipReason so
// "zero risk" and "no data" stay distinguishable.
type TickerReturns struct {
	Ticker      string
	Dates       []string // chronological YYYY-MM-DD, one per return
	Values      []float64
	LatestClose float64
	SkipReason  string
}

// Skipped reports whether the ticker was excluded from computation.
func (t TickerReturns) Skipped() bool {
	return t.SkipReason != ""
}

const dateLayout = "2006-01-02"

// buildTickerReturns derives chronological daily returns from a
// newest-first bar slice.
func buildTickerReturns(ticker string, bars []models.EODBar) TickerReturns {
	if len(bars) == 0 {
		return TickerReturns{Ticker: ticker, SkipReason: "no price history"}
	}
	if len(bars) < 2 {
		return TickerReturns{Ticker: ticker, LatestClose: bars[0].Close, SkipReason: "insufficient price history"}
	}

	dates := make([]string, 0, len(bars)-1)
	values := make([]float64, 0, len(bars)-1)
	for i := len(bars) - 1; i > 0; i-- {
		prev := bars[i].Close
		if prev == 0 {
			continue
		}
		dates = append(dates, bars[i-1].Date.Format(dateLayout))
		values = append(values, (bars[i-1].Close-prev)/prev)
	}

	if len(values) == 0 {
		return TickerReturns{Ticker: ticker, LatestClose: bars[0].Close, SkipReason: "insufficient price history"}
	}

	return TickerReturns{
		Ticker:      ticker,
		Dates:       dates,
		Values:      values,
		LatestClose: bars[0].Close,
	}
}

// byDate indexes a return series by date.
func (t TickerReturns) byDate() map[string]float64 {
	m := make(map[string]float64, len(t.Dates))
	for i, d := range t.Dates {
		m[d] = t.Values[i]
	}
	return m
}

// alignPair returns the two series restricted to their overlapping dates,
// in chronological order.
func alignPair(a, b TickerReturns) ([]float64, []float64) {
	bIdx := b.byDate()
	var x, y []float64
	for i, d := range a.Dates {
		if v, ok := bIdx[d]; ok {
			x = append(x, a.Values[i])
			y = append(y, v)
		}
	}
	return x, y
}

// alignAll returns the sorted dates present in every series and each
// series' values restricted to those dates.
func alignAll(series []TickerReturns) ([]string, map[string][]float64) {
	if len(series) == 0 {
		return nil, nil
	}

	counts := map[string]int{}
	for _, s := range series {
		for _, d := range s.Dates {
			counts[d]++
		}
	}

	var dates []string
	for d, c := range counts {
		if c == len(series) {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)

	aligned := make(map[string][]float64, len(series))
	for _, s := range series {
		idx := s.byDate()
		values := make([]float64, len(dates))
		for i, d := range dates {
			values[i] = idx[d]
		}
		aligned[s.Ticker] = values
	}
	return dates, aligned
}

// portfolioReturns builds the weighted portfolio return series over the
// intersection of dates. Weights must be normalized to sum 1.
func portfolioReturns(series []TickerReturns, weights map[string]float64) []float64 {
	dates, aligned := alignAll(series)
	if len(dates) == 0 {
		return nil
	}

	out := make([]float64, len(dates))
	for ticker, values := range aligned {
		w := weights[ticker]
		for i, v := range values {
			out[i] += v * w
		}
	}
	return out
}

// cumulativeCurve converts a return series into a cumulative value curve
// anchored at 1.0, so the first day's decline registers as drawdown.
func cumulativeCurve(returns []float64) []float64 {
	curve := make([]float64, len(returns)+1)
	curve[0] = 1.0
	for i, r := range returns {
		curve[i+1] = curve[i] * (1 + r)
	}
	return curve
}
