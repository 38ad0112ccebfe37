package models

import (
	"time"
)

// EODBar represents a single day's price data.
// Bar slices are ordered newest-first: bars[0] is the latest trading day.
type EODBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// MarketData holds price history and fundamentals for a ticker.
// It is fetched fresh per computation and never cached across runs.
type MarketData struct {
	Ticker       string        `json:"ticker"`
	EOD          []EODBar      `json:"eod"`
	Fundamentals *Fundamentals `json:"fundamentals,omitempty"`
	FetchedAt    time.Time     `json:"fetched_at"`
}

// Fundamentals is a snapshot of fundamental data for a ticker.
// Any field may be zero when the upstream source does not report it.
type Fundamentals struct {
	Ticker         string  `json:"ticker"`
	TrailingPE     float64 `json:"trailing_pe"`
	ForwardPE      float64 `json:"forward_pe"`
	PriceToBook    float64 `json:"price_to_book"`
	DividendYield  float64 `json:"dividend_yield"`
	Sector         string  `json:"sector"`
	RevenueGrowth  float64 `json:"revenue_growth"`
	EarningsGrowth float64 `json:"earnings_growth"`
	DebtToEquity   float64 `json:"debt_to_equity"`
	PayoutRatio    float64 `json:"payout_ratio"`
}

// EODResponse represents the EODHD end-of-day API response
type EODResponse struct {
	Data []EODBar `json:"data"`
}
