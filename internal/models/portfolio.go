// Package models defines data structures for Kabumori
package models

import (
	"time"
)

// Portfolio represents a user portfolio of stock holdings
type Portfolio struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Holdings  []Holding `json:"holdings"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Holding represents a portfolio position. Shares and CostBasis are
// positive; AcquiredAt is optional and informational only.
type Holding struct {
	Ticker     string     `json:"ticker"`
	Shares     float64    `json:"shares"`
	CostBasis  float64    `json:"cost_basis"` // average cost per share
	AcquiredAt *time.Time `json:"acquired_at,omitempty"`
}

// Tickers returns the distinct ticker symbols held in the portfolio.
func (p *Portfolio) Tickers() []string {
	seen := make(map[string]bool, len(p.Holdings))
	tickers := make([]string, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		if !seen[h.Ticker] {
			seen[h.Ticker] = true
			tickers = append(tickers, h.Ticker)
		}
	}
	return tickers
}

// Watchlist is a named list of tickers monitored for signals alongside
// portfolio holdings.
type Watchlist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tickers   []string  `json:"tickers"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
