// Package interfaces defines service contracts for Kabumori
package interfaces

import (
	"context"

	"github.com/kfujii/kabumori/internal/models"
)

// MarketDataClient fetches price history and fundamentals from the upstream
// provider. Implementations apply their own timeouts; a failed or empty
// fetch for one ticker surfaces as "data unavailable", never as a
// pipeline-wide fault.
type MarketDataClient interface {
	// GetPriceHistory returns daily bars for the ticker covering roughly
	// the last lookbackDays calendar days, newest-first. The series may be
	// empty or shorter than requested.
	GetPriceHistory(ctx context.Context, ticker string, lookbackDays int) ([]models.EODBar, error)

	// GetFundamentals returns the fundamentals snapshot for a ticker.
	GetFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error)
}
