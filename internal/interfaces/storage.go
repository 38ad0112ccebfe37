// Package interfaces defines service contracts for Kabumori
package interfaces

import (
	"context"
	"time"

	"github.com/kfujii/kabumori/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	Portfolios() PortfolioStore
	Watchlists() WatchlistStore
	RiskMetrics() RiskMetricsStore
	HealthScores() HealthScoreStore
	Alerts() AlertStore
	Signals() SignalStore
	SystemKV() KVStore

	Close() error
}

// PortfolioStore persists portfolios and their holdings.
type PortfolioStore interface {
	Get(ctx context.Context, name string) (*models.Portfolio, error)
	Save(ctx context.Context, portfolio *models.Portfolio) error
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// WatchlistStore persists watchlists feeding the signal scan.
type WatchlistStore interface {
	Get(ctx context.Context, name string) (*models.Watchlist, error)
	Save(ctx context.Context, watchlist *models.Watchlist) error
	// AllTickers returns the union of tickers across all watchlists.
	AllTickers(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// RiskMetricsStore persists one snapshot per (portfolio, date). Upsert
// replaces any same-day snapshot, making reruns idempotent.
type RiskMetricsStore interface {
	Upsert(ctx context.Context, metrics *models.RiskMetrics) error
	Get(ctx context.Context, portfolio, date string) (*models.RiskMetrics, error)
	Latest(ctx context.Context, portfolio string) (*models.RiskMetrics, error)
}

// HealthScoreStore persists one score per (portfolio, date), upsert
// semantics matching RiskMetricsStore.
type HealthScoreStore interface {
	Upsert(ctx context.Context, score *models.HealthScore) error
	Get(ctx context.Context, portfolio, date string) (*models.HealthScore, error)
	Latest(ctx context.Context, portfolio string) (*models.HealthScore, error)
}

// AlertStore is append-only for the engine; Read/Resolved updates come from
// user actions outside the pipeline.
type AlertStore interface {
	Append(ctx context.Context, alerts []*models.Alert) error
	List(ctx context.Context, portfolio string, limit int) ([]*models.Alert, error)
	MarkRead(ctx context.Context, id string) error
	MarkResolved(ctx context.Context, id string) error
}

// SignalStore is append-only for the detector; InvalidateExpired is the
// advisory-expiry sweep run weekly.
type SignalStore interface {
	Append(ctx context.Context, signals []*models.Signal) error
	ListValid(ctx context.Context, ticker string) ([]*models.Signal, error)
	InvalidateExpired(ctx context.Context, now time.Time) (int, error)
}

// KVStore holds system-level key-value state (last-run bookkeeping).
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
