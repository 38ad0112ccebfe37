package badger

import (
	"context"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/kfujii/kabumori/internal/common"
	"github.com/kfujii/kabumori/internal/models"
)

// snapshotKey builds the upsert key for per-day snapshot records. One
// record survives per (portfolio, date); reruns replace it.
func snapshotKey(portfolio, date string) string {
	return portfolio + "|" + date
}

type riskMetricsStorage struct {
	store  *Store
	logger *common.Logger
}

// NewRiskMetricsStorage creates a new RiskMetricsStore backed by BadgerHold.
func NewRiskMetricsStorage(store *Store, logger *common.Logger) *riskMetricsStorage {
	return &riskMetricsStorage{store: store, logger: logger}
}

func (s *riskMetricsStorage) Upsert(_ context.Context, metrics *models.RiskMetrics) error {
	key := snapshotKey(metrics.PortfolioName, metrics.Date)
	if err := s.store.db.Upsert(key, metrics); err != nil {
		return fmt.Errorf("failed to upsert risk metrics for '%s': %w", key, err)
	}
	s.logger.Debug().Str("portfolio", metrics.PortfolioName).Str("date", metrics.Date).Msg("Risk metrics saved")
	return nil
}

func (s *riskMetricsStorage) Get(_ context.Context, portfolio, date string) (*models.RiskMetrics, error) {
	var metrics models.RiskMetrics
	err := s.store.db.Get(snapshotKey(portfolio, date), &metrics)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("risk metrics for '%s' on %s not found", portfolio, date)
		}
		return nil, fmt.Errorf("failed to get risk metrics for '%s': %w", portfolio, err)
	}
	return &metrics, nil
}

func (s *riskMetricsStorage) Latest(_ context.Context, portfolio string) (*models.RiskMetrics, error) {
	var results []models.RiskMetrics
	query := badgerhold.Where("PortfolioName").Eq(portfolio).SortBy("Date").Reverse().Limit(1)
	if err := s.store.db.Find(&results, query); err != nil {
		return nil, fmt.Errorf("failed to query risk metrics for '%s': %w", portfolio, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no risk metrics for '%s'", portfolio)
	}
	return &results[0], nil
}
