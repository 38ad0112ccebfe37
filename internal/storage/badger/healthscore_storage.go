package badger

import (
	"context"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/kfujii/kabumori/internal/common"
	"github.com/kfujii/kabumori/internal/models"
)

type healthScoreStorage struct {
	store  *Store
	logger *common.Logger
}

// NewHealthScoreStorage creates a new HealthScoreStore backed by BadgerHold.
func NewHealthScoreStorage(store *Store, logger *common.Logger) *healthScoreStorage {
	return &healthScoreStorage{store: store, logger: logger}
}

func (s *healthScoreStorage) Upsert(_ context.Context, score *models.HealthScore) error {
	key := snapshotKey(score.PortfolioName, score.Date)
	if err := s.store.db.Upsert(key, score); err != nil {
		return fmt.Errorf("failed to upsert health score for '%s': %w", key, err)
	}
	s.logger.Debug().Str("portfolio", score.PortfolioName).Str("date", score.Date).Msg("Health score saved")
	return nil
}

func (s *healthScoreStorage) Get(_ context.Context, portfolio, date string) (*models.HealthScore, error) {
	var score models.HealthScore
	err := s.store.db.Get(snapshotKey(portfolio, date), &score)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("health score for '%s' on %s not found", portfolio, date)
		}
		return nil, fmt.Errorf("failed to get health score for '%s': %w", portfolio, err)
	}
	return &score, nil
}

func (s *healthScoreStorage) Latest(_ context.Context, portfolio string) (*models.HealthScore, error) {
	var results []models.HealthScore
	query := badgerhold.Where("PortfolioName").Eq(portfolio).SortBy("Date").Reverse().Limit(1)
	if err := s.store.db.Find(&results, query); err != nil {
		return nil, fmt.Errorf("failed to query health scores for '%s': %w", portfolio, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no health scores for '%s'", portfolio)
	}
	return &results[0], nil
}
