package badger

import (
	"context"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/kfujii/kabumori/internal/common"
	"github.com/kfujii/kabumori/internal/models"
)

type alertStorage struct {
	store  *Store
	logger *common.Logger
}

// NewAlertStorage creates a new AlertStore backed by BadgerHold.
func NewAlertStorage(store *Store, logger *common.Logger) *alertStorage {
	return &alertStorage{store: store, logger: logger}
}

// Append inserts alerts keyed by ID. Re-emission on reruns is expected;
// each run's alerts get fresh IDs so nothing is overwritten.
func (s *alertStorage) Append(_ context.Context, alerts []*models.Alert) error {
	for _, alert := range alerts {
		if err := s.store.db.Insert(alert.ID, alert); err != nil {
			return fmt.Errorf("failed to insert alert '%s': %w", alert.ID, err)
		}
	}
	if len(alerts) > 0 {
		s.logger.Debug().Int("count", len(alerts)).Msg("Alerts appended")
	}
	return nil
}

func (s *alertStorage) List(_ context.Context, portfolio string, limit int) ([]*models.Alert, error) {
	query := badgerhold.Where("PortfolioName").Eq(portfolio).SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var alerts []models.Alert
	if err := s.store.db.Find(&alerts, query); err != nil {
		return nil, fmt.Errorf("failed to list alerts for '%s': %w", portfolio, err)
	}

	result := make([]*models.Alert, len(alerts))
	for i := range alerts {
		result[i] = &alerts[i]
	}
	return result, nil
}

func (s *alertStorage) MarkRead(ctx context.Context, id string) error {
	return s.updateFlags(ctx, id, func(a *models.Alert) { a.Read = true })
}

func (s *alertStorage) MarkResolved(ctx context.Context, id string) error {
	return s.updateFlags(ctx, id, func(a *models.Alert) { a.Resolved = true })
}

func (s *alertStorage) updateFlags(_ context.Context, id string, mutate func(*models.Alert)) error {
	var alert models.Alert
	err := s.store.db.Get(id, &alert)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("alert '%s' not found", id)
		}
		return fmt.Errorf("failed to get alert '%s': %w", id, err)
	}

	mutate(&alert)
	if err := s.store.db.Update(id, &alert); err != nil {
		return fmt.Errorf("failed to update alert '%s': %w", id, err)
	}
	return nil
}
