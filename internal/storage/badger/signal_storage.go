package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/kfujii/kabumori/internal/common"
	"github.com/kfujii/kabumori/internal/models"
)

type signalStorage struct {
	store  *Store
	logger *common.Logger
}

// NewSignalStorage creates a new SignalStore backed by BadgerHold.
func NewSignalStorage(store *Store, logger *common.Logger) *signalStorage {
	return &signalStorage{store: store, logger: logger}
}

func (s *signalStorage) Append(_ context.Context, signals []*models.Signal) error {
	for _, signal := range signals {
		if err := s.store.db.Insert(signal.ID, signal); err != nil {
			return fmt.Errorf("failed to insert signal '%s': %w", signal.ID, err)
		}
	}
	if len(signals) > 0 {
		s.logger.Debug().Int("count", len(signals)).Msg("Signals appended")
	}
	return nil
}

func (s *signalStorage) ListValid(_ context.Context, ticker string) ([]*models.Signal, error) {
	query := badgerhold.Where("Ticker").Eq(ticker).And("Valid").Eq(true).SortBy("CreatedAt").Reverse()

	var signals []models.Signal
	if err := s.store.db.Find(&signals, query); err != nil {
		return nil, fmt.Errorf("failed to list signals for '%s': %w", ticker, err)
	}

	result := make([]*models.Signal, len(signals))
	for i := range signals {
		result[i] = &signals[i]
	}
	return result, nil
}

// InvalidateExpired flips Valid to false on every signal whose expiry has
// passed and returns how many were flipped. Expiry comparison happens in
// Go; records stay in the store for history.
func (s *signalStorage) InvalidateExpired(_ context.Context, now time.Time) (int, error) {
	var signals []models.Signal
	if err := s.store.db.Find(&signals, badgerhold.Where("Valid").Eq(true)); err != nil {
		return 0, fmt.Errorf("failed to query valid signals: %w", err)
	}

	count := 0
	for i := range signals {
		if signals[i].ExpiresAt.After(now) {
			continue
		}
		signals[i].Valid = false
		if err := s.store.db.Update(signals[i].ID, &signals[i]); err != nil {
			return count, fmt.Errorf("failed to invalidate signal '%s': %w", signals[i].ID, err)
		}
		count++
	}

	if count > 0 {
		s.logger.Debug().Int("count", count).Msg("Expired signals invalidated")
	}
	return count, nil
}
