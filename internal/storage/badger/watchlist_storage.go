package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/kfujii/kabumori/internal/common"
	"github.com/kfujii/kabumori/internal/models"
)

type watchlistStorage struct {
	store  *Store
	logger *common.Logger
}

// NewWatchlistStorage creates a new WatchlistStore backed by BadgerHold.
func NewWatchlistStorage(store *Store, logger *common.Logger) *watchlistStorage {
	return &watchlistStorage{store: store, logger: logger}
}

func (s *watchlistStorage) Get(_ context.Context, name string) (*models.Watchlist, error) {
	var watchlist models.Watchlist
	err := s.store.db.Get(name, &watchlist)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("watchlist '%s' not found", name)
		}
		return nil, fmt.Errorf("failed to get watchlist '%s': %w", name, err)
	}
	return &watchlist, nil
}

func (s *watchlistStorage) Save(_ context.Context, watchlist *models.Watchlist) error {
	watchlist.UpdatedAt = time.Now()
	if watchlist.CreatedAt.IsZero() {
		watchlist.CreatedAt = time.Now()
	}
	if watchlist.ID == "" {
		watchlist.ID = watchlist.Name
	}

	if err := s.store.db.Upsert(watchlist.ID, watchlist); err != nil {
		return fmt.Errorf("failed to save watchlist: %w", err)
	}
	s.logger.Debug().Str("name", watchlist.Name).Msg("Watchlist saved")
	return nil
}

// AllTickers returns the deduplicated union of tickers across all
// watchlists, sorted for stable scan order.
func (s *watchlistStorage) AllTickers(_ context.Context) ([]string, error) {
	var watchlists []models.Watchlist
	if err := s.store.db.Find(&watchlists, nil); err != nil {
		return nil, fmt.Errorf("failed to list watchlists: %w", err)
	}

	seen := map[string]bool{}
	var tickers []string
	for _, w := range watchlists {
		for _, t := range w.Tickers {
			if !seen[t] {
				seen[t] = true
				tickers = append(tickers, t)
			}
		}
	}
	sort.Strings(tickers)
	return tickers, nil
}

func (s *watchlistStorage) Delete(_ context.Context, name string) error {
	err := s.store.db.Delete(name, models.Watchlist{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete watchlist '%s': %w", name, err)
	}
	s.logger.Debug().Str("name", name).Msg("Watchlist deleted")
	return nil
}
