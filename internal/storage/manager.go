// Package storage provides the top-level StorageManager backed by a single
// embedded BadgerHold database.
package storage

import (
	"fmt"

	"github.com/kfujii/kabumori/internal/common"
	"github.com/kfujii/kabumori/internal/interfaces"
	"github.com/kfujii/kabumori/internal/storage/badger"
)

// Manager implements interfaces.StorageManager over one badger store.
type Manager struct {
	store  *badger.Store
	logger *common.Logger

	portfolios   interfaces.PortfolioStore
	watchlists   interfaces.WatchlistStore
	riskMetrics  interfaces.RiskMetricsStore
	healthScores interfaces.HealthScoreStore
	alerts       interfaces.AlertStore
	signals      interfaces.SignalStore
	systemKV     interfaces.KVStore
}

// NewManager opens the embedded database and wires the per-entity stores.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := badger.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	logger.Info().Str("path", config.Storage.Path).Msg("Storage manager initialized")

	return &Manager{
		store:        store,
		logger:       logger,
		portfolios:   badger.NewPortfolioStorage(store, logger),
		watchlists:   badger.NewWatchlistStorage(store, logger),
		riskMetrics:  badger.NewRiskMetricsStorage(store, logger),
		healthScores: badger.NewHealthScoreStorage(store, logger),
		alerts:       badger.NewAlertStorage(store, logger),
		signals:      badger.NewSignalStorage(store, logger),
		systemKV:     badger.NewKVStorage(store, logger),
	}, nil
}

func (m *Manager) Portfolios() interfaces.PortfolioStore { return m.portfolios }

func (m *Manager) Watchlists() interfaces.WatchlistStore { return m.watchlists }

func (m *Manager) RiskMetrics() interfaces.RiskMetricsStore { return m.riskMetrics }

func (m *Manager) HealthScores() interfaces.HealthScoreStore { return m.healthScores }

func (m *Manager) Alerts() interfaces.AlertStore { return m.alerts }

func (m *Manager) Signals() interfaces.SignalStore { return m.signals }

func (m *Manager) SystemKV() interfaces.KVStore { return m.systemKV }

// Close closes the underlying database.
func (m *Manager) Close() error {
	return m.store.Close()
}

// Ensure Manager implements StorageManager
var _ interfaces.StorageManager = (*Manager)(nil)
