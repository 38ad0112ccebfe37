// Package alert evaluates the ten warning rules (W-01..W-10) against a
// portfolio and its price history.
package alert

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kfujii/kabumori/internal/common"
	"github.com/kfujii/kabumori/internal/interfaces"
	"github.com/kfujii/kabumori/internal/models"
)

// passthroughSuppressor emits every alert, preserving the append-only
// re-emission behavior of each run.
type passthroughSuppressor struct{}

func (passthroughSuppressor) Suppress(context.Context, *models.Alert) bool { return false }

// Service implements AlertService
type Service struct {
	client     interfaces.MarketDataClient
	config     common.AlertConfig
	suppressor interfaces.AlertSuppressor
	logger     *common.Logger
}

// Option configures the service
type Option func(*Service)

// WithSuppressor installs a dedup/suppression hook consulted before each
// alert is emitted.
func WithSuppressor(s interfaces.AlertSuppressor) Option {
	return func(svc *Service) {
		svc.suppressor = s
	}
}

// NewService creates a new alert rule engine
func NewService(client interfaces.MarketDataClient, config common.AlertConfig, logger *common.Logger, opts ...Option) *Service {
	svc := &Service{
		client:     client,
		config:     config,
		suppressor: passthroughSuppressor{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// evalContext carries the data shared by the rules for one evaluation run.
// Price history is fetched once per ticker; rules silently skip tickers
// that have no entry.
type evalContext struct {
	portfolio *models.Portfolio
	health    *models.HealthScore
	bars      map[string][]models.EODBar
	weights   map[string]float64 // ticker -> market value (price x shares)
	total     float64            // sum of weights
}

// GenerateAlerts evaluates all rules and returns every alert that fired,
// sorted by level descending; ties keep rule evaluation order.
func (s *Service) GenerateAlerts(ctx context.Context, portfolio *models.Portfolio, health *models.HealthScore) ([]*models.Alert, error) {
	ec := s.buildContext(ctx, portfolio, health)

	var alerts []*models.Alert
	alerts = append(alerts, s.checkDailyDrop(ec)...)
	alerts = append(alerts, s.checkLossFromCost(ec)...)
	alerts = append(alerts, s.checkHealth(ec)...)
	alerts = append(alerts, s.checkStockConcentration(ec)...)
	alerts = append(alerts, s.checkSectorConcentration(ctx, ec)...)
	alerts = append(alerts, s.checkIndexDrop(ctx, ec)...)
	alerts = append(alerts, s.checkMajorityDrop(ec)...)
	alerts = append(alerts, s.checkStaleLoss(ec)...)

	now := time.Now()
	emitted := make([]*models.Alert, 0, len(alerts))
	for _, a := range alerts {
		a.ID = uuid.NewString()
		a.PortfolioName = portfolio.Name
		a.CreatedAt = now
		if s.suppressor.Suppress(ctx, a) {
			s.logger.Debug().Str("rule", a.Rule).Str("ticker", a.Ticker).Msg("Alert suppressed")
			continue
		}
		emitted = append(emitted, a)
	}

	sort.SliceStable(emitted, func(i, j int) bool {
		return emitted[i].Level > emitted[j].Level
	})

	s.logger.Debug().
		Str("portfolio", portfolio.Name).
		Int("alerts", len(emitted)).
		Msg("Alert rules evaluated")

	return emitted, nil
}

// buildContext prefetches price history for every holding ticker and
// derives current market-value weights. Fetch failures leave the ticker
// absent, which every rule treats as a silent skip.
func (s *Service) buildContext(ctx context.Context, portfolio *models.Portfolio, health *models.HealthScore) *evalContext {
	ec := &evalContext{
		portfolio: portfolio,
		health:    health,
		bars:      map[string][]models.EODBar{},
		weights:   map[string]float64{},
	}

	shares := map[string]float64{}
	for _, h := range portfolio.Holdings {
		shares[h.Ticker] += h.Shares
	}

	for _, ticker := range portfolio.Tickers() {
		bars, err := s.client.GetPriceHistory(ctx, ticker, s.config.LookbackDays)
		if err != nil || len(bars) == 0 {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Price history unavailable for alert evaluation, skipping ticker")
			continue
		}
		ec.bars[ticker] = bars
		ec.weights[ticker] = bars[0].Close * shares[ticker]
		ec.total += bars[0].Close * shares[ticker]
	}

	return ec
}

// Ensure Service implements AlertService
var _ interfaces.AlertService = (*Service)(nil)
