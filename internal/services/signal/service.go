// Package signal runs the technical signal detectors across a set of
// tickers and aggregates the results by priority.
package signal

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/kfujii/kabumori/internal/common"
	"github.com/kfujii/kabumori/internal/interfaces"
	"github.com/kfujii/kabumori/internal/models"
	"github.com/kfujii/kabumori/internal/signals"
)

// Service implements SignalService
type Service struct {
	client interfaces.MarketDataClient
	config common.SignalConfig
	logger *common.Logger
}

// NewService creates a new signal detection service
func NewService(client interfaces.MarketDataClient, config common.SignalConfig, logger *common.Logger) *Service {
	return &Service{
		client: client,
		config: config,
		logger: logger,
	}
}

// DetectSignals runs all three detectors for every ticker and returns the
// union, ordered by priority (high first). Tickers without price history
// are skipped.
func (s *Service) DetectSignals(ctx context.Context, tickers []string) ([]*models.Signal, error) {
	expiry := s.config.GetExpiry()

	var detected []*models.Signal
	for _, ticker := range tickers {
		bars, err := s.client.GetPriceHistory(ctx, ticker, s.config.LookbackDays)
		if err != nil || len(bars) == 0 {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Price history unavailable for signal detection, skipping ticker")
			continue
		}

		if sig := signals.DetectGoldenCross(ticker, bars, s.config.ShortWindow, s.config.LongWindow, expiry); sig != nil {
			detected = append(detected, sig)
		}
		if sig := signals.DetectVolumeSpike(ticker, bars, s.config.ShortWindow, s.config.LongWindow, s.config.SpikeRatio, expiry); sig != nil {
			detected = append(detected, sig)
		}
		if sig := signals.DetectRSIReversal(ticker, bars, s.config.RSIPeriod, s.config.RSIOversold, s.config.RSILookback, expiry); sig != nil {
			detected = append(detected, sig)
		}
	}

	for _, sig := range detected {
		sig.ID = uuid.NewString()
	}

	sort.SliceStable(detected, func(i, j int) bool {
		return models.PriorityRank(detected[i].Priority) < models.PriorityRank(detected[j].Priority)
	})

	s.logger.Debug().
		Int("tickers", len(tickers)).
		Int("signals", len(detected)).
		Msg("Signal detection complete")

	return detected, nil
}

// Ensure Service implements SignalService
var _ interfaces.SignalService = (*Service)(nil)
