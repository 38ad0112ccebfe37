package alert

import (
	"context"
	"fmt"

	"github.com/kfujii/kabumori/internal/models"
	"github.com/kfujii/kabumori/internal/signals"
)

// Severity levels per rule. 1 is informational, 4 is danger.
const (
	levelDailyDrop           = 2
	levelLossWarning         = 3
	levelLossCritical        = 4
	levelHealthDanger        = 4
	levelHealthCaution       = 2
	levelStockConcentration  = 3
	levelSectorConcentration = 3
	levelIndexDrop           = 3
	levelMajorityDrop        = 3
	levelStaleLoss           = 2
)

// checkDailyDrop fires W-01 for each ticker whose latest 1-day return is at
// or below the daily drop threshold.
func (s *Service) checkDailyDrop(ec *evalContext) []*models.Alert {
	var alerts []*models.Alert
	for _, ticker := range ec.portfolio.Tickers() {
		ret, ok := signals.LatestReturn(ec.bars[ticker])
		if !ok {
			continue
		}
		if ret <= s.config.DailyDropPct {
			alerts = append(alerts, &models.Alert{
				Rule:    models.RuleDailyDrop,
				Level:   levelDailyDrop,
				Ticker:  ticker,
				Message: fmt.Sprintf("%s dropped %.1f%% in one day", ticker, ret*100),
				Action:  "Check for news or earnings announcements before reacting.",
				Detail: map[string]any{
					"daily_return": ret,
					"threshold":    s.config.DailyDropPct,
				},
			})
		}
	}
	return alerts
}

// checkLossFromCost fires W-02 or W-03 per holding depending on how far the
// latest close sits below cost basis. The two rules are mutually exclusive:
// the deeper threshold wins.
func (s *Service) checkLossFromCost(ec *evalContext) []*models.Alert {
	var alerts []*models.Alert
	for _, h := range ec.portfolio.Holdings {
		bars, ok := ec.bars[h.Ticker]
		if !ok || h.CostBasis <= 0 {
			continue
		}
		ret := (bars[0].Close - h.CostBasis) / h.CostBasis
		detail := map[string]any{
			"cost_basis":  h.CostBasis,
			"close":       bars[0].Close,
			"loss_return": ret,
		}
		switch {
		case ret <= s.config.LossCriticalPct:
			alerts = append(alerts, &models.Alert{
				Rule:    models.RuleLossCritical,
				Level:   levelLossCritical,
				Ticker:  h.Ticker,
				Message: fmt.Sprintf("%s is down %.1f%% from cost basis", h.Ticker, -ret*100),
				Action:  "Re-examine the investment thesis; consider cutting the loss.",
				Detail:  detail,
			})
		case ret <= s.config.LossWarningPct:
			alerts = append(alerts, &models.Alert{
				Rule:    models.RuleLossWarning,
				Level:   levelLossWarning,
				Ticker:  h.Ticker,
				Message: fmt.Sprintf("%s is down %.1f%% from cost basis", h.Ticker, -ret*100),
				Action:  "Review the position and decide on a stop-loss level.",
				Detail:  detail,
			})
		}
	}
	return alerts
}

// checkHealth fires W-04 when the health total is below the danger
// threshold, W-05 when it is below the caution threshold. Exclusive by
// construction.
func (s *Service) checkHealth(ec *evalContext) []*models.Alert {
	if ec.health == nil {
		return nil
	}
	total := ec.health.Total
	detail := map[string]any{"health_total": total}
	switch {
	case total < s.config.HealthDanger:
		return []*models.Alert{{
			Rule:    models.RuleHealthDanger,
			Level:   levelHealthDanger,
			Message: fmt.Sprintf("Portfolio health score is %.1f (danger)", total),
			Action:  "Rebalance the portfolio; several risk factors need attention.",
			Detail:  detail,
		}}
	case total < s.config.HealthCaution:
		return []*models.Alert{{
			Rule:    models.RuleHealthCaution,
			Level:   levelHealthCaution,
			Message: fmt.Sprintf("Portfolio health score is %.1f (caution)", total),
			Action:  "Review the health breakdown for the weakest factor.",
			Detail:  detail,
		}}
	}
	return nil
}

// checkStockConcentration fires W-06 for each ticker above the single-stock
// weight limit of current market value.
func (s *Service) checkStockConcentration(ec *evalContext) []*models.Alert {
	if ec.total <= 0 {
		return nil
	}
	var alerts []*models.Alert
	for _, ticker := range ec.portfolio.Tickers() {
		value, ok := ec.weights[ticker]
		if !ok {
			continue
		}
		weight := value / ec.total
		if weight > s.config.SingleStockLimit {
			alerts = append(alerts, &models.Alert{
				Rule:    models.RuleStockConcentration,
				Level:   levelStockConcentration,
				Ticker:  ticker,
				Message: fmt.Sprintf("%s is %.1f%% of portfolio value", ticker, weight*100),
				Action:  "Consider trimming the position to reduce single-stock risk.",
				Detail: map[string]any{
					"weight": weight,
					"limit":  s.config.SingleStockLimit,
				},
			})
		}
	}
	return alerts
}

// checkSectorConcentration fires W-07 when any single sector exceeds the
// sector weight limit. Sector comes from fundamentals; tickers without one
// are grouped under "Unknown".
func (s *Service) checkSectorConcentration(ctx context.Context, ec *evalContext) []*models.Alert {
	if ec.total <= 0 {
		return nil
	}
	sectorValue := map[string]float64{}
	for ticker, value := range ec.weights {
		sector := "Unknown"
		if f, err := s.client.GetFundamentals(ctx, ticker); err == nil && f != nil && f.Sector != "" {
			sector = f.Sector
		}
		sectorValue[sector] += value
	}
	var alerts []*models.Alert
	for sector, value := range sectorValue {
		weight := value / ec.total
		if weight > s.config.SingleSectorLimit {
			alerts = append(alerts, &models.Alert{
				Rule:    models.RuleSectorConcentration,
				Level:   levelSectorConcentration,
				Message: fmt.Sprintf("Sector %s is %.1f%% of portfolio value", sector, weight*100),
				Action:  "Diversify across sectors to reduce correlated risk.",
				Detail: map[string]any{
					"sector": sector,
					"weight": weight,
					"limit":  s.config.SingleSectorLimit,
				},
			})
		}
	}
	return alerts
}

// checkIndexDrop fires W-08 for each watched market index whose latest
// 1-day return is at or below the index drop threshold.
func (s *Service) checkIndexDrop(ctx context.Context, ec *evalContext) []*models.Alert {
	var alerts []*models.Alert
	for _, index := range s.config.Indices {
		bars, err := s.client.GetPriceHistory(ctx, index, s.config.LookbackDays)
		if err != nil || len(bars) < 2 {
			s.logger.Warn().Str("index", index).Err(err).Msg("Index history unavailable for alert evaluation")
			continue
		}
		ret, ok := signals.LatestReturn(bars)
		if !ok {
			continue
		}
		if ret <= s.config.IndexDropPct {
			alerts = append(alerts, &models.Alert{
				Rule:    models.RuleIndexDrop,
				Level:   levelIndexDrop,
				Message: fmt.Sprintf("Index %s dropped %.1f%% in one day", index, ret*100),
				Action:  "Broad market stress; avoid panic selling, review exposure.",
				Detail: map[string]any{
					"index":        index,
					"daily_return": ret,
				},
			})
		}
	}
	return alerts
}

// checkMajorityDrop fires W-09 when at least half of the tickers with price
// history declined on their latest day.
func (s *Service) checkMajorityDrop(ec *evalContext) []*models.Alert {
	var observed, declined int
	for _, ticker := range ec.portfolio.Tickers() {
		ret, ok := signals.LatestReturn(ec.bars[ticker])
		if !ok {
			continue
		}
		observed++
		if ret < 0 {
			declined++
		}
	}
	if observed == 0 {
		return nil
	}
	ratio := float64(declined) / float64(observed)
	if ratio < s.config.MajorityDropRatio {
		return nil
	}
	return []*models.Alert{{
		Rule:    models.RuleMajorityDrop,
		Level:   levelMajorityDrop,
		Message: fmt.Sprintf("%d of %d holdings declined today", declined, observed),
		Action:  "Portfolio-wide decline; check whether it tracks the broad market.",
		Detail: map[string]any{
			"declined": declined,
			"observed": observed,
			"ratio":    ratio,
		},
	}}
}

// checkStaleLoss fires W-10 for each holding whose close has stayed below
// cost basis for at least the configured number of trading days. The streak
// walks backward from the most recent bar and stops at the first day at or
// above cost.
func (s *Service) checkStaleLoss(ec *evalContext) []*models.Alert {
	var alerts []*models.Alert
	for _, h := range ec.portfolio.Holdings {
		bars, ok := ec.bars[h.Ticker]
		if !ok || h.CostBasis <= 0 {
			continue
		}
		streak := 0
		for _, bar := range bars {
			if bar.Close >= h.CostBasis {
				break
			}
			streak++
		}
		if streak >= s.config.StaleLossDays {
			alerts = append(alerts, &models.Alert{
				Rule:    models.RuleStaleLoss,
				Level:   levelStaleLoss,
				Ticker:  h.Ticker,
				Message: fmt.Sprintf("%s has been below cost basis for %d trading days", h.Ticker, streak),
				Action:  "Dead money; decide whether the capital is better deployed elsewhere.",
				Detail: map[string]any{
					"streak_days": streak,
					"cost_basis":  h.CostBasis,
				},
			})
		}
	}
	return alerts
}
