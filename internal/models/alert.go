package models

import (
	"time"
)

// Alert rule codes. The rule set is a fixed enumeration; an unrecognized
// code is a programming error, not a runtime condition.
const (
	RuleDailyDrop           = "W-01" // 1-day return <= -5%
	RuleLossWarning         = "W-02" // return since cost basis <= -10%
	RuleLossCritical        = "W-03" // return since cost basis <= -15%
	RuleHealthDanger        = "W-04" // health total < 40
	RuleHealthCaution       = "W-05" // health total < 70
	RuleStockConcentration  = "W-06" // single ticker > 30% of market value
	RuleSectorConcentration = "W-07" // single sector > 50% of market value
	RuleIndexDrop           = "W-08" // market index 1-day return <= -3%
	RuleMajorityDrop        = "W-09" // >= 50% of holdings declined same day
	RuleStaleLoss           = "W-10" // unrealized loss streak >= 30 trading days
)

// Alert is an actionable warning produced by the rule engine. Emission is
// append-only; Read/Resolved are flipped later by user actions, never by
// the engine itself.
type Alert struct {
	ID            string         `json:"id"`
	PortfolioName string         `json:"portfolio_name"`
	Rule          string         `json:"rule"`
	Level         int            `json:"level"`            // 1 info .. 4 danger
	Ticker        string         `json:"ticker,omitempty"` // empty means portfolio-wide
	Message       string         `json:"message"`
	Action        string         `json:"action"`
	Detail        map[string]any `json:"detail,omitempty"`
	Read          bool           `json:"read"`
	Resolved      bool           `json:"resolved"`
	CreatedAt     time.Time      `json:"created_at"`
}
