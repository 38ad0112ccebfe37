package models

import (
	"time"
)

// Signal types
const (
	SignalGoldenCross = "golden_cross"
	SignalVolumeSpike = "volume_spike"
	SignalRSIReversal = "rsi_reversal"
)

// Signal priorities
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// PriorityRank orders priorities for sorting (high first). Unknown
// priorities sort last.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Signal is a detected technical pattern for a ticker. Records are
// append-only; ExpiresAt is advisory and consumed by the periodic sweep
// that flips Valid to false.
type Signal struct {
	ID        string         `json:"id"`
	Ticker    string         `json:"ticker"`
	Type      string         `json:"type"`
	Priority  string         `json:"priority"`
	Message   string         `json:"message"`
	Detail    map[string]any `json:"detail,omitempty"`
	Valid     bool           `json:"valid"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}
