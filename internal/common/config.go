// Package common provides shared utilities for Kabumori
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Kabumori. Every analytic threshold the
// engine consumes lives here so values can be tuned without code change.
type Config struct {
	Environment string          `toml:"environment"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Logging     LoggingConfig   `toml:"logging"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Risk        RiskConfig      `toml:"risk"`
	Health      HealthConfig    `toml:"health"`
	Alerts      AlertConfig     `toml:"alerts"`
	Signals     SignalConfig    `toml:"signals"`
}

// StorageConfig holds the data directory for the embedded store.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD EODHDConfig `toml:"eodhd"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SchedulerConfig holds the batch pipeline intervals.
type SchedulerConfig struct {
	Enabled       bool   `toml:"enabled"`
	RunInterval   string `toml:"run_interval"`   // daily analytics pipeline
	SweepInterval string `toml:"sweep_interval"` // expired-signal sweep
}

// GetRunInterval parses the pipeline interval, defaulting to 24h.
func (c *SchedulerConfig) GetRunInterval() time.Duration {
	d, err := time.ParseDuration(c.RunInterval)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// GetSweepInterval parses the sweep interval, defaulting to 7 days.
func (c *SchedulerConfig) GetSweepInterval() time.Duration {
	d, err := time.ParseDuration(c.SweepInterval)
	if err != nil || d <= 0 {
		return 7 * 24 * time.Hour
	}
	return d
}

// IndexRule maps a ticker suffix to the market index used for beta.
type IndexRule struct {
	Suffix string `toml:"suffix"`
	Index  string `toml:"index"`
}

// RiskConfig holds risk metric calculation parameters.
type RiskConfig struct {
	LookbackDays   int         `toml:"lookback_days"`    // price history window for risk stats
	TradingDays    int         `toml:"trading_days"`     // annualization factor base
	RiskFreeRate   float64     `toml:"risk_free_rate"`   // annual, fractional
	MinBetaOverlap int         `toml:"min_beta_overlap"` // min overlapping points for beta
	MinVaRPoints   int         `toml:"min_var_points"`   // min observations for VaR
	IndexRules     []IndexRule `toml:"index_rules"`      // ticker suffix -> market index
	DefaultIndex   string      `toml:"default_index"`    // index when no rule matches
}

// IndexFor returns the market index ticker used to compute beta for the
// given symbol. Rules are checked in order; the default applies when none
// match.
func (c *RiskConfig) IndexFor(ticker string) string {
	for _, rule := range c.IndexRules {
		if rule.Suffix != "" && strings.HasSuffix(ticker, rule.Suffix) {
			return rule.Index
		}
	}
	return c.DefaultIndex
}

// Indices returns the distinct market indices referenced by the rules plus
// the default.
func (c *RiskConfig) Indices() []string {
	seen := map[string]bool{}
	var out []string
	for _, rule := range c.IndexRules {
		if rule.Index != "" && !seen[rule.Index] {
			seen[rule.Index] = true
			out = append(out, rule.Index)
		}
	}
	if c.DefaultIndex != "" && !seen[c.DefaultIndex] {
		out = append(out, c.DefaultIndex)
	}
	return out
}

// HealthConfig holds the health-score normalization bounds and weights.
// A sub-metric at or better than Good scores 100, at or worse than Bad
// scores 0, linear in between.
type HealthConfig struct {
	HHIGood      float64 `toml:"hhi_good"`
	HHIBad       float64 `toml:"hhi_bad"`
	VolGood      float64 `toml:"vol_good"`
	VolBad       float64 `toml:"vol_bad"`
	DrawdownGood float64 `toml:"drawdown_good"`
	DrawdownBad  float64 `toml:"drawdown_bad"`
	CorrGood     float64 `toml:"corr_good"`
	CorrBad      float64 `toml:"corr_bad"`
	LossGood     float64 `toml:"loss_good"`
	LossBad      float64 `toml:"loss_bad"`

	WeightDiversity   float64 `toml:"weight_diversity"`
	WeightVolatility  float64 `toml:"weight_volatility"`
	WeightDrawdown    float64 `toml:"weight_drawdown"`
	WeightCorrelation float64 `toml:"weight_correlation"`
	WeightLoss        float64 `toml:"weight_loss"`

	GreenThreshold  float64 `toml:"green_threshold"`
	YellowThreshold float64 `toml:"yellow_threshold"`
}

// AlertConfig holds the ten warning rule thresholds.
type AlertConfig struct {
	LookbackDays      int      `toml:"lookback_days"`       // price window fetched per ticker
	DailyDropPct      float64  `toml:"daily_drop_pct"`      // W-01
	LossWarningPct    float64  `toml:"loss_warning_pct"`    // W-02
	LossCriticalPct   float64  `toml:"loss_critical_pct"`   // W-03
	HealthDanger      float64  `toml:"health_danger"`       // W-04
	HealthCaution     float64  `toml:"health_caution"`      // W-05
	SingleStockLimit  float64  `toml:"single_stock_limit"`  // W-06
	SingleSectorLimit float64  `toml:"single_sector_limit"` // W-07
	IndexDropPct      float64  `toml:"index_drop_pct"`      // W-08
	MajorityDropRatio float64  `toml:"majority_drop_ratio"` // W-09
	StaleLossDays     int      `toml:"stale_loss_days"`     // W-10
	Indices           []string `toml:"indices"`             // indices watched by W-08
}

// SignalConfig holds the signal detector windows and thresholds.
type SignalConfig struct {
	LookbackDays int     `toml:"lookback_days"` // price window fetched per ticker
	ShortWindow  int     `toml:"short_window"`  // SMA / volume short window
	LongWindow   int     `toml:"long_window"`   // SMA / volume long window
	SpikeRatio   float64 `toml:"spike_ratio"`   // volume spike multiple
	RSIPeriod    int     `toml:"rsi_period"`
	RSIOversold  float64 `toml:"rsi_oversold"`
	RSILookback  int     `toml:"rsi_lookback"` // days before today checked for oversold touch
	ExpiryDays   int     `toml:"expiry_days"`  // advisory signal lifetime
}

// GetExpiry returns the signal lifetime as a duration, defaulting to 7 days.
func (c *SignalConfig) GetExpiry() time.Duration {
	if c.ExpiryDays <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.ExpiryDays) * 24 * time.Hour
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Path: "data",
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Scheduler: SchedulerConfig{
			Enabled:       true,
			RunInterval:   "24h",
			SweepInterval: "168h",
		},
		Risk: RiskConfig{
			LookbackDays:   365,
			TradingDays:    252,
			RiskFreeRate:   0.005,
			MinBetaOverlap: 10,
			MinVaRPoints:   10,
			IndexRules: []IndexRule{
				{Suffix: ".T", Index: "^N225"},
			},
			DefaultIndex: "^GSPC",
		},
		Health: HealthConfig{
			HHIGood:      0.10,
			HHIBad:       0.50,
			VolGood:      0.15,
			VolBad:       0.40,
			DrawdownGood: 0.05,
			DrawdownBad:  0.30,
			CorrGood:     0.30,
			CorrBad:      0.80,
			LossGood:     0.00,
			LossBad:      0.50,

			WeightDiversity:   0.30,
			WeightVolatility:  0.25,
			WeightDrawdown:    0.20,
			WeightCorrelation: 0.15,
			WeightLoss:        0.10,

			GreenThreshold:  70,
			YellowThreshold: 40,
		},
		Alerts: AlertConfig{
			LookbackDays:      120,
			DailyDropPct:      -0.05,
			LossWarningPct:    -0.10,
			LossCriticalPct:   -0.15,
			HealthDanger:      40,
			HealthCaution:     70,
			SingleStockLimit:  0.30,
			SingleSectorLimit: 0.50,
			IndexDropPct:      -0.03,
			MajorityDropRatio: 0.50,
			StaleLossDays:     30,
			Indices:           []string{"^N225", "^GSPC"},
		},
		Signals: SignalConfig{
			LookbackDays: 180,
			ShortWindow:  5,
			LongWindow:   20,
			SpikeRatio:   2.0,
			RSIPeriod:    14,
			RSIOversold:  30,
			RSILookback:  5,
			ExpiryDays:   7,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("KABUMORI_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("KABUMORI_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("KABUMORI_DATA_PATH"); path != "" {
		config.Storage.Path = filepath.Join(path)
	}

	if key := os.Getenv("EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	}
	if key := os.Getenv("KABUMORI_EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	}

	if interval := os.Getenv("KABUMORI_RUN_INTERVAL"); interval != "" {
		config.Scheduler.RunInterval = interval
	}

	if rf := os.Getenv("KABUMORI_RISK_FREE_RATE"); rf != "" {
		if v, err := strconv.ParseFloat(rf, 64); err == nil {
			config.Risk.RiskFreeRate = v
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
