// Package app wires configuration, storage, the market data client, and
// the analytic services into one runnable unit.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kfujii/kabumori/internal/clients/eodhd"
	"github.com/kfujii/kabumori/internal/common"
	"github.com/kfujii/kabumori/internal/interfaces"
	"github.com/kfujii/kabumori/internal/services/alert"
	"github.com/kfujii/kabumori/internal/services/health"
	"github.com/kfujii/kabumori/internal/services/risk"
	"github.com/kfujii/kabumori/internal/services/signal"
	"github.com/kfujii/kabumori/internal/storage"
)

// App holds all initialized services, the client, and storage.
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	Storage       interfaces.StorageManager
	MarketClient  interfaces.MarketDataClient
	RiskService   interfaces.RiskService
	HealthService interfaces.HealthService
	AlertService  interfaces.AlertService
	SignalService interfaces.SignalService
	StartupTime   time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, the EODHD client, and all services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	// Get binary directory for self-contained operation
	binDir := getBinaryDir()

	// Load configuration - check provided path, KABUMORI_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("KABUMORI_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "kabumori.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/kabumori.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	// Initialize logger
	logger := common.NewLoggerFromConfig(config.Logging)

	// Initialize storage
	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if config.Clients.EODHD.APIKey == "" {
		logger.Warn().Msg("EODHD API key not configured - price fetches will fail")
	}

	// Initialize the market data client
	marketClient := eodhd.NewClient(config.Clients.EODHD.APIKey,
		eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
		eodhd.WithLogger(logger),
		eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
		eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
	)

	// Initialize services
	riskService := risk.NewService(marketClient, config.Risk, logger)
	healthService := health.NewService(marketClient, config.Health, logger)
	alertService := alert.NewService(marketClient, config.Alerts, logger)
	signalService := signal.NewService(marketClient, config.Signals, logger)

	a := &App{
		Config:        config,
		Logger:        logger,
		Storage:       storageManager,
		MarketClient:  marketClient,
		RiskService:   riskService,
		HealthService: healthService,
		AlertService:  alertService,
		SignalService: signalService,
		StartupTime:   startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: cancel scheduler, close storage.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}

// StartScheduler launches the background pipeline and sweep goroutines.
func (a *App) StartScheduler() {
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	a.schedulerCancel = schedulerCancel
	go startScheduler(schedulerCtx, a)
}
