// Package app wires configuration, storage, clients, and services into one
// application core shared by cmd/folio-server and tests.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/folio/internal/clients/eodhd"
	"github.com/bobmcallan/folio/internal/clients/gemini"
	"github.com/bobmcallan/folio/internal/clients/plaid"
	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/services/analytics"
	"github.com/bobmcallan/folio/internal/services/portfolio"
	"github.com/bobmcallan/folio/internal/services/statement"
	"github.com/bobmcallan/folio/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	FeedClient       interfaces.FeedClient
	MarketClient     interfaces.MarketDataClient
	SummaryClient    interfaces.SummaryClient
	StatementService interfaces.StatementService
	PortfolioService interfaces.PortfolioService
	ReportService    interfaces.ReportService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services from configuration.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	// Config resolution: explicit path, FOLIO_CONFIG, binary dir, dev fallback
	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.PortfolioPath != "" && !filepath.IsAbs(config.Storage.PortfolioPath) {
		config.Storage.PortfolioPath = filepath.Join(binDir, config.Storage.PortfolioPath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()

	var feedClient interfaces.FeedClient
	if config.Clients.Plaid.ClientID != "" && config.Clients.Plaid.Secret != "" {
		feedClient = plaid.NewClient(config.Clients.Plaid.ClientID, config.Clients.Plaid.Secret,
			plaid.WithBaseURL(config.Clients.Plaid.BaseURL),
			plaid.WithLogger(logger),
			plaid.WithRateLimit(config.Clients.Plaid.RateLimit),
		)
	} else {
		logger.Warn().Msg("Plaid credentials not configured - holdings feed will be unavailable")
	}

	var marketClient interfaces.MarketDataClient
	if config.Clients.EODHD.APIKey != "" {
		marketClient = eodhd.NewClient(config.Clients.EODHD.APIKey,
			eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
		)
	} else {
		logger.Warn().Msg("EODHD API key not configured - risk metrics will be unavailable")
	}

	var summaryClient interfaces.SummaryClient
	if config.Clients.Gemini.APIKey != "" {
		client, err := gemini.NewClient(ctx, config.Clients.Gemini.APIKey,
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithLogger(logger),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client - report summaries disabled")
		} else {
			summaryClient = client
		}
	}

	statementService := statement.NewService(logger)
	portfolioService := portfolio.NewService(storageManager, logger)
	reportService := analytics.NewService(portfolioService, marketClient, storageManager, summaryClient, config.Analytics, logger)

	logger.Info().
		Str("environment", config.Environment).
		Str("version", common.GetVersion()).
		Msg("Application initialized")

	return &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		FeedClient:       feedClient,
		MarketClient:     marketClient,
		SummaryClient:    summaryClient,
		StatementService: statementService,
		PortfolioService: portfolioService,
		ReportService:    reportService,
		StartupTime:      time.Now(),
	}, nil
}

// Close releases storage resources.
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
