// Package app wires configuration, storage, clients, and services into the
// shared core used by cmd/verdict-server.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/verdict/internal/clients/alphavantage"
	"github.com/bobmcallan/verdict/internal/clients/eodhd"
	"github.com/bobmcallan/verdict/internal/clients/fmp"
	"github.com/bobmcallan/verdict/internal/common"
	"github.com/bobmcallan/verdict/internal/interfaces"
	"github.com/bobmcallan/verdict/internal/models"
	"github.com/bobmcallan/verdict/internal/registry"
	"github.com/bobmcallan/verdict/internal/services/analyzer"
	"github.com/bobmcallan/verdict/internal/services/benchmark"
	"github.com/bobmcallan/verdict/internal/services/fusion"
	"github.com/bobmcallan/verdict/internal/services/normalize"
	"github.com/bobmcallan/verdict/internal/services/scoring"
	"github.com/bobmcallan/verdict/internal/services/valuation"
	"github.com/bobmcallan/verdict/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Storage         interfaces.StorageManager
	Registry        *registry.Registry
	FusionService   interfaces.FusionService
	AnalyzerService interfaces.AnalyzerService
	StartupTime     time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, provider clients, and the full
// analysis pipeline. configPath may be empty, in which case the default
// resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Check provided path, VERDICT_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("VERDICT_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "verdict.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/verdict.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative paths to the binary directory
	if config.Storage.Records.Path != "" && !filepath.IsAbs(config.Storage.Records.Path) {
		config.Storage.Records.Path = filepath.Join(binDir, config.Storage.Records.Path)
	}
	if config.Storage.Reports.Path != "" && !filepath.IsAbs(config.Storage.Reports.Path) {
		config.Storage.Reports.Path = filepath.Join(binDir, config.Storage.Reports.Path)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Provider clients in tier order. A tier without an API key is skipped;
	// the cascade works with whatever remains.
	var clients []interfaces.SourceClient
	var fx interfaces.FXClient

	eodhdKey, err := common.ResolveAPIKey(config.Clients.EODHD.APIKey, "EODHD_API_KEY")
	if err != nil {
		logger.Warn().Msg("EODHD API key not configured - tier 1 and FX conversion unavailable")
	} else {
		client := eodhd.NewClient(eodhdKey,
			eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
			eodhd.WithLogger(logger.Component("eodhd")),
			eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
			eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		)
		clients = append(clients, client)
		fx = client
	}

	fmpKey, err := common.ResolveAPIKey(config.Clients.FMP.APIKey, "FMP_API_KEY")
	if err != nil {
		logger.Warn().Msg("FMP API key not configured - tier 2 unavailable")
	} else {
		clients = append(clients, fmp.NewClient(fmpKey,
			fmp.WithBaseURL(config.Clients.FMP.BaseURL),
			fmp.WithLogger(logger.Component("fmp")),
			fmp.WithRateLimit(config.Clients.FMP.RateLimit),
			fmp.WithTimeout(config.Clients.FMP.GetTimeout()),
		))
	}

	avKey, err := common.ResolveAPIKey(config.Clients.AlphaVantage.APIKey, "ALPHAVANTAGE_API_KEY")
	if err != nil {
		logger.Warn().Msg("AlphaVantage API key not configured - tier 3 unavailable")
	} else {
		clients = append(clients, alphavantage.NewClient(avKey,
			alphavantage.WithBaseURL(config.Clients.AlphaVantage.BaseURL),
			alphavantage.WithLogger(logger.Component("alphavantage")),
			alphavantage.WithRateLimit(config.Clients.AlphaVantage.RateLimit),
			alphavantage.WithTimeout(config.Clients.AlphaVantage.GetTimeout()),
		))
	}

	if len(clients) == 0 {
		storageManager.Close()
		return nil, fmt.Errorf("no provider API keys configured")
	}

	fieldRegistry := registry.Default()
	gapAnalyzer := fusion.NewAnalyzer(nil, config.Pipeline.MinAnnualYears)

	fusionService := fusion.NewService(fieldRegistry, gapAnalyzer, logger.Component("fusion"), clients...)
	normalizer := normalize.NewService(fx, logger.Component("normalize"))

	catalog := benchmark.NewCatalog(industryOverrides(config.Benchmark))
	synthesizer := benchmark.NewSynthesizer(catalog, config.Pipeline.DefaultCV, logger.Component("benchmark"))

	scoringEngine := scoring.NewEngine(nil, nil, synthesizer, logger.Component("scoring"))
	valuationService := valuation.NewService(nil, catalog, config.Pipeline.FairBandPct, logger.Component("valuation"))

	analyzerService := analyzer.NewService(
		fusionService,
		gapAnalyzer,
		normalizer,
		scoringEngine,
		valuationService,
		synthesizer,
		storageManager,
		config.Pipeline.ScanConcurrency,
		logger.Component("analyzer"),
	)

	logger.Info().
		Str("environment", config.Environment).
		Int("tiers", len(clients)).
		Dur("startup", time.Since(startupStart)).
		Msg("Application initialized")

	return &App{
		Config:          config,
		Logger:          logger,
		Storage:         storageManager,
		Registry:        fieldRegistry,
		FusionService:   fusionService,
		AnalyzerService: analyzerService,
		StartupTime:     startupStart,
	}, nil
}

// industryOverrides converts configured industry baselines into catalog
// overrides.
func industryOverrides(cfg common.BenchmarkConfig) map[string]models.IndustryStats {
	if len(cfg.Overrides) == 0 {
		return nil
	}
	out := make(map[string]models.IndustryStats, len(cfg.Overrides))
	for name, o := range cfg.Overrides {
		out[name] = models.IndustryStats{
			Sector: o.Sector,
			Means:  o.Means,
			CV:     o.CV,
			Beta:   o.Beta,
		}
	}
	return out
}

// Close releases storage resources.
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
