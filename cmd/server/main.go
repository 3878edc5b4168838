package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/backend"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/config"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/database"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/logging"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/service"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/settings"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	// Open the document store
	store, err := openStore(context.Background(), cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("Failed to open document store")
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Failed to close document store")
		}
	}()

	log.Info().Str("driver", store.Driver()).Str("version", version.Version).Msg("Connected to document store")

	catalogue, err := settings.Default()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load option catalogue")
	}

	// Create repositories
	configRepo := repository.NewConfigRepository(store)
	cashFlowRepo := repository.NewCashFlowRepository(store, model.CollectionCashFlows)
	sensOutputsRepo := repository.NewCashFlowRepository(store, model.CollectionSensitivityOutputs)
	outputSummaryRepo := repository.NewOutputSummaryRepository(store)
	inputsSummaryRepo := repository.NewInputsSummaryRepository(store)
	sensitivityRepo := repository.NewSensitivityRepository(store)
	priceCurveRepo := repository.NewPriceCurveRepository(store)
	costsRepo := repository.NewCostsRepository(store)

	// Create services
	resolver := service.NewPortfolioResolver(configRepo)
	services := api.Services{
		System:    service.NewSystemService(store),
		AssetData: service.NewAssetDataService(resolver, configRepo, cashFlowRepo, outputSummaryRepo),
		Assets:    service.NewAssetsService(resolver, inputsSummaryRepo, cashFlowRepo),
		Sensitivity: service.NewSensitivityService(
			resolver,
			sensitivityRepo,
			cashFlowRepo,
			sensOutputsRepo,
		),
		Costs:       service.NewCostsService(costsRepo),
		Export:      service.NewExportService(cashFlowRepo, sensOutputsRepo),
		PriceCurves: service.NewPriceCurveService(priceCurveRepo, cfg.Display.PreferredCurveName),
		Dashboard: service.NewDashboardService(
			resolver,
			cashFlowRepo,
			inputsSummaryRepo,
			outputSummaryRepo,
			cfg.Display.CurrencyUnit,
		),
		Portfolios: service.NewPortfolioService(configRepo, repository.NewDefaultPortfolioRepository(store)),
		Settings: service.NewSettingsService(
			repository.NewModelSettingsRepository(store),
			repository.NewSensitivityConfigRepository(store),
			repository.NewDefaultsRepository(store),
			repository.NewAssetDefaultsRepository(store),
			catalogue,
			settings.NewJSONFile(cfg.Backend.SensitivityConfigFile),
		),
		Backend: backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout),
	}

	// Create router
	router := api.NewRouter(services, cfg)

	// Create HTTP server. Event streams stay open for the length of a model run,
	// so there is no write timeout.
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("backend", cfg.Backend.URL).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openStore connects the configured document store driver.
func openStore(ctx context.Context, cfg config.StoreConfig) (docstore.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := database.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return docstore.NewSQLiteStore(db), nil
	default:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return docstore.NewMongoStore(client, cfg.MongoDB), nil
	}
}
