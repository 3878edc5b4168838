package testutil

import (
	"path/filepath"
	"testing"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/config"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/service"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/settings"
)

func NewTestPortfolioResolver(t *testing.T, store docstore.Store) *service.PortfolioResolver {
	t.Helper()

	return service.NewPortfolioResolver(repository.NewConfigRepository(store))
}

func NewTestAssetDataService(t *testing.T, store docstore.Store) *service.AssetDataService {
	t.Helper()

	configRepo := repository.NewConfigRepository(store)

	return service.NewAssetDataService(
		service.NewPortfolioResolver(configRepo),
		configRepo,
		repository.NewCashFlowRepository(store, model.CollectionCashFlows),
		repository.NewOutputSummaryRepository(store),
	)
}

func NewTestAssetsService(t *testing.T, store docstore.Store) *service.AssetsService {
	t.Helper()

	return service.NewAssetsService(
		NewTestPortfolioResolver(t, store),
		repository.NewInputsSummaryRepository(store),
		repository.NewCashFlowRepository(store, model.CollectionCashFlows),
	)
}

func NewTestSensitivityService(t *testing.T, store docstore.Store) *service.SensitivityService {
	t.Helper()

	return service.NewSensitivityService(
		NewTestPortfolioResolver(t, store),
		repository.NewSensitivityRepository(store),
		repository.NewCashFlowRepository(store, model.CollectionCashFlows),
		repository.NewCashFlowRepository(store, model.CollectionSensitivityOutputs),
	)
}

func NewTestDashboardService(t *testing.T, store docstore.Store) *service.DashboardService {
	t.Helper()

	return service.NewDashboardService(
		NewTestPortfolioResolver(t, store),
		repository.NewCashFlowRepository(store, model.CollectionCashFlows),
		repository.NewInputsSummaryRepository(store),
		repository.NewOutputSummaryRepository(store),
		config.DefaultCurrencyUnit,
	)
}

func NewTestExportService(t *testing.T, store docstore.Store) *service.ExportService {
	t.Helper()

	return service.NewExportService(
		repository.NewCashFlowRepository(store, model.CollectionCashFlows),
		repository.NewCashFlowRepository(store, model.CollectionSensitivityOutputs),
	)
}

func NewTestPriceCurveService(t *testing.T, store docstore.Store) *service.PriceCurveService {
	t.Helper()

	return service.NewPriceCurveService(
		repository.NewPriceCurveRepository(store),
		config.DefaultPreferredCurveName,
	)
}

func NewTestCostsService(t *testing.T, store docstore.Store) *service.CostsService {
	t.Helper()

	return service.NewCostsService(repository.NewCostsRepository(store))
}

func NewTestPortfolioService(t *testing.T, store docstore.Store) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(
		repository.NewConfigRepository(store),
		repository.NewDefaultPortfolioRepository(store),
	)
}

func NewTestSettingsService(t *testing.T, store docstore.Store) *service.SettingsService {
	t.Helper()

	catalogue, err := settings.Default()
	if err != nil {
		t.Fatalf("Failed to load option catalogue: %v", err)
	}

	return service.NewSettingsService(
		repository.NewModelSettingsRepository(store),
		repository.NewSensitivityConfigRepository(store),
		repository.NewDefaultsRepository(store),
		repository.NewAssetDefaultsRepository(store),
		catalogue,
		settings.NewJSONFile(filepath.Join(t.TempDir(), "sensitivity_config.json")),
	)
}

func NewTestSystemService(t *testing.T, store docstore.Store) *service.SystemService {
	t.Helper()

	return service.NewSystemService(store)
}
