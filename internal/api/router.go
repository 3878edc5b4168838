package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/middleware"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/backend"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/config"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/service"
)

// Services bundles the dependencies of the HTTP layer.
type Services struct {
	System      *service.SystemService
	AssetData   *service.AssetDataService
	Assets      *service.AssetsService
	Sensitivity *service.SensitivityService
	Costs       *service.CostsService
	Export      *service.ExportService
	PriceCurves *service.PriceCurveService
	Dashboard   *service.DashboardService
	Portfolios  *service.PortfolioService
	Settings    *service.SettingsService
	Backend     *backend.Client
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	assetData := handlers.NewAssetDataHandler(svc.AssetData)
	assets := handlers.NewAssetsHandler(svc.Assets)
	sensitivity := handlers.NewSensitivityHandler(svc.Sensitivity)
	costs := handlers.NewCostsHandler(svc.Costs)
	exports := handlers.NewExportHandler(svc.Export)
	priceCurves := handlers.NewPriceCurveHandler(svc.PriceCurves)
	dashboard := handlers.NewDashboardHandler(svc.Dashboard)
	portfolios := handlers.NewPortfolioHandler(svc.Portfolios)
	settings := handlers.NewSettingsHandler(svc.Settings)
	proxy := handlers.NewProxyHandler(svc.Backend)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		// Result time series
		r.Get("/all-assets-summary", assetData.AllAssetsSummary)
		r.Get("/output-asset-data", assetData.OutputAssetData)
		r.Get("/hybrid-assets", assetData.HybridAssets)
		r.Get("/three-way-forecast", assetData.ThreeWayForecast)
		r.Get("/export-data", exports.ExportData)

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", assets.Assets)
			r.Post("/", assets.CreateAsset)
			r.Put("/", assets.UpdateAsset)
		})
		r.Get("/asset-input-summary", assets.AssetInputSummary)
		r.Put("/asset-input-summary", assets.SaveAssetInputSummary)

		// Sensitivity
		r.Get("/get-sensitivity-output", sensitivity.SensitivityOutput)
		r.Get("/sensitivity-tornado", sensitivity.Tornado)
		r.Get("/scenarios", sensitivity.Scenarios)
		r.Get("/check-base-results", sensitivity.CheckBaseResults)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", dashboard.Dashboard)
			r.Get("/asset-output-summary", dashboard.AssetOutputSummary)
		})

		r.Route("/price-curves", func(r chi.Router) {
			r.Get("/", priceCurves.PriceCurves)
			r.Get("/meta", priceCurves.Meta)
			r.Post("/analyze", proxy.AnalyzePriceCurves)
			r.Post("/upload", proxy.UploadPriceCurves)
		})

		// Portfolio picker and settings stores
		r.Get("/list-portfolios", portfolios.ListPortfolios)
		r.Get("/get-portfolio-unique-id", portfolios.PortfolioUniqueID)
		r.Get("/default-portfolio", portfolios.DefaultPortfolio)
		r.Post("/default-portfolio", portfolios.SetDefaultPortfolio)
		r.Get("/portfolio-costs", costs.GetCosts)
		r.Post("/portfolio-costs", costs.SaveCosts)
		r.Get("/model-settings", settings.ModelSettings)
		r.Post("/model-settings", settings.SaveModelSettings)
		r.Get("/sensitivity-inputs", settings.SensitivityInputs)
		r.Post("/sensitivity-inputs", settings.SaveSensitivityInputs)
		r.Get("/get-defaults", settings.Defaults)
		r.Post("/save-defaults", settings.SaveDefaults)
		r.Get("/asset-defaults", settings.AssetDefaults)
		r.Post("/asset-defaults", settings.SaveAssetDefaults)
		r.Put("/asset-defaults", settings.InitializeAssetDefaults)
		r.Get("/sensitivity-config", settings.SensitivityConfigFile)
		r.Post("/sensitivity-config", settings.SaveSensitivityConfigFile)
		r.Get("/get-sensitivity-config", settings.SensitivityConfigFile)

		// Model backend
		r.Post("/run-model", proxy.RunModel)
		r.Post("/run-model-stream", proxy.RunModelStream)
		r.Post("/run-sensitivity", proxy.RunSensitivity)
		r.Post("/run-sensitivity-stream", proxy.RunSensitivityStream)
	})

	return r
}
