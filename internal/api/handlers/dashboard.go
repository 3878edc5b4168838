package handlers

import (
	"net/http"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/service"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/validation"
)

// DashboardHandler handles HTTP requests for the portfolio overview.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler with the provided service dependency.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Dashboard handles GET requests for the headline metrics of a portfolio.
//
// Endpoint: GET /api/dashboard?unique_id=
// Response: 200 OK with DashboardMetrics
// Error: 400 Bad Request if unique_id is missing
// Error: 500 Internal Server Error if retrieval fails
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	uniqueID, err := validation.RequireUniqueID(query(r, "unique_id"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, msgUniqueIDRequired, nil)
		return
	}

	metrics, err := h.dashboardService.Metrics(r.Context(), uniqueID)
	if err != nil {
		respondInternalError(w, r, "Failed to fetch dashboard data", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, metrics)
}

// AssetOutputSummary handles GET requests for the per-asset results table.
//
// Endpoint: GET /api/dashboard/asset-output-summary?unique_id=
// Response: 200 OK with {assets, summary, breakdown, portfolioData, metadata}
// Error: 500 Internal Server Error if retrieval fails
func (h *DashboardHandler) AssetOutputSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboardService.AssetOutputSummary(r.Context(), query(r, "unique_id"))
	if err != nil {
		respondInternalError(w, r, "Failed to fetch asset output summary", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}
