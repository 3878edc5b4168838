package handlers

import (
	"errors"
	"net/http"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/service"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/validation"
)

const (
	msgUniqueIDRequired  = "unique_id parameter is required"
	msgPortfolioNotFound = "Portfolio not found for the provided unique_id"
	msgInvalidAssetID    = "Invalid asset_id parameter"
)

// AssetDataHandler handles HTTP requests for the time-series endpoints over
// ASSET_cash_flows. It parses query parameters and delegates to the assetDataService.
type AssetDataHandler struct {
	assetDataService *service.AssetDataService
}

// NewAssetDataHandler creates a new AssetDataHandler with the provided service dependency.
func NewAssetDataHandler(assetDataService *service.AssetDataService) *AssetDataHandler {
	return &AssetDataHandler{
		assetDataService: assetDataService,
	}
}

// AllAssetsSummary handles GET requests for one field of every asset, per period.
//
// Endpoint: GET /api/all-assets-summary?unique_id=&period=&field=&scenario_id=
// Response: 200 OK with {data: {period: {assetId: value}}}
// Error: 400 Bad Request if unique_id, period or field is missing or invalid
// Error: 404 Not Found if the portfolio is not configured
// Error: 500 Internal Server Error if retrieval fails
func (h *AssetDataHandler) AllAssetsSummary(w http.ResponseWriter, r *http.Request) {
	uniqueID, err := validation.RequireUniqueID(query(r, "unique_id"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, msgUniqueIDRequired, nil)
		return
	}

	data, err := h.assetDataService.AllAssetsSummary(r.Context(), service.AllAssetsSummaryQuery{
		UniqueID:   uniqueID,
		Period:     query(r, "period"),
		Field:      query(r, "field"),
		ScenarioID: query(r, "scenario_id"),
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPortfolioNotFound):
			response.RespondError(w, http.StatusNotFound, msgPortfolioNotFound, nil)
		case errors.Is(err, apperrors.ErrMissingParameter):
			response.RespondError(w, http.StatusBadRequest, "Missing period or field parameter", nil)
		case errors.Is(err, apperrors.ErrInvalidField):
			response.RespondError(w, http.StatusBadRequest, "Invalid field for aggregation", nil)
		case errors.Is(err, apperrors.ErrInvalidPeriod):
			response.RespondError(w, http.StatusBadRequest, "Invalid period parameter", nil)
		default:
			respondInternalError(w, r, "Failed to fetch all assets summary data", err)
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{"data": data})
}

// OutputAssetData handles GET requests for the chart series of one asset, or the asset
// picker of the portfolio when no asset_id is given.
//
// Endpoint: GET /api/output-asset-data?unique_id=&asset_id=&period=&scenario_id=
// Response: 200 OK with {data: [rows]} or {uniqueAssetIds, hybridGroups, allAssets}
// Error: 400 Bad Request if unique_id is missing or asset_id is not a number
// Error: 404 Not Found with details.available_unique_ids if the portfolio is not configured
// Error: 500 Internal Server Error if retrieval fails
func (h *AssetDataHandler) OutputAssetData(w http.ResponseWriter, r *http.Request) {
	uniqueID, err := validation.RequireUniqueID(query(r, "unique_id"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, msgUniqueIDRequired, nil)
		return
	}

	rawAssetID := query(r, "asset_id")
	if rawAssetID == "" {
		listing, err := h.assetDataService.AssetList(r.Context(), uniqueID)
		if err != nil {
			h.respondOutputError(w, r, err)
			return
		}
		response.RespondJSON(w, http.StatusOK, listing)
		return
	}

	assetID, err := validation.ParseAssetID(rawAssetID)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, msgInvalidAssetID, err.Error())
		return
	}

	rows, err := h.assetDataService.OutputAssetData(r.Context(), service.OutputAssetDataQuery{
		UniqueID:   uniqueID,
		AssetID:    assetID,
		Period:     query(r, "period"),
		ScenarioID: query(r, "scenario_id"),
	})
	if err != nil {
		h.respondOutputError(w, r, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (h *AssetDataHandler) respondOutputError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apperrors.ErrPortfolioNotFound) {
		response.RespondError(w, http.StatusNotFound, msgPortfolioNotFound, map[string]any{
			"available_unique_ids": h.assetDataService.AvailableUniqueIDs(r.Context()),
		})
		return
	}
	respondInternalError(w, r, "Failed to fetch data", err)
}

// HybridAssets handles GET requests for the combined series of a hybrid group.
//
// Endpoint: GET /api/hybrid-assets?hybrid_group=&unique_id=&period=
// Response: 200 OK with {data: [rows], metadata}
// Error: 400 Bad Request if hybrid_group is missing
// Error: 404 Not Found if no configuration exists or the group has no assets
// Error: 500 Internal Server Error if retrieval fails
func (h *AssetDataHandler) HybridAssets(w http.ResponseWriter, r *http.Request) {
	group := query(r, "hybrid_group")
	if group == "" {
		response.RespondError(w, http.StatusBadRequest, "Missing hybrid_group parameter", nil)
		return
	}

	data, err := h.assetDataService.HybridAssetData(r.Context(), service.HybridAssetQuery{
		HybridGroup: group,
		UniqueID:    query(r, "unique_id"),
		Period:      query(r, "period"),
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNoConfiguration):
			response.RespondError(w, http.StatusNotFound, "No asset configuration found", nil)
		case errors.Is(err, apperrors.ErrHybridGroupNotFound):
			response.RespondError(w, http.StatusNotFound, "No assets found for hybrid group: "+group, nil)
		default:
			respondInternalError(w, r, "Failed to fetch hybrid asset data", err)
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, data)
}

// ThreeWayForecast handles GET requests for the three-way forecast of one asset, or the
// list of assets that have one when no asset_id is given.
//
// Endpoint: GET /api/three-way-forecast?asset_id=&unique_id=&period=
// Response: 200 OK with {data: [rows]} or {uniqueAssetIds: [{_id, name}]}
// Error: 400 Bad Request if asset_id is not a number
// Error: 500 Internal Server Error if retrieval fails
func (h *AssetDataHandler) ThreeWayForecast(w http.ResponseWriter, r *http.Request) {
	uniqueID := query(r, "unique_id")

	rawAssetID := query(r, "asset_id")
	if rawAssetID == "" {
		assets, err := h.assetDataService.ThreeWayAssets(r.Context(), uniqueID)
		if err != nil {
			respondInternalError(w, r, "Failed to fetch 3-way forecast data", err)
			return
		}
		response.RespondJSON(w, http.StatusOK, map[string]any{"uniqueAssetIds": assets})
		return
	}

	assetID, err := validation.ParseAssetID(rawAssetID)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, msgInvalidAssetID, err.Error())
		return
	}

	rows, err := h.assetDataService.ThreeWayData(r.Context(), service.ThreeWayQuery{
		AssetID:  assetID,
		UniqueID: uniqueID,
		Period:   query(r, "period"),
	})
	if err != nil {
		respondInternalError(w, r, "Failed to fetch 3-way forecast data", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{"data": rows})
}
