package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/request"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/service"
)

// AssetsHandler handles HTTP requests for the asset attribute table.
type AssetsHandler struct {
	assetsService *service.AssetsService
}

// NewAssetsHandler creates a new AssetsHandler with the provided service dependency.
func NewAssetsHandler(assetsService *service.AssetsService) *AssetsHandler {
	return &AssetsHandler{
		assetsService: assetsService,
	}
}

// Assets handles GET requests for the asset attributes of a portfolio.
//
// Endpoint: GET /api/assets?unique_id=
// Response: 200 OK with {assets, source, count[, message]}
// Error: 500 Internal Server Error if retrieval fails
func (h *AssetsHandler) Assets(w http.ResponseWriter, r *http.Request) {
	result, err := h.assetsService.ListAssets(r.Context(), query(r, "unique_id"))
	if err != nil {
		respondInternalError(w, r, "Failed to fetch assets", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// CreateAsset handles POST requests that add an inputs summary row.
//
// Endpoint: POST /api/assets
// Request Body: CreateAssetRequest ({asset})
// Response: 200 OK with {message, assetId, asset}
// Error: 400 Bad Request if the asset is missing
// Error: 500 Internal Server Error if creation fails
func (h *AssetsHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateAssetRequest](r)
	if err != nil || req.Asset == nil {
		response.RespondError(w, http.StatusBadRequest, "Asset data is required", nil)
		return
	}

	id, asset, err := h.assetsService.CreateAsset(r.Context(), req.Asset, time.Now().UTC())
	if err != nil {
		logFailure(r, "Failed to create asset", err)
		response.RespondError(w, http.StatusInternalServerError, "Failed to create asset", nil)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "Asset created successfully",
		"assetId": id,
		"asset":   asset,
	})
}

// UpdateAsset handles PUT requests that change the inputs summary row of an asset.
//
// Endpoint: PUT /api/assets
// Request Body: UpdateAssetRequest ({assetId, asset})
// Response: 200 OK with {message, modifiedCount}
// Error: 400 Bad Request if assetId or asset is missing
// Error: 404 Not Found if no row carries the asset id
// Error: 500 Internal Server Error if the update fails
func (h *AssetsHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateAssetRequest](r)
	if err != nil || req.Asset == nil {
		response.RespondError(w, http.StatusBadRequest, "Asset ID and asset data are required", nil)
		return
	}
	raw, ok := docstore.ToFloat(req.AssetID)
	if !ok || raw == 0 {
		response.RespondError(w, http.StatusBadRequest, "Asset ID and asset data are required", nil)
		return
	}

	modified, err := h.assetsService.UpdateAsset(r.Context(), int(raw), req.Asset, time.Now().UTC())
	if err != nil {
		if errors.Is(err, apperrors.ErrAssetNotFound) {
			response.RespondError(w, http.StatusNotFound, "Asset not found", nil)
			return
		}
		logFailure(r, "Failed to update asset", err)
		response.RespondError(w, http.StatusInternalServerError, "Failed to update asset", nil)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{
		"message":       "Asset updated successfully",
		"modifiedCount": modified,
	})
}

// AssetInputSummary handles GET requests for the asset inputs table.
//
// Endpoint: GET /api/asset-input-summary
// Response: 200 OK with {assets, count, source}, or {assets: [], message} when empty
// Error: 500 Internal Server Error if retrieval fails
func (h *AssetsHandler) AssetInputSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.assetsService.InputSummary(r.Context())
	if err != nil {
		respondInternalError(w, r, "Failed to fetch asset inputs summary", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// SaveAssetInputSummary handles PUT requests that write rows of the asset inputs table.
//
// Endpoint: PUT /api/asset-input-summary
// Request Body: SaveAssetInputsRequest ({assets: [...]})
// Response: 200 OK with {message, results: [{asset_id, matched, modified, upserted}], totalUpdated}
// Error: 400 Bad Request if assets is missing or not an array
// Error: 500 Internal Server Error if a write fails
func (h *AssetsHandler) SaveAssetInputSummary(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SaveAssetInputsRequest](r)
	if err != nil || req.Assets == nil {
		response.RespondError(w, http.StatusBadRequest, "Assets array is required", nil)
		return
	}

	results, err := h.assetsService.SaveInputSummary(r.Context(), req.Assets, time.Now().UTC())
	if err != nil {
		if errors.Is(err, docstore.ErrInvalidFieldName) {
			response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
		respondInternalError(w, r, "Failed to update assets", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{
		"message":      "Assets updated successfully",
		"results":      results,
		"totalUpdated": len(results),
	})
}
