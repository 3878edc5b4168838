package handlers

import (
	"errors"
	"net/http"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/service"
)

// SensitivityHandler handles HTTP requests for sensitivity results and scenario listings.
type SensitivityHandler struct {
	sensitivityService *service.SensitivityService
}

// NewSensitivityHandler creates a new SensitivityHandler with the provided service dependency.
func NewSensitivityHandler(sensitivityService *service.SensitivityService) *SensitivityHandler {
	return &SensitivityHandler{
		sensitivityService: sensitivityService,
	}
}

// SensitivityOutput handles GET requests for the sensitivity summary rows of a portfolio.
//
// Endpoint: GET /api/get-sensitivity-output?unique_id=&scenario_id=
// Response: 200 OK with {data, uniqueScenarioIds, assetNames}
// Error: 500 Internal Server Error with {message, error} if retrieval fails
func (h *SensitivityHandler) SensitivityOutput(w http.ResponseWriter, r *http.Request) {
	output, err := h.sensitivityService.Output(r.Context(), query(r, "unique_id"), query(r, "scenario_id"))
	if err != nil {
		logFailure(r, "Failed to fetch sensitivity data", err)
		response.RespondJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Failed to fetch sensitivity data",
			"error":   err.Error(),
		})
		return
	}

	response.RespondJSON(w, http.StatusOK, output)
}

// Tornado handles GET requests for the IRR tornado chart of a portfolio or one asset.
//
// Endpoint: GET /api/sensitivity-tornado?unique_id=&asset=
// Response: 200 OK with {asset, assetName, availableAssets, parameters}
// Error: 400 Bad Request if asset is neither "portfolio" nor a number
// Error: 500 Internal Server Error if retrieval fails
func (h *SensitivityHandler) Tornado(w http.ResponseWriter, r *http.Request) {
	tornado, err := h.sensitivityService.Tornado(r.Context(), query(r, "unique_id"), query(r, "asset"))
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidAssetID) {
			response.RespondError(w, http.StatusBadRequest, "Invalid asset parameter", err.Error())
			return
		}
		respondInternalError(w, r, "Failed to fetch tornado data", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, tornado)
}

// ScenariosResponse lists scenarios with per-type counts.
type ScenariosResponse struct {
	Scenarios []model.Scenario `json:"scenarios"`
	Count     int              `json:"count"`
	Types     map[string]int   `json:"types"`
}

// Scenarios handles GET requests for the base and sensitivity runs.
//
// Endpoint: GET /api/scenarios?type=all|base|sensitivity
// Response: 200 OK with ScenariosResponse
// Error: 500 Internal Server Error if retrieval fails
func (h *SensitivityHandler) Scenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := h.sensitivityService.Scenarios(r.Context(), query(r, "type"))
	if err != nil {
		respondInternalError(w, r, "Failed to fetch scenarios", err)
		return
	}

	types := map[string]int{model.ScenarioTypeBase: 0, model.ScenarioTypeSensitivity: 0}
	for _, s := range scenarios {
		types[s.Type]++
	}
	response.RespondJSON(w, http.StatusOK, ScenariosResponse{
		Scenarios: scenarios,
		Count:     len(scenarios),
		Types:     types,
	})
}

// CheckBaseResults handles GET requests asking whether the model has run.
//
// Endpoint: GET /api/check-base-results
// Response: 200 OK with {exists}
// Error: 500 Internal Server Error if the count fails
func (h *SensitivityHandler) CheckBaseResults(w http.ResponseWriter, r *http.Request) {
	exists, err := h.sensitivityService.HasBaseResults(r.Context())
	if err != nil {
		logFailure(r, "Failed to check base results", err)
		response.RespondError(w, http.StatusInternalServerError, "Failed to check base results", nil)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}
