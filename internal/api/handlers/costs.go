package handlers

import (
	"errors"
	"net/http"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/service"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/validation"
)

// CostsHandler handles HTTP requests for portfolio CAPEX/OPEX line items.
type CostsHandler struct {
	costsService *service.CostsService
}

// NewCostsHandler creates a new CostsHandler with the provided service dependency.
func NewCostsHandler(costsService *service.CostsService) *CostsHandler {
	return &CostsHandler{
		costsService: costsService,
	}
}

// GetCosts handles GET requests for the stored costs of a portfolio.
//
// Endpoint: GET /api/portfolio-costs?unique_id=
// Response: 200 OK with the stored document or {unique_id, assets: {}, updated_at: null}
// Error: 400 Bad Request if unique_id is missing
// Error: 500 Internal Server Error if retrieval fails
func (h *CostsHandler) GetCosts(w http.ResponseWriter, r *http.Request) {
	uniqueID, err := validation.RequireUniqueID(query(r, "unique_id"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, msgUniqueIDRequired, nil)
		return
	}

	costs, err := h.costsService.GetCosts(r.Context(), uniqueID)
	if err != nil {
		respondInternalError(w, r, "Failed to fetch portfolio costs", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, costs)
}

// SaveCosts handles POST requests that store the costs of a portfolio. A request that
// carries a revision is rejected when another save happened since that revision was read.
//
// Endpoint: POST /api/portfolio-costs
// Request Body: SaveCostsRequest ({unique_id, assets, revision?})
// Response: 200 OK with {success, message, updated, created, updated_at, revision}
// Error: 400 Bad Request if validation fails or the body is invalid
// Error: 409 Conflict if the revision is stale
// Error: 500 Internal Server Error if the save fails
func (h *CostsHandler) SaveCosts(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[model.SaveCostsRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.costsService.SaveCosts(r.Context(), req)
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			response.RespondError(w, http.StatusBadRequest, firstValidationMessage(verr), verr.Fields)
		case errors.Is(err, apperrors.ErrRevisionConflict):
			response.RespondError(w, http.StatusConflict, "Portfolio costs were modified by another user", nil)
		default:
			respondInternalError(w, r, "Failed to save portfolio costs", err)
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Portfolio costs saved successfully",
		"updated":    result.Updated,
		"created":    result.Created,
		"updated_at": result.UpdatedAt,
		"revision":   result.Revision,
	})
}

// firstValidationMessage picks the message shown as the error, unique_id first.
func firstValidationMessage(verr *validation.Error) string {
	for _, field := range []string{"unique_id", "assets", "revision"} {
		if msg, ok := verr.Fields[field]; ok {
			return msg
		}
	}
	return "validation failed"
}
