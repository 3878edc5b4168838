package handlers

import (
	"net/http"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/request"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/service"
)

// PriceCurveHandler handles HTTP requests for merchant price curves.
type PriceCurveHandler struct {
	priceCurveService *service.PriceCurveService
}

// NewPriceCurveHandler creates a new PriceCurveHandler with the provided service dependency.
func NewPriceCurveHandler(priceCurveService *service.PriceCurveService) *PriceCurveHandler {
	return &PriceCurveHandler{
		priceCurveService: priceCurveService,
	}
}

// PriceCurves handles GET requests for curve points.
//
// Endpoint: GET /api/price-curves?period=&curve_name=&region=&profile=&type=
// Response: 200 OK with grouped or raw points
// Error: 500 Internal Server Error with {message, error} if retrieval fails
func (h *PriceCurveHandler) PriceCurves(w http.ResponseWriter, r *http.Request) {
	req := request.ParsePriceCurveQuery(
		query(r, "period"),
		query(r, "curve_name"),
		query(r, "region"),
		query(r, "profile"),
		query(r, "type"),
	)

	points, err := h.priceCurveService.PriceCurves(r.Context(), req)
	if err != nil {
		logFailure(r, "Error fetching price curves", err)
		response.RespondJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Error fetching price curves",
			"error":   err.Error(),
		})
		return
	}

	response.RespondJSON(w, http.StatusOK, points)
}

// Meta handles GET requests for the available curve names and their metadata.
//
// Endpoint: GET /api/price-curves/meta
// Response: 200 OK with {curveNames, metadata}
// Error: 500 Internal Server Error with {message, error} if retrieval fails
func (h *PriceCurveHandler) Meta(w http.ResponseWriter, r *http.Request) {
	meta, err := h.priceCurveService.Meta(r.Context())
	if err != nil {
		logFailure(r, "Error fetching price curve metadata", err)
		response.RespondJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Error fetching price curve metadata",
			"error":   err.Error(),
		})
		return
	}

	response.RespondJSON(w, http.StatusOK, meta)
}
