package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/request"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/service"
)

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// PortfoliosResponse represents the portfolio picker response
type PortfoliosResponse struct {
	Success          bool                     `json:"success"`
	Portfolios       []model.PortfolioListing `json:"portfolios"`
	DefaultPortfolio *string                  `json:"defaultPortfolio"`
}

// DefaultPortfolioResponse represents the default portfolio get and set responses
type DefaultPortfolioResponse struct {
	Success          bool    `json:"success"`
	Message          string  `json:"message,omitempty"`
	DefaultPortfolio *string `json:"defaultPortfolio"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ListPortfolios handles GET requests for the configured portfolios.
//
// Endpoint: GET /api/list-portfolios
// Response: 200 OK with PortfoliosResponse
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) ListPortfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, defaultID, err := h.portfolioService.ListPortfolios(r.Context())
	if err != nil {
		respondInternalError(w, r, "Failed to list portfolios", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, PortfoliosResponse{
		Success:          true,
		Portfolios:       portfolios,
		DefaultPortfolio: nullable(defaultID),
	})
}

// DefaultPortfolio handles GET requests for the default portfolio.
//
// Endpoint: GET /api/default-portfolio
// Response: 200 OK with DefaultPortfolioResponse (defaultPortfolio null when unset)
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) DefaultPortfolio(w http.ResponseWriter, r *http.Request) {
	defaultID, err := h.portfolioService.GetDefaultPortfolio(r.Context())
	if err != nil {
		respondInternalError(w, r, "Failed to get default portfolio", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, DefaultPortfolioResponse{
		Success:          true,
		DefaultPortfolio: nullable(defaultID),
	})
}

// SetDefaultPortfolio handles POST requests that change the default portfolio.
//
// Endpoint: POST /api/default-portfolio
// Request Body: DefaultPortfolioRequest ({unique_id})
// Response: 200 OK with DefaultPortfolioResponse
// Error: 400 Bad Request if unique_id is missing
// Error: 404 Not Found if no configuration carries the unique_id
// Error: 500 Internal Server Error if the save fails
func (h *PortfolioHandler) SetDefaultPortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.DefaultPortfolioRequest](r)
	if err != nil || strings.TrimSpace(req.UniqueID) == "" {
		response.RespondError(w, http.StatusBadRequest, "Portfolio unique_id is required", nil)
		return
	}

	uniqueID, err := h.portfolioService.SetDefaultPortfolio(r.Context(), req.UniqueID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrMissingParameter):
			response.RespondError(w, http.StatusBadRequest, "Portfolio unique_id is required", nil)
		case errors.Is(err, apperrors.ErrPortfolioNotFound):
			response.RespondError(w, http.StatusNotFound, fmt.Sprintf("Portfolio with unique_id %q not found", req.UniqueID), nil)
		default:
			respondInternalError(w, r, "Failed to set default portfolio", err)
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, DefaultPortfolioResponse{
		Success:          true,
		Message:          "Default portfolio set successfully",
		DefaultPortfolio: &uniqueID,
	})
}

// PortfolioUniqueIDResponse maps a portfolio name to its unique_id.
type PortfolioUniqueIDResponse struct {
	Portfolio string `json:"portfolio"`
	UniqueID  string `json:"unique_id"`
}

// PortfolioUniqueID handles GET requests that resolve a portfolio name to its unique_id.
//
// Endpoint: GET /api/get-portfolio-unique-id
// Query Parameters:
//   - portfolio: a unique_id, PlatformName or PortfolioTitle
//
// Response: 200 OK with PortfolioUniqueIDResponse
// Error: 400 Bad Request if portfolio is missing
// Error: 404 Not Found with {error, portfolio} if no configuration matches
// Error: 500 Internal Server Error if the lookup fails
func (h *PortfolioHandler) PortfolioUniqueID(w http.ResponseWriter, r *http.Request) {
	portfolio := query(r, "portfolio")
	if portfolio == "" {
		response.RespondError(w, http.StatusBadRequest, "portfolio parameter is required", nil)
		return
	}

	uniqueID, err := h.portfolioService.LookupUniqueID(r.Context(), portfolio)
	if err != nil {
		if errors.Is(err, apperrors.ErrPortfolioNotFound) {
			response.RespondJSON(w, http.StatusNotFound, map[string]string{
				"error":     "Portfolio not found",
				"portfolio": portfolio,
			})
			return
		}
		respondInternalError(w, r, "Failed to get portfolio unique_id", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, PortfolioUniqueIDResponse{
		Portfolio: portfolio,
		UniqueID:  uniqueID,
	})
}
