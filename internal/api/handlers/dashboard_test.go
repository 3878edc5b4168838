package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/handlers"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/config"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/testutil"
)

// TestDashboardHandler_Dashboard tests the GET /api/dashboard endpoint.
//
// WHY: The headline cards sum the base-case cash flows of the portfolio's assets.
// Assets without recorded capacity still need a capacity figure on the card.
func TestDashboardHandler_Dashboard(t *testing.T) {
	store := testutil.SetupTestStore(t)
	testutil.NewPortfolioConfig().WithUniqueID("p1").WithAsset(1, "Solar A").Build(t, store)
	testutil.NewCashFlow(1, testutil.Date(2024, 1, 31)).
		WithUniqueID("p1").
		With("capex", 80).
		With("debt_capex", 60).
		With("revenue", 10).
		Build(t, store)
	testutil.NewCashFlow(1, testutil.Date(2024, 2, 29)).
		WithUniqueID("p1").
		With("revenue", 15).
		Build(t, store)
	handler := handlers.NewDashboardHandler(testutil.NewTestDashboardService(t, store))

	t.Run("returns 400 without unique_id", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Dashboard(w, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("sums the portfolio cash flows", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/dashboard", map[string]string{"unique_id": "p1"})
		w := httptest.NewRecorder()
		handler.Dashboard(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var metrics model.DashboardMetrics
		decodeBody(t, w, &metrics)

		if metrics.TotalCapex != 80 || metrics.TotalAnnualRevenue != 25 {
			t.Errorf("Expected capex 80 and revenue 25, got %v and %v", metrics.TotalCapex, metrics.TotalAnnualRevenue)
		}
		if metrics.Gearing != 0.75 {
			t.Errorf("Expected gearing 0.75, got %v", metrics.Gearing)
		}
		if metrics.TotalAssets != 1 || metrics.TotalCapacity != 100 {
			t.Errorf("Expected 1 asset with fallback capacity 100, got %d and %v", metrics.TotalAssets, metrics.TotalCapacity)
		}
		if metrics.CurrencyUnit != config.DefaultCurrencyUnit {
			t.Errorf("Expected currency unit %q, got %q", config.DefaultCurrencyUnit, metrics.CurrencyUnit)
		}
	})
}

// TestDashboardHandler_AssetOutputSummary tests the GET /api/dashboard/asset-output-summary endpoint.
func TestDashboardHandler_AssetOutputSummary(t *testing.T) {
	store := testutil.SetupTestStore(t)
	handler := handlers.NewDashboardHandler(testutil.NewTestDashboardService(t, store))

	w := httptest.NewRecorder()
	handler.AssetOutputSummary(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/asset-output-summary", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var summary model.AssetOutputSummary
	decodeBody(t, w, &summary)
	if len(summary.Assets) != 0 || summary.Message == "" {
		t.Errorf("Expected an empty table with a message, got %+v", summary)
	}
}
