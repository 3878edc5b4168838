package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/handlers"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/testutil"
)

// TestPortfolioHandler_ListPortfolios tests the GET /api/list-portfolios endpoint.
//
// WHY: This is the portfolio picker of every page. The frontend depends on the
// default portfolio being listed first and flagged, and on defaultPortfolio being
// null rather than missing when no default is stored.
func TestPortfolioHandler_ListPortfolios(t *testing.T) {
	t.Run("returns 200 with an empty list", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		handler := handlers.NewPortfolioHandler(testutil.NewTestPortfolioService(t, store))

		req := httptest.NewRequest(http.MethodGet, "/api/list-portfolios", nil)
		w := httptest.NewRecorder()

		handler.ListPortfolios(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		contentType := w.Header().Get("Content-Type")
		if contentType != "application/json" {
			t.Errorf("Expected Content-Type 'application/json', got '%s'", contentType)
		}

		var raw map[string]any
		if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if raw["success"] != true {
			t.Errorf("Expected success true, got %v", raw["success"])
		}
		if v, ok := raw["defaultPortfolio"]; !ok || v != nil {
			t.Errorf("Expected defaultPortfolio null, got %v (present=%v)", v, ok)
		}
		if list, ok := raw["portfolios"].([]any); !ok || len(list) != 0 {
			t.Errorf("Expected empty portfolios array, got %v", raw["portfolios"])
		}
	})

	t.Run("lists the default portfolio first", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := testutil.NewTestPortfolioService(t, store)
		handler := handlers.NewPortfolioHandler(svc)

		testutil.NewPortfolioConfig().WithUniqueID("a-portfolio").WithAsset(1, "Solar A").Build(t, store)
		testutil.NewPortfolioConfig().WithUniqueID("z-portfolio").WithTitle("Zephyr").Build(t, store)
		if _, err := svc.SetDefaultPortfolio(t.Context(), "z-portfolio"); err != nil {
			t.Fatalf("Failed to set default: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/list-portfolios", nil)
		w := httptest.NewRecorder()

		handler.ListPortfolios(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var response handlers.PortfoliosResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}

		if len(response.Portfolios) != 2 {
			t.Fatalf("Expected 2 portfolios, got %d", len(response.Portfolios))
		}
		if response.Portfolios[0].UniqueID != "z-portfolio" || !response.Portfolios[0].IsDefault {
			t.Errorf("Expected default z-portfolio first, got %+v", response.Portfolios[0])
		}
		if response.Portfolios[0].Title != "Zephyr" {
			t.Errorf("Expected title 'Zephyr', got '%s'", response.Portfolios[0].Title)
		}
		if response.Portfolios[1].AssetCount != 1 {
			t.Errorf("Expected 1 asset for a-portfolio, got %d", response.Portfolios[1].AssetCount)
		}
		if response.DefaultPortfolio == nil || *response.DefaultPortfolio != "z-portfolio" {
			t.Errorf("Expected defaultPortfolio 'z-portfolio', got %v", response.DefaultPortfolio)
		}
	})
}

// TestPortfolioHandler_SetDefaultPortfolio tests the POST /api/default-portfolio endpoint.
//
// WHY: The default decides which portfolio every page opens with. An unknown
// unique_id must be rejected so the picker never points at nothing.
func TestPortfolioHandler_SetDefaultPortfolio(t *testing.T) {
	setup := func(t *testing.T) *handlers.PortfolioHandler {
		t.Helper()
		store := testutil.SetupTestStore(t)
		testutil.NewPortfolioConfig().WithUniqueID("p1").Build(t, store)
		return handlers.NewPortfolioHandler(testutil.NewTestPortfolioService(t, store))
	}

	t.Run("stores and returns the default", func(t *testing.T) {
		handler := setup(t)

		req := httptest.NewRequest(http.MethodPost, "/api/default-portfolio", strings.NewReader(`{"unique_id":"p1"}`))
		w := httptest.NewRecorder()
		handler.SetDefaultPortfolio(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var response handlers.DefaultPortfolioResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response.Message != "Default portfolio set successfully" {
			t.Errorf("Unexpected message '%s'", response.Message)
		}

		getReq := httptest.NewRequest(http.MethodGet, "/api/default-portfolio", nil)
		getW := httptest.NewRecorder()
		handler.DefaultPortfolio(getW, getReq)

		var stored handlers.DefaultPortfolioResponse
		if err := json.NewDecoder(getW.Body).Decode(&stored); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if stored.DefaultPortfolio == nil || *stored.DefaultPortfolio != "p1" {
			t.Errorf("Expected stored default 'p1', got %v", stored.DefaultPortfolio)
		}
	})

	t.Run("returns 400 when unique_id is missing", func(t *testing.T) {
		handler := setup(t)

		req := httptest.NewRequest(http.MethodPost, "/api/default-portfolio", strings.NewReader(`{"unique_id":"  "}`))
		w := httptest.NewRecorder()
		handler.SetDefaultPortfolio(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("returns 404 for an unknown portfolio", func(t *testing.T) {
		handler := setup(t)

		req := httptest.NewRequest(http.MethodPost, "/api/default-portfolio", strings.NewReader(`{"unique_id":"missing"}`))
		w := httptest.NewRecorder()
		handler.SetDefaultPortfolio(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `\"missing\"`) {
			t.Errorf("Expected the unique_id in the message, got %s", w.Body.String())
		}
	})
}

// TestPortfolioHandler_PortfolioUniqueID tests the GET /api/get-portfolio-unique-id endpoint.
//
// WHY: Older pages remember the selected portfolio by platform name or title. The
// lookup must find the unique_id by any of the three, and configurations that
// predate unique_ids must answer with their platform name.
func TestPortfolioHandler_PortfolioUniqueID(t *testing.T) {
	store := testutil.SetupTestStore(t)
	handler := handlers.NewPortfolioHandler(testutil.NewTestPortfolioService(t, store))

	testutil.NewPortfolioConfig().WithUniqueID("p1").WithPlatformName("North").WithTitle("Northern Sites").Build(t, store)
	testutil.InsertDocuments(t, store, model.CollectionConfigInputs, docstore.Document{
		"PlatformName": "Legacy",
		"asset_inputs": []any{},
	})

	tests := []struct {
		name      string
		portfolio string
		want      string
	}{
		{"by unique_id", "p1", "p1"},
		{"by platform name", "North", "p1"},
		{"by title", " Northern Sites ", "p1"},
		{"platform name when unique_id is absent", "Legacy", "Legacy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/get-portfolio-unique-id", map[string]string{"portfolio": tt.portfolio})
			w := httptest.NewRecorder()

			handler.PortfolioUniqueID(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
			}
			var got handlers.PortfolioUniqueIDResponse
			decodeBody(t, w, &got)
			if got.UniqueID != tt.want {
				t.Errorf("Expected unique_id %q, got %q", tt.want, got.UniqueID)
			}
			if got.Portfolio != strings.TrimSpace(tt.portfolio) {
				t.Errorf("Expected portfolio %q echoed, got %q", strings.TrimSpace(tt.portfolio), got.Portfolio)
			}
		})
	}

	t.Run("returns 400 without portfolio", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.PortfolioUniqueID(w, httptest.NewRequest(http.MethodGet, "/api/get-portfolio-unique-id", nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("returns 404 with the portfolio for an unknown name", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/get-portfolio-unique-id", map[string]string{"portfolio": "Nowhere"})
		w := httptest.NewRecorder()

		handler.PortfolioUniqueID(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("Expected status 404, got %d", w.Code)
		}
		var raw map[string]string
		decodeBody(t, w, &raw)
		if raw["error"] != "Portfolio not found" || raw["portfolio"] != "Nowhere" {
			t.Errorf("Unexpected body %v", raw)
		}
	})
}
