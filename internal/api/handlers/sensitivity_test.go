package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/handlers"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/testutil"
)

func setupSensitivityHandler(t *testing.T) (*handlers.SensitivityHandler, docstore.Store) {
	t.Helper()

	store := testutil.SetupTestStore(t)
	testutil.NewPortfolioConfig().WithUniqueID("p1").WithAsset(1, "Solar A").Build(t, store)
	row := func(scenario, parameter string, input, diffBps, irr float64) docstore.Document {
		return docstore.Document{
			"unique_id":              "p1",
			"scenario_id":            scenario,
			"parameter_name":         parameter,
			"input_value":            input,
			"portfolio_irr_diff_bps": diffBps,
			"portfolio_irr_pct":      irr,
		}
	}
	s1 := row("s1", "capex", -10, 50, 8.5)
	s1["asset_1_irr_pct"] = 9.0
	s2 := row("s2", "capex", 10, -30, 7.7)
	s2["asset_1_irr_pct"] = 7.5
	testutil.InsertDocuments(t, store, model.CollectionSensitivitySummary, s1, s2, row("s3", "opex", 5, 10, 8.1))
	return handlers.NewSensitivityHandler(testutil.NewTestSensitivityService(t, store)), store
}

// TestSensitivityHandler_Tornado tests the GET /api/sensitivity-tornado endpoint.
//
// WHY: The tornado chart ranks parameters by how far they move IRR. Bars must be
// widest first, in percentage points, and an asset that is not a number must be
// rejected instead of charting zeros.
func TestSensitivityHandler_Tornado(t *testing.T) {
	handler, _ := setupSensitivityHandler(t)

	t.Run("ranks portfolio parameters by range", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/sensitivity-tornado", map[string]string{"unique_id": "p1"})
		w := httptest.NewRecorder()
		handler.Tornado(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var tornado model.Tornado
		decodeBody(t, w, &tornado)

		if tornado.Asset != model.PortfolioTornadoAsset {
			t.Errorf("Expected asset 'portfolio', got '%s'", tornado.Asset)
		}
		if len(tornado.Parameters) != 2 {
			t.Fatalf("Expected 2 parameters, got %d", len(tornado.Parameters))
		}
		capex := tornado.Parameters[0]
		if capex.Parameter != "capex" || capex.Upside != 0.5 || capex.Downside != -0.3 {
			t.Errorf("Expected capex first with +0.5/-0.3, got %+v", capex)
		}
		if len(tornado.AvailableAssets) != 1 || tornado.AvailableAssets[0].Name != "Solar A" {
			t.Errorf("Expected Solar A as the available asset, got %+v", tornado.AvailableAssets)
		}
	})

	t.Run("returns 400 for a non-numeric asset", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/sensitivity-tornado", map[string]string{
			"unique_id": "p1",
			"asset":     "solar",
		})
		w := httptest.NewRecorder()
		handler.Tornado(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

// TestSensitivityHandler_SensitivityOutput tests the GET /api/get-sensitivity-output endpoint.
func TestSensitivityHandler_SensitivityOutput(t *testing.T) {
	handler, _ := setupSensitivityHandler(t)

	t.Run("filters by scenario", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/get-sensitivity-output", map[string]string{
			"unique_id":   "p1",
			"scenario_id": "s2",
		})
		w := httptest.NewRecorder()
		handler.SensitivityOutput(w, req)

		var output model.SensitivityOutput
		decodeBody(t, w, &output)
		if len(output.Data) != 1 || output.Data[0]["scenario_id"] != "s2" {
			t.Errorf("Expected only s2, got %v", output.Data)
		}
		if len(output.UniqueScenarioIDs) != 3 {
			t.Errorf("Expected 3 scenario ids, got %v", output.UniqueScenarioIDs)
		}
		if output.AssetNames["1"] != "Solar A" {
			t.Errorf("Expected asset name for 1, got %v", output.AssetNames)
		}
	})

	t.Run("returns empty output for an unknown portfolio", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/get-sensitivity-output", map[string]string{"unique_id": "nope"})
		w := httptest.NewRecorder()
		handler.SensitivityOutput(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var output model.SensitivityOutput
		decodeBody(t, w, &output)
		if len(output.Data) != 0 {
			t.Errorf("Expected no rows, got %d", len(output.Data))
		}
	})
}

// TestSensitivityHandler_CheckBaseResults tests the GET /api/check-base-results endpoint.
func TestSensitivityHandler_CheckBaseResults(t *testing.T) {
	handler, store := setupSensitivityHandler(t)

	check := func(t *testing.T) bool {
		t.Helper()
		w := httptest.NewRecorder()
		handler.CheckBaseResults(w, httptest.NewRequest(http.MethodGet, "/api/check-base-results", nil))
		var response map[string]bool
		decodeBody(t, w, &response)
		return response["exists"]
	}

	if check(t) {
		t.Error("Expected exists false before the model has run")
	}
	testutil.NewCashFlow(1, testutil.Date(2024, 1, 31)).WithUniqueID("p1").Build(t, store)
	if !check(t) {
		t.Error("Expected exists true once cash flows are written")
	}
}
