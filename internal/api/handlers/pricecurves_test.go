package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/handlers"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/config"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/testutil"
)

func setupPriceCurveHandler(t *testing.T) *handlers.PriceCurveHandler {
	t.Helper()

	store := testutil.SetupTestStore(t)
	point := func(curve string, month int, price float64) docstore.Document {
		return docstore.Document{
			model.FieldCurveName: curve,
			model.FieldTime:      testutil.Date(2024, 1, month),
			model.FieldRegion:    "VIC",
			model.FieldProfile:   "solar",
			model.FieldType:      "energy",
			model.FieldPrice:     price,
		}
	}
	testutil.InsertDocuments(t, store, model.CollectionPriceCurves,
		point("zeta", 1, 40),
		point(config.DefaultPreferredCurveName, 1, 50),
		point(config.DefaultPreferredCurveName, 2, 70),
		point("Alpha", 1, 60),
	)
	testutil.InsertDocuments(t, store, model.CollectionPriceCurvesLegacy,
		docstore.Document{"TIME": "2024-01", "PRICE": 42},
	)
	return handlers.NewPriceCurveHandler(testutil.NewTestPriceCurveService(t, store))
}

// TestPriceCurveHandler_PriceCurves tests the GET /api/price-curves endpoint.
//
// WHY: Older dashboards call the endpoint without a curve or period and expect
// the single-curve collection. Named curves are averaged per period.
func TestPriceCurveHandler_PriceCurves(t *testing.T) {
	handler := setupPriceCurveHandler(t)

	t.Run("returns the legacy collection without parameters", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.PriceCurves(w, httptest.NewRequest(http.MethodGet, "/api/price-curves", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var rows []map[string]any
		decodeBody(t, w, &rows)
		if len(rows) != 1 || rows[0]["PRICE"] != float64(42) {
			t.Errorf("Expected the legacy row, got %v", rows)
		}
	})

	t.Run("averages a named curve per year", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/price-curves", map[string]string{
			"curve_name": config.DefaultPreferredCurveName,
			"period":     "yearly",
		})
		w := httptest.NewRecorder()
		handler.PriceCurves(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var rows []map[string]any
		decodeBody(t, w, &rows)
		if len(rows) != 1 || rows[0]["PRICE"] != float64(60) {
			t.Errorf("Expected one yearly average of 60, got %v", rows)
		}
	})

	t.Run("returns points one by one without a period", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/price-curves", map[string]string{"curve_name": "Alpha"})
		w := httptest.NewRecorder()
		handler.PriceCurves(w, req)

		var rows []map[string]any
		decodeBody(t, w, &rows)
		if len(rows) != 1 || rows[0]["curve_name"] != "Alpha" {
			t.Errorf("Expected the single Alpha point, got %v", rows)
		}
	})
}

// TestPriceCurveHandler_Meta tests the GET /api/price-curves/meta endpoint.
func TestPriceCurveHandler_Meta(t *testing.T) {
	handler := setupPriceCurveHandler(t)

	w := httptest.NewRecorder()
	handler.Meta(w, httptest.NewRequest(http.MethodGet, "/api/price-curves/meta", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var meta model.PriceCurveMeta
	decodeBody(t, w, &meta)

	want := []string{config.DefaultPreferredCurveName, "Alpha", "zeta"}
	if len(meta.CurveNames) != len(want) {
		t.Fatalf("Expected %v, got %v", want, meta.CurveNames)
	}
	for i := range want {
		if meta.CurveNames[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, meta.CurveNames)
			break
		}
	}
}
