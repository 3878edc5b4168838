package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/api/handlers"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/testutil"
)

// TestExportHandler_ExportData tests the GET /api/export-data endpoint.
//
// WHY: Analysts open the CSV download in a spreadsheet. The header order and
// the attachment headers decide whether the file opens at all.
func TestExportHandler_ExportData(t *testing.T) {
	setup := func(t *testing.T) *handlers.ExportHandler {
		t.Helper()
		store := testutil.SetupTestStore(t)
		testutil.CreateMonthlyCashFlows(t, store, "p1", 1, testutil.Date(2024, 1, 1), 3, "revenue", 100)
		testutil.NewCashFlow(1, testutil.Date(2024, 1, 31)).
			WithUniqueID("p1").
			WithScenario("s1").
			With("revenue", 5).
			InCollection(model.CollectionSensitivityOutputs).
			Build(t, store)
		return handlers.NewExportHandler(testutil.NewTestExportService(t, store))
	}

	t.Run("writes a quarterly CSV attachment", func(t *testing.T) {
		handler := setup(t)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/export-data", map[string]string{
			"unique_id":   "p1",
			"variables":   "revenue",
			"granularity": "quarterly",
			"format":      "csv",
		})
		w := httptest.NewRecorder()
		handler.ExportData(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("Expected a CSV content type, got '%s'", ct)
		}
		if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="export-data.csv"` {
			t.Errorf("Unexpected Content-Disposition '%s'", cd)
		}

		lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("Expected header and one row, got %q", w.Body.String())
		}
		if lines[0] != "asset_id,date,revenue" {
			t.Errorf("Unexpected header %q", lines[0])
		}
		if lines[1] != "1,2024-01-01,300" {
			t.Errorf("Unexpected row %q", lines[1])
		}
	})

	t.Run("reads the sensitivity collection as JSON", func(t *testing.T) {
		handler := setup(t)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/export-data", map[string]string{
			"collection": "Sensitivity",
			"variables":  "revenue",
		})
		w := httptest.NewRecorder()
		handler.ExportData(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var rows []map[string]any
		decodeBody(t, w, &rows)
		if len(rows) != 1 || rows[0]["revenue"] != float64(5) {
			t.Errorf("Expected the single sensitivity row, got %v", rows)
		}
	})

	t.Run("returns 400 for invalid parameters", func(t *testing.T) {
		handler := setup(t)

		for name, params := range map[string]map[string]string{
			"non-numeric assetId": {"assetId": "one"},
			"unknown format":      {"format": "pdf"},
			"unknown variable":    {"variables": "revenue,$where"},
		} {
			t.Run(name, func(t *testing.T) {
				w := httptest.NewRecorder()
				handler.ExportData(w, testutil.NewRequestWithQueryParams(http.MethodGet, "/api/export-data", params))

				if w.Code != http.StatusBadRequest {
					t.Errorf("Expected status 400, got %d", w.Code)
				}
			})
		}
	})
}
