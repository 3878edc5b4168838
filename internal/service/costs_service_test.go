package service_test

import (
	"errors"
	"testing"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/testutil"
)

func revision(n int) *int { return &n }

// TestCostsService_SaveCosts tests the SaveCosts method.
//
// WHY: Two analysts can have the costs page open at once. A save that carries a
// revision must fail once someone else saved in between, while a save without one
// keeps the old last-writer-wins behaviour.
func TestCostsService_SaveCosts(t *testing.T) {
	t.Run("last writer wins without a revision", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := testutil.NewTestCostsService(t, store)

		for _, capex := range []float64{1, 2} {
			_, err := svc.SaveCosts(t.Context(), model.SaveCostsRequest{
				UniqueID: "p1",
				Assets:   map[string]any{"1": map[string]any{"capex": capex}},
			})
			if err != nil {
				t.Fatalf("SaveCosts() returned unexpected error: %v", err)
			}
		}

		costs, err := svc.GetCosts(t.Context(), "p1")
		if err != nil {
			t.Fatalf("GetCosts() returned unexpected error: %v", err)
		}
		if costs.Revision != 2 {
			t.Errorf("Expected revision 2, got %d", costs.Revision)
		}
		asset, _ := costs.Assets["1"].(docstore.Document)
		if v, ok := asset.Float("capex"); !ok || v != 2 {
			t.Errorf("Expected the second save to win, got %v", costs.Assets)
		}
	})

	t.Run("rejects a stale revision", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := testutil.NewTestCostsService(t, store)

		first := model.SaveCostsRequest{UniqueID: "p1", Assets: map[string]any{}, Revision: revision(0)}
		if _, err := svc.SaveCosts(t.Context(), first); err != nil {
			t.Fatalf("SaveCosts() returned unexpected error: %v", err)
		}

		_, err := svc.SaveCosts(t.Context(), first)
		if !errors.Is(err, apperrors.ErrRevisionConflict) {
			t.Errorf("Expected ErrRevisionConflict, got %v", err)
		}
	})

	t.Run("validates the request", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		svc := testutil.NewTestCostsService(t, store)

		_, err := svc.SaveCosts(t.Context(), model.SaveCostsRequest{Assets: map[string]any{}})
		if err == nil {
			t.Error("Expected an error for a missing unique_id")
		}
	})
}
