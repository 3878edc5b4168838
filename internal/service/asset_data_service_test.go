package service_test

import (
	"errors"
	"testing"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/service"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/testutil"
)

// TestAssetDataService_OutputAssetData tests the OutputAssetData method.
//
// WHY: A solar farm and the battery sharing its connection are charted as one
// site. Asking for either member must return the summed series keyed by the
// group's primary asset, unless the model already wrote combined rows.
func TestAssetDataService_OutputAssetData(t *testing.T) {
	setup := func(t *testing.T) *service.AssetDataService {
		t.Helper()
		store := testutil.SetupTestStore(t)
		testutil.NewPortfolioConfig().WithUniqueID("p1").
			WithHybridAsset(1, "Solar", "Site X").
			WithHybridAsset(2, "Battery", "Site X").
			WithAsset(3, "Wind").
			Build(t, store)
		testutil.CreateMonthlyCashFlows(t, store, "p1", 1, testutil.Date(2024, 1, 1), 2, "revenue", 100)
		testutil.CreateMonthlyCashFlows(t, store, "p1", 2, testutil.Date(2024, 1, 1), 2, "revenue", 50)
		testutil.CreateMonthlyCashFlows(t, store, "p1", 3, testutil.Date(2024, 1, 1), 2, "revenue", 7)
		return testutil.NewTestAssetDataService(t, store)
	}

	t.Run("combines hybrid members per period", func(t *testing.T) {
		svc := setup(t)

		rows, err := svc.OutputAssetData(t.Context(), service.OutputAssetDataQuery{UniqueID: "p1", AssetID: 2, Period: "yearly"})
		if err != nil {
			t.Fatalf("OutputAssetData() returned unexpected error: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("Expected one yearly row, got %d", len(rows))
		}
		if rows[0]["revenue"] != float64(300) {
			t.Errorf("Expected combined revenue 300, got %v", rows[0]["revenue"])
		}
		if rows[0]["asset_id"] != 1 {
			t.Errorf("Expected the primary asset id 1, got %v", rows[0]["asset_id"])
		}
	})

	t.Run("prefers rows the model already combined", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		testutil.NewPortfolioConfig().WithUniqueID("p1").
			WithHybridAsset(1, "Solar", "Site X").
			WithHybridAsset(2, "Battery", "Site X").
			Build(t, store)
		testutil.CreateMonthlyCashFlows(t, store, "p1", 1, testutil.Date(2024, 1, 1), 2, "revenue", 100)
		testutil.CreateMonthlyCashFlows(t, store, "p1", 2, testutil.Date(2024, 1, 1), 2, "revenue", 50)
		testutil.NewCashFlow(1, testutil.Date(2024, 1, 31)).
			WithUniqueID("p1").
			WithHybridGroup("Site X").
			With("revenue", 999.0).
			Build(t, store)
		svc := testutil.NewTestAssetDataService(t, store)

		for _, id := range []int{1, 2} {
			rows, err := svc.OutputAssetData(t.Context(), service.OutputAssetDataQuery{UniqueID: "p1", AssetID: id, Period: "yearly"})
			if err != nil {
				t.Fatalf("OutputAssetData(%d) returned unexpected error: %v", id, err)
			}
			if len(rows) != 1 {
				t.Fatalf("Expected one yearly row for asset %d, got %d", id, len(rows))
			}
			if rows[0]["asset_id"] != 1 || rows[0]["revenue"] != float64(999) {
				t.Errorf("Expected the pre-combined row for asset %d, got %v", id, rows[0])
			}
		}
	})

	t.Run("treats a hybrid member without a partner's rows as standalone", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		testutil.NewPortfolioConfig().WithUniqueID("p1").
			WithHybridAsset(1, "Solar", "Site X").
			WithHybridAsset(2, "Battery", "Site X").
			Build(t, store)
		testutil.CreateMonthlyCashFlows(t, store, "p1", 2, testutil.Date(2024, 1, 1), 2, "revenue", 50)
		svc := testutil.NewTestAssetDataService(t, store)

		listing, err := svc.AssetList(t.Context(), "p1")
		if err != nil {
			t.Fatalf("AssetList() returned unexpected error: %v", err)
		}
		if len(listing.UniqueAssetIDs) != 1 || listing.UniqueAssetIDs[0].ID != 2 || listing.UniqueAssetIDs[0].IsHybrid {
			t.Fatalf("Expected asset 2 listed on its own, got %+v", listing.UniqueAssetIDs)
		}

		rows, err := svc.OutputAssetData(t.Context(), service.OutputAssetDataQuery{UniqueID: "p1", AssetID: 2, Period: "yearly"})
		if err != nil {
			t.Fatalf("OutputAssetData() returned unexpected error: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("Expected one yearly row, got %d", len(rows))
		}
		if rows[0]["asset_id"] != 2 || rows[0]["revenue"] != float64(100) {
			t.Errorf("Expected asset 2 with revenue 100, got %v", rows[0])
		}
	})

	t.Run("leaves standalone assets alone", func(t *testing.T) {
		svc := setup(t)

		rows, err := svc.OutputAssetData(t.Context(), service.OutputAssetDataQuery{UniqueID: "p1", AssetID: 3, Period: "yearly"})
		if err != nil {
			t.Fatalf("OutputAssetData() returned unexpected error: %v", err)
		}
		if len(rows) != 1 || rows[0]["revenue"] != float64(14) {
			t.Errorf("Expected revenue 14 for the wind asset, got %v", rows)
		}
	})

	t.Run("returns stored rows without a period", func(t *testing.T) {
		svc := setup(t)

		rows, err := svc.OutputAssetData(t.Context(), service.OutputAssetDataQuery{UniqueID: "p1", AssetID: 3})
		if err != nil {
			t.Fatalf("OutputAssetData() returned unexpected error: %v", err)
		}
		if len(rows) != 2 {
			t.Errorf("Expected 2 raw rows, got %d", len(rows))
		}
	})

	t.Run("returns ErrPortfolioNotFound for an unknown portfolio", func(t *testing.T) {
		svc := setup(t)

		_, err := svc.OutputAssetData(t.Context(), service.OutputAssetDataQuery{UniqueID: "nope", AssetID: 1})
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})
}

// TestAssetDataService_AssetList tests the AssetList method.
func TestAssetDataService_AssetList(t *testing.T) {
	store := testutil.SetupTestStore(t)
	testutil.NewPortfolioConfig().WithUniqueID("p1").
		WithHybridAsset(1, "Solar", "Site X").
		WithHybridAsset(2, "Battery", "Site X").
		WithAsset(3, "Wind").
		WithAsset(4, "No Results").
		Build(t, store)
	for _, id := range []int{1, 2, 3} {
		testutil.CreateMonthlyCashFlows(t, store, "p1", id, testutil.Date(2024, 1, 1), 1, "revenue", 1)
	}
	svc := testutil.NewTestAssetDataService(t, store)

	listing, err := svc.AssetList(t.Context(), "p1")
	if err != nil {
		t.Fatalf("AssetList() returned unexpected error: %v", err)
	}
	if len(listing.AllAssets) != 3 {
		t.Errorf("Expected 3 assets with results, got %d", len(listing.AllAssets))
	}
	if len(listing.UniqueAssetIDs) != 2 {
		t.Fatalf("Expected the hybrid site and the wind asset, got %+v", listing.UniqueAssetIDs)
	}
	site := listing.UniqueAssetIDs[0]
	if !site.IsHybrid || site.ID != 1 || len(site.ComponentIDs) != 2 {
		t.Errorf("Expected the hybrid site keyed by asset 1, got %+v", site)
	}
	if len(listing.HybridGroups["Site X"]) != 2 {
		t.Errorf("Expected 2 members in Site X, got %v", listing.HybridGroups)
	}
}
