package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/testutil"
)

// TestConfigRepository_FindByUniqueID tests portfolio config lookup and parsing.
//
// WHY: Every portfolio-scoped endpoint starts here. Asset ids arrive as numbers or
// numeric strings depending on which tool wrote the config, and a bad id must not
// take the whole portfolio down.
func TestConfigRepository_FindByUniqueID(t *testing.T) {
	ctx := context.Background()

	t.Run("parses assets with numeric and string ids", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		testutil.NewPortfolioConfig().
			WithUniqueID("p1").
			WithTitle("Main").
			WithAsset(1, "Solar A").
			WithRawAsset(docstore.Document{"id": "2", "name": "Wind B", "hybridGroup": "Site X"}).
			WithRawAsset(docstore.Document{"id": "abc", "name": "Broken"}).
			Build(t, store)

		repo := repository.NewConfigRepository(store)
		cfg, err := repo.FindByUniqueID(ctx, "p1")
		if err != nil {
			t.Fatalf("FindByUniqueID() error = %v", err)
		}

		if got := cfg.AssetIDs(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
			t.Errorf("AssetIDs() = %v, want [1 2]", got)
		}
		if cfg.Assets[1].HybridGroup != "Site X" {
			t.Errorf("hybridGroup = %q, want Site X", cfg.Assets[1].HybridGroup)
		}
		if len(cfg.InvalidAssetIDs) != 1 || cfg.InvalidAssetIDs[0] != "abc" {
			t.Errorf("InvalidAssetIDs = %v, want [abc]", cfg.InvalidAssetIDs)
		}
		if cfg.DisplayName() != "Main" {
			t.Errorf("DisplayName() = %q, want Main", cfg.DisplayName())
		}
	})

	t.Run("miss returns ErrPortfolioNotFound", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		repo := repository.NewConfigRepository(store)

		_, err := repo.FindByUniqueID(ctx, "nope")
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("error = %v, want ErrPortfolioNotFound", err)
		}
	})
}

// TestConfigRepository_First tests retrieval of the oldest config.
//
// WHY: Unscoped endpoints fall back to the first configuration; it must be stable
// across calls rather than whatever the store returns first.
func TestConfigRepository_First(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestStore(t)
	repo := repository.NewConfigRepository(store)

	if _, err := repo.First(ctx); !errors.Is(err, apperrors.ErrNoConfiguration) {
		t.Fatalf("First() on empty store error = %v, want ErrNoConfiguration", err)
	}

	testutil.NewPortfolioConfig().WithUniqueID("older").Build(t, store)
	testutil.NewPortfolioConfig().WithUniqueID("newer").Build(t, store)

	cfg, err := repo.First(ctx)
	if err != nil {
		t.Fatalf("First() error = %v", err)
	}
	if cfg.UniqueID != "older" {
		t.Errorf("First().UniqueID = %q, want older", cfg.UniqueID)
	}

	ids, err := repo.UniqueIDs(ctx, 1)
	if err != nil {
		t.Fatalf("UniqueIDs() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != "older" {
		t.Errorf("UniqueIDs(1) = %v, want [older]", ids)
	}
}

// TestCashFlowRepository_Find tests the scoped cash-flow query.
//
// WHY: The base-case filter and the hybrid filter decide which rows are counted.
// Getting either wrong double counts revenue in every aggregated view.
func TestCashFlowRepository_Find(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestStore(t)
	jan := testutil.Date(2024, 1, 31)

	testutil.NewCashFlow(1, jan).WithUniqueID("p1").With("revenue", 100.0).With("note", "12").Build(t, store)
	testutil.NewCashFlow(1, jan).WithUniqueID("p1").WithScenario("").With("revenue", 5.0).Build(t, store)
	testutil.NewCashFlow(1, jan).WithUniqueID("p1").WithScenario("sensitivity_results_capex_10").With("revenue", 110.0).Build(t, store)
	testutil.NewCashFlow(1, jan).WithUniqueID("p1").WithHybridGroup("Site X").With("revenue", 300.0).Build(t, store)
	testutil.NewCashFlow(2, jan).WithUniqueID("p1").With("revenue", 50.0).Build(t, store)
	testutil.NewCashFlow(3, jan).WithUniqueID("p2").With("revenue", 7.0).Build(t, store)

	repo := repository.NewCashFlowRepository(store, model.CollectionCashFlows)

	tests := []struct {
		name  string
		query model.CashFlowQuery
		want  float64
		count int
	}{
		{"base case for asset", model.CashFlowQuery{AssetIDs: []int{1}, UniqueID: "p1"}, 105, 2},
		{"scenario", model.CashFlowQuery{AssetIDs: []int{1}, ScenarioID: "sensitivity_results_capex_10"}, 110, 1},
		{"hybrid rows only", model.CashFlowQuery{AssetIDs: []int{1}, HybridGroup: "Site X"}, 300, 1},
		{"all scenarios", model.CashFlowQuery{AssetIDs: []int{1}, AllScenarios: true}, 215, 3},
		{"nil ids means every asset", model.CashFlowQuery{UniqueID: "p1"}, 155, 3},
		{"empty ids match nothing", model.CashFlowQuery{AssetIDs: []int{}}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := repo.Find(ctx, tt.query)
			if err != nil {
				t.Fatalf("Find() error = %v", err)
			}
			if len(records) != tt.count {
				t.Fatalf("Find() returned %d records, want %d", len(records), tt.count)
			}
			var sum float64
			for _, r := range records {
				sum += r.Values["revenue"]
				if _, ok := r.Values["note"]; ok {
					t.Errorf("string field leaked into values: %v", r.Values)
				}
				if _, ok := r.Values[model.FieldAssetID]; ok {
					t.Errorf("key field leaked into values: %v", r.Values)
				}
			}
			if sum != tt.want {
				t.Errorf("revenue sum = %v, want %v", sum, tt.want)
			}
		})
	}

	t.Run("distinct asset ids", func(t *testing.T) {
		ids, err := repo.DistinctAssetIDs(ctx, "p1", []int{1, 2, 9})
		if err != nil {
			t.Fatalf("DistinctAssetIDs() error = %v", err)
		}
		if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
			t.Errorf("DistinctAssetIDs() = %v, want [1 2]", ids)
		}
	})

	t.Run("distinct scenario ids include base", func(t *testing.T) {
		ids, err := repo.DistinctScenarioIDs(ctx)
		if err != nil {
			t.Fatalf("DistinctScenarioIDs() error = %v", err)
		}
		if len(ids) != 2 || ids[0] != "" || ids[1] != "sensitivity_results_capex_10" {
			t.Errorf("DistinctScenarioIDs() = %q", ids)
		}
	})
}

// TestInputsSummaryRepository tests asset row writes and the IRR lookup.
//
// WHY: The assets page edits rows by asset_id and the dashboard reads the most recent
// IRR; a stale IRR is shown to users as the headline number.
func TestInputsSummaryRepository(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestStore(t)
	repo := repository.NewInputsSummaryRepository(store)

	if _, ok, err := repo.LatestIRR(ctx); err != nil || ok {
		t.Fatalf("LatestIRR() on empty store = ok %v, err %v", ok, err)
	}

	if _, err := repo.Insert(ctx, docstore.Document{"asset_id": 1, "asset_name": "Solar A", "Equity IRR": 0.08}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if _, err := repo.Insert(ctx, docstore.Document{"asset_id": 2, "asset_name": "Wind B", "Equity IRR": 0.11}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	irr, ok, err := repo.LatestIRR(ctx)
	if err != nil || !ok || irr != 0.11 {
		t.Errorf("LatestIRR() = %v, %v, %v; want 0.11, true, nil", irr, ok, err)
	}

	res, err := repo.UpdateByAssetID(ctx, 2, docstore.Document{"capacity": 50.0})
	if err != nil || res.Matched != 1 {
		t.Errorf("UpdateByAssetID(2) = %+v, %v", res, err)
	}
	res, err = repo.UpdateByAssetID(ctx, 99, docstore.Document{"capacity": 50.0})
	if err != nil || res.Matched != 0 {
		t.Errorf("UpdateByAssetID(99) = %+v, %v; want no match", res, err)
	}

	docs, err := repo.FindByAssetNames(ctx, []string{"Wind B"})
	if err != nil {
		t.Fatalf("FindByAssetNames() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("FindByAssetNames() returned %d rows, want 1", len(docs))
	}
	if c, _ := docs[0].Float("capacity"); c != 50 {
		t.Errorf("capacity = %v, want 50", c)
	}
}

// TestCostsRepository_Save tests revisioned saves of portfolio costs.
//
// WHY: Two people editing costs at once must not silently overwrite each other when
// the client opts into revision checks, while older clients keep last-writer-wins.
func TestCostsRepository_Save(t *testing.T) {
	ctx := context.Background()
	now := testutil.Date(2024, 6, 1)
	assets := map[string]any{"Solar A": map[string]any{"capex": 10.0}}

	t.Run("without revision always wins", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		repo := repository.NewCostsRepository(store)

		first, err := repo.Save(ctx, model.SaveCostsRequest{UniqueID: "p1", Assets: assets}, now)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if !first.Created || first.Revision != 1 {
			t.Errorf("first save = %+v, want created revision 1", first)
		}

		second, err := repo.Save(ctx, model.SaveCostsRequest{UniqueID: "p1", Assets: map[string]any{}}, now.Add(1))
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if !second.Updated || second.Revision != 2 {
			t.Errorf("second save = %+v, want updated revision 2", second)
		}
	})

	t.Run("stale revision conflicts", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		repo := repository.NewCostsRepository(store)
		zero, one := 0, 1

		if _, err := repo.Save(ctx, model.SaveCostsRequest{UniqueID: "p1", Assets: assets, Revision: &zero}, now); err != nil {
			t.Fatalf("initial Save() error = %v", err)
		}
		if _, err := repo.Save(ctx, model.SaveCostsRequest{UniqueID: "p1", Assets: assets, Revision: &one}, now.Add(1)); err != nil {
			t.Fatalf("Save() with current revision error = %v", err)
		}

		_, err := repo.Save(ctx, model.SaveCostsRequest{UniqueID: "p1", Assets: assets, Revision: &one}, now.Add(2))
		if !errors.Is(err, apperrors.ErrRevisionConflict) {
			t.Errorf("Save() with stale revision error = %v, want ErrRevisionConflict", err)
		}

		costs, err := repo.Get(ctx, "p1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if costs.Revision != 2 {
			t.Errorf("stored revision = %d, want 2", costs.Revision)
		}
	})

	t.Run("concurrent first saves create one document", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		repo := repository.NewCostsRepository(store)

		const savers = 8
		errs := make(chan error, savers)
		var wg sync.WaitGroup
		for i := 0; i < savers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				zero := 0
				_, err := repo.Save(ctx, model.SaveCostsRequest{UniqueID: "p1", Assets: assets, Revision: &zero}, now)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		succeeded := 0
		for err := range errs {
			switch {
			case err == nil:
				succeeded++
			case !errors.Is(err, apperrors.ErrRevisionConflict):
				t.Errorf("Save() error = %v, want nil or ErrRevisionConflict", err)
			}
		}
		if succeeded != 1 {
			t.Errorf("successful saves = %d, want 1", succeeded)
		}

		n, err := store.Collection(model.CollectionPortfolioCosts).Count(ctx, docstore.All().Eq(model.FieldUniqueID, "p1"))
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		if n != 1 {
			t.Errorf("stored documents = %d, want 1", n)
		}
	})

	t.Run("legacy document without revision accepts revision 0", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		repo := repository.NewCostsRepository(store)
		testutil.InsertDocuments(t, store, model.CollectionPortfolioCosts, docstore.Document{
			model.FieldUniqueID: "p1",
			"assets":            map[string]any{},
		})
		zero := 0

		res, err := repo.Save(ctx, model.SaveCostsRequest{UniqueID: "p1", Assets: assets, Revision: &zero}, now)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if !res.Updated || res.Revision != 1 {
			t.Errorf("save = %+v, want updated revision 1", res)
		}
	})

	t.Run("revision for missing document conflicts", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		repo := repository.NewCostsRepository(store)
		three := 3

		_, err := repo.Save(ctx, model.SaveCostsRequest{UniqueID: "p1", Assets: assets, Revision: &three}, now)
		if !errors.Is(err, apperrors.ErrRevisionConflict) {
			t.Errorf("error = %v, want ErrRevisionConflict", err)
		}
	})

	t.Run("get on missing portfolio returns nil", func(t *testing.T) {
		store := testutil.SetupTestStore(t)
		repo := repository.NewCostsRepository(store)

		costs, err := repo.Get(ctx, "p1")
		if err != nil || costs != nil {
			t.Errorf("Get() = %+v, %v; want nil, nil", costs, err)
		}
	})
}

// TestSettingsRepository tests the singleton settings documents.
//
// WHY: Settings collections hold one document each; repeated saves must update it in
// place rather than accumulate copies.
func TestSettingsRepository(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestStore(t)
	repo := repository.NewSensitivityConfigRepository(store)

	doc, err := repo.Get(ctx)
	if err != nil || doc != nil {
		t.Fatalf("Get() on empty store = %v, %v", doc, err)
	}

	res, err := repo.Set(ctx, docstore.Document{"output_collection_prefix": "run1"})
	if err != nil || res.Upserted != 1 {
		t.Fatalf("first Set() = %+v, %v", res, err)
	}
	res, err = repo.Set(ctx, docstore.Document{"output_collection_prefix": "run2"})
	if err != nil || res.Matched != 1 {
		t.Fatalf("second Set() = %+v, %v", res, err)
	}

	doc, err = repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if doc.String("output_collection_prefix") != "run2" || doc.String(model.FieldUniqueID) != "default" {
		t.Errorf("stored document = %v", doc)
	}

	n, err := store.Collection(model.CollectionSensitivityConfig).Count(ctx, docstore.All())
	if err != nil || n != 1 {
		t.Errorf("document count = %d, %v; want 1", n, err)
	}
}

// TestPriceCurveRepository tests curve point filtering and metadata.
func TestPriceCurveRepository(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestStore(t)
	testutil.InsertDocuments(t, store, model.CollectionPriceCurves,
		docstore.Document{"curve_name": "AC Nov 2024", "TIME": testutil.Date(2025, 2, 1), "REGION": "NSW", "PROFILE": "solar", "TYPE": "Energy", "PRICE": 60.0},
		docstore.Document{"curve_name": "AC Nov 2024", "TIME": testutil.Date(2025, 1, 1), "REGION": "NSW", "PROFILE": "solar", "TYPE": "Energy", "PRICE": 50.0},
		docstore.Document{"curve_name": "Other", "TIME": testutil.Date(2025, 1, 1), "REGION": "VIC", "PROFILE": "wind", "TYPE": "Energy", "PRICE": 40.0},
	)
	testutil.InsertDocuments(t, store, model.CollectionPriceCurvesMetadata,
		docstore.Document{"curve_name": "Other", "metadata": map[string]any{"source": "vendor"}},
	)

	repo := repository.NewPriceCurveRepository(store)

	points, err := repo.Points(ctx, model.PriceCurveQuery{CurveName: "AC Nov 2024", Region: "NSW"})
	if err != nil {
		t.Fatalf("Points() error = %v", err)
	}
	if len(points) != 2 || points[0].Price != 50 || points[1].Price != 60 {
		t.Errorf("Points() = %+v, want two NSW points ordered by TIME", points)
	}

	names, err := repo.CurveNames(ctx)
	if err != nil || len(names) != 2 {
		t.Errorf("CurveNames() = %v, %v", names, err)
	}

	meta, err := repo.Metadata(ctx)
	if err != nil {
		t.Fatalf("Metadata() error = %v", err)
	}
	if _, ok := meta["Other"]; !ok {
		t.Errorf("Metadata() = %v, want entry for Other", meta)
	}
}
