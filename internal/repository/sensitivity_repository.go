package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
)

// SensitivityRepository reads SENS_Summary_Main, one row per sensitivity scenario with
// portfolio and per-asset IRR results flattened into asset_<id>_* fields.
type SensitivityRepository struct {
	coll docstore.Collection
}

// NewSensitivityRepository creates a SensitivityRepository over the store.
func NewSensitivityRepository(store docstore.Store) *SensitivityRepository {
	return &SensitivityRepository{coll: store.Collection(model.CollectionSensitivitySummary)}
}

// HasPortfolioRows reports whether any row is tagged with the portfolio's unique_id.
// Older runs wrote untagged rows.
func (r *SensitivityRepository) HasPortfolioRows(ctx context.Context, uniqueID string) (bool, error) {
	n, err := r.coll.Count(ctx, docstore.All().Eq(model.FieldUniqueID, uniqueID))
	if err != nil {
		return false, fmt.Errorf("failed to count sensitivity rows: %w", err)
	}
	return n > 0, nil
}

// Find retrieves rows in insertion order. Empty uniqueID or scenarioID do not filter.
func (r *SensitivityRepository) Find(ctx context.Context, uniqueID, scenarioID string) ([]docstore.Document, error) {
	docs, err := r.coll.Find(ctx, sensitivityFilter(uniqueID, scenarioID), docstore.SortBy(docstore.IDField, docstore.Ascending))
	if err != nil {
		return nil, fmt.Errorf("failed to query sensitivity rows: %w", err)
	}
	return docs, nil
}

// ScenarioIDs returns the distinct non-empty scenario ids, sorted.
func (r *SensitivityRepository) ScenarioIDs(ctx context.Context, uniqueID string) ([]string, error) {
	values, err := r.coll.Distinct(ctx, model.FieldScenarioID, sensitivityFilter(uniqueID, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to list sensitivity scenarios: %w", err)
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			ids = append(ids, s)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func sensitivityFilter(uniqueID, scenarioID string) docstore.Filter {
	f := docstore.All()
	if uniqueID != "" {
		f = f.Eq(model.FieldUniqueID, uniqueID)
	}
	if scenarioID != "" {
		f = f.Eq(model.FieldScenarioID, scenarioID)
	}
	return f
}
