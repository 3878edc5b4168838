package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
)

// keyFields are the identifying fields of a result row; everything else numeric is a value.
var keyFields = map[string]bool{}

func init() {
	for _, f := range []string{
		docstore.IDField, model.FieldAssetID, model.FieldDate, model.FieldUniqueID,
		model.FieldScenarioID, model.FieldHybridGroup, model.FieldAssetName,
		model.FieldPortfolio, model.FieldUpdatedAt,
		"period", "year", "month", "quarter", "fiscalYear",
	} {
		keyFields[f] = true
	}
}

// CashFlowRepository reads dated per-asset model output. It serves both the base-case
// collection (ASSET_cash_flows) and the sensitivity outputs (SENS_Asset_Outputs), which
// share a row shape.
type CashFlowRepository struct {
	coll docstore.Collection
}

// NewCashFlowRepository creates a repository over the named result collection.
func NewCashFlowRepository(store docstore.Store, collection string) *CashFlowRepository {
	return &CashFlowRepository{coll: store.Collection(collection)}
}

// Collection names the underlying collection.
func (r *CashFlowRepository) Collection() string {
	return r.coll.Name()
}

// Find retrieves the records matching the query, ordered by date.
// Rows without a parseable date or asset id are skipped.
func (r *CashFlowRepository) Find(ctx context.Context, q model.CashFlowQuery) ([]model.CashFlowRecord, error) {
	docs, err := r.coll.Find(ctx, queryFilter(q), docstore.SortBy(model.FieldDate, docstore.Ascending))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.coll.Name(), err)
	}

	records := make([]model.CashFlowRecord, 0, len(docs))
	skipped := 0
	for _, doc := range docs {
		rec, ok := ParseCashFlow(doc)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		log.Warn().
			Str("collection", r.coll.Name()).
			Int("skipped", skipped).
			Msg("skipped result rows without asset_id or date")
	}
	return records, nil
}

// FindDocuments retrieves the matching rows unparsed, ordered by date.
func (r *CashFlowRepository) FindDocuments(ctx context.Context, q model.CashFlowQuery) ([]docstore.Document, error) {
	docs, err := r.coll.Find(ctx, queryFilter(q), docstore.SortBy(model.FieldDate, docstore.Ascending))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.coll.Name(), err)
	}
	return docs, nil
}

// HasRecords reports whether any row matches the query.
func (r *CashFlowRepository) HasRecords(ctx context.Context, q model.CashFlowQuery) (bool, error) {
	n, err := r.coll.Count(ctx, queryFilter(q))
	if err != nil {
		return false, fmt.Errorf("failed to count %s: %w", r.coll.Name(), err)
	}
	return n > 0, nil
}

// Count returns the number of rows in the collection.
func (r *CashFlowRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.Count(ctx, docstore.All())
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.coll.Name(), err)
	}
	return n, nil
}

// DistinctAssetIDs returns the asset ids that have rows, ascending. A non-empty uniqueID
// restricts to that portfolio and a non-nil ids list restricts to those assets.
func (r *CashFlowRepository) DistinctAssetIDs(ctx context.Context, uniqueID string, ids []int) ([]int, error) {
	filter := docstore.All()
	if ids != nil {
		filter = filter.InInts(model.FieldAssetID, ids)
	}
	if uniqueID != "" {
		filter = filter.Eq(model.FieldUniqueID, uniqueID)
	}
	values, err := r.coll.Distinct(ctx, model.FieldAssetID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list asset ids in %s: %w", r.coll.Name(), err)
	}

	seen := map[int]bool{}
	out := []int{}
	for _, v := range values {
		id, ok := docstore.Document{"v": v}.Int("v")
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Ints(out)
	return out, nil
}

// DistinctScenarioIDs returns the scenario ids present, including "" when base-case
// rows without a scenario_id exist.
func (r *CashFlowRepository) DistinctScenarioIDs(ctx context.Context) ([]string, error) {
	values, err := r.coll.Distinct(ctx, model.FieldScenarioID, docstore.All())
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios in %s: %w", r.coll.Name(), err)
	}
	out := make([]string, 0, len(values)+1)
	for _, v := range values {
		if s := (docstore.Document{"v": v}).String("v"); s != "" {
			out = append(out, s)
		}
	}

	base, err := r.coll.Count(ctx, docstore.All().Missing(model.FieldScenarioID))
	if err != nil {
		return nil, fmt.Errorf("failed to count base rows in %s: %w", r.coll.Name(), err)
	}
	if base > 0 {
		out = append([]string{""}, out...)
	}
	return out, nil
}

func queryFilter(q model.CashFlowQuery) docstore.Filter {
	f := docstore.All()
	if q.AssetIDs != nil {
		f = f.InInts(model.FieldAssetID, q.AssetIDs)
	}
	if q.UniqueID != "" {
		f = f.Eq(model.FieldUniqueID, q.UniqueID)
	}
	switch {
	case q.ScenarioID != "":
		f = f.Eq(model.FieldScenarioID, q.ScenarioID)
	case !q.AllScenarios:
		f = f.Missing(model.FieldScenarioID)
	}
	if q.HybridGroup != "" {
		f = f.Eq(model.FieldHybridGroup, q.HybridGroup)
	} else {
		f = f.Missing(model.FieldHybridGroup)
	}
	return f
}

// ParseCashFlow maps a result row. Reports false when asset_id or date is unusable.
func ParseCashFlow(doc docstore.Document) (model.CashFlowRecord, bool) {
	id, ok := doc.Int(model.FieldAssetID)
	if !ok {
		return model.CashFlowRecord{}, false
	}
	date, ok := doc.Time(model.FieldDate)
	if !ok {
		return model.CashFlowRecord{}, false
	}
	return model.CashFlowRecord{
		AssetID:     id,
		Date:        date,
		UniqueID:    doc.String(model.FieldUniqueID),
		ScenarioID:  doc.String(model.FieldScenarioID),
		HybridGroup: doc.String(model.FieldHybridGroup),
		AssetName:   doc.String(model.FieldAssetName),
		Values:      NumericValues(doc),
	}, true
}

// NumericValues collects the numeric non-key fields of a row. Strings never count as
// numbers here, even when they parse.
func NumericValues(doc docstore.Document) map[string]float64 {
	values := make(map[string]float64, len(doc))
	for k, v := range doc {
		if keyFields[k] {
			continue
		}
		if _, isString := v.(string); isString {
			continue
		}
		if f, ok := docstore.ToFloat(v); ok {
			values[k] = f
		}
	}
	return values
}
