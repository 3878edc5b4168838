package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
)

// Summary row fields read by the services.
const (
	FieldEquityIRR = "Equity IRR"
	FieldIRR       = "irr"
)

// OutputSummaryRepository reads ASSET_Output_Summary, the per-asset totals the model
// writes after a run. One row per asset plus a "Platform" row for the whole portfolio.
type OutputSummaryRepository struct {
	coll docstore.Collection
}

// NewOutputSummaryRepository creates an OutputSummaryRepository over the store.
func NewOutputSummaryRepository(store docstore.Store) *OutputSummaryRepository {
	return &OutputSummaryRepository{coll: store.Collection(model.CollectionOutputSummary)}
}

// Find retrieves summary rows. A non-empty uniqueID restricts to that portfolio and a
// non-nil ids list restricts to those asset ids. Rows come back in insertion order.
func (r *OutputSummaryRepository) Find(ctx context.Context, uniqueID string, ids []int) ([]docstore.Document, error) {
	filter := docstore.All()
	if uniqueID != "" {
		filter = filter.Eq(model.FieldUniqueID, uniqueID)
	}
	if ids != nil {
		filter = filter.InInts(model.FieldAssetID, ids)
	}
	docs, err := r.coll.Find(ctx, filter, docstore.SortBy(docstore.IDField, docstore.Ascending))
	if err != nil {
		return nil, fmt.Errorf("failed to query output summary: %w", err)
	}
	return docs, nil
}

// FindByPortfolioName retrieves rows written before unique_id tagging, which carry the
// platform name in a portfolio field instead.
func (r *OutputSummaryRepository) FindByPortfolioName(ctx context.Context, name string, ids []int) ([]docstore.Document, error) {
	filter := docstore.All().Eq(model.FieldPortfolio, name)
	if ids != nil {
		filter = filter.InInts(model.FieldAssetID, ids)
	}
	docs, err := r.coll.Find(ctx, filter, docstore.SortBy(docstore.IDField, docstore.Ascending))
	if err != nil {
		return nil, fmt.Errorf("failed to query output summary by portfolio name: %w", err)
	}
	return docs, nil
}

// InputsSummaryRepository reads and writes ASSET_inputs_summary, the flattened asset
// attributes (type, region, capacity, costs) the assets page edits.
type InputsSummaryRepository struct {
	coll docstore.Collection
}

// NewInputsSummaryRepository creates an InputsSummaryRepository over the store.
func NewInputsSummaryRepository(store docstore.Store) *InputsSummaryRepository {
	return &InputsSummaryRepository{coll: store.Collection(model.CollectionInputsSummary)}
}

// FindByAssetNames retrieves rows whose asset_name is one of names.
// An empty list returns every row, as rows predating portfolio scoping carry no unique_id.
func (r *InputsSummaryRepository) FindByAssetNames(ctx context.Context, names []string) ([]docstore.Document, error) {
	filter := docstore.All()
	if len(names) > 0 {
		filter = filter.InStrings(model.FieldAssetName, names)
	}
	docs, err := r.coll.Find(ctx, filter, docstore.SortBy(docstore.IDField, docstore.Ascending))
	if err != nil {
		return nil, fmt.Errorf("failed to query inputs summary: %w", err)
	}
	return docs, nil
}

// Insert stores a new asset row and returns its id.
func (r *InputsSummaryRepository) Insert(ctx context.Context, asset docstore.Document) (string, error) {
	id, err := r.coll.InsertOne(ctx, asset)
	if err != nil {
		return "", fmt.Errorf("failed to insert asset: %w", err)
	}
	return id, nil
}

// UpdateByAssetID sets fields on the row with the given asset_id. A zero Matched count
// means no such asset.
func (r *InputsSummaryRepository) UpdateByAssetID(ctx context.Context, assetID int, set docstore.Document) (docstore.UpdateResult, error) {
	res, err := r.coll.UpdateOne(ctx, docstore.All().Eq(model.FieldAssetID, assetID), set, false)
	if err != nil {
		return docstore.UpdateResult{}, fmt.Errorf("failed to update asset %d: %w", assetID, err)
	}
	return res, nil
}

// UpsertByAssetID sets fields on the row keyed by assetID, creating the row when none
// matches. Numeric ids, however encoded, are stored and matched as integers.
func (r *InputsSummaryRepository) UpsertByAssetID(ctx context.Context, assetID any, set docstore.Document) (docstore.UpdateResult, error) {
	key := assetID
	if id, ok := (docstore.Document{model.FieldAssetID: assetID}).Int(model.FieldAssetID); ok {
		key = id
	}
	set = set.Clone()
	set[model.FieldAssetID] = key
	res, err := r.coll.UpdateOne(ctx, docstore.All().Eq(model.FieldAssetID, key), set, true)
	if err != nil {
		return docstore.UpdateResult{}, fmt.Errorf("failed to save asset %v: %w", assetID, err)
	}
	return res, nil
}

// LatestIRR returns the equity IRR of the most recently written row carrying one.
// Reports false when no row has it.
func (r *InputsSummaryRepository) LatestIRR(ctx context.Context) (float64, bool, error) {
	doc, err := r.coll.FindOne(ctx,
		docstore.All().Exists(FieldEquityIRR),
		docstore.SortBy(docstore.IDField, docstore.Descending),
		docstore.Project(FieldEquityIRR, FieldIRR),
	)
	if errors.Is(err, docstore.ErrNoDocument) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query equity IRR: %w", err)
	}
	if irr, ok := doc.Float(FieldEquityIRR); ok && irr != 0 {
		return irr, true, nil
	}
	if irr, ok := doc.Float(FieldIRR); ok {
		return irr, true, nil
	}
	return 0, false, nil
}
