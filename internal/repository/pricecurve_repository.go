package repository

import (
	"context"
	"fmt"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
)

// PriceCurveRepository reads the price curve collections written by the curve loader.
type PriceCurveRepository struct {
	legacy   docstore.Collection
	points   docstore.Collection
	metadata docstore.Collection
}

// NewPriceCurveRepository creates a PriceCurveRepository over the store.
func NewPriceCurveRepository(store docstore.Store) *PriceCurveRepository {
	return &PriceCurveRepository{
		legacy:   store.Collection(model.CollectionPriceCurvesLegacy),
		points:   store.Collection(model.CollectionPriceCurves),
		metadata: store.Collection(model.CollectionPriceCurvesMetadata),
	}
}

// Legacy returns every document of the single-curve PRICE_Curves collection unchanged.
func (r *PriceCurveRepository) Legacy(ctx context.Context) ([]docstore.Document, error) {
	docs, err := r.legacy.Find(ctx, docstore.All(), docstore.SortBy(docstore.IDField, docstore.Ascending))
	if err != nil {
		return nil, fmt.Errorf("failed to query legacy price curves: %w", err)
	}
	return docs, nil
}

// Points retrieves curve points matching the query, ordered by TIME.
// Points without a parseable TIME or PRICE are skipped.
func (r *PriceCurveRepository) Points(ctx context.Context, q model.PriceCurveQuery) ([]model.PricePoint, error) {
	filter := docstore.All()
	for field, value := range map[string]string{
		model.FieldCurveName: q.CurveName,
		model.FieldRegion:    q.Region,
		model.FieldProfile:   q.Profile,
		model.FieldType:      q.Type,
	} {
		if value != "" {
			filter = filter.Eq(field, value)
		}
	}

	docs, err := r.points.Find(ctx, filter, docstore.SortBy(model.FieldTime, docstore.Ascending))
	if err != nil {
		return nil, fmt.Errorf("failed to query price curves: %w", err)
	}

	points := make([]model.PricePoint, 0, len(docs))
	for _, doc := range docs {
		t, ok := doc.Time(model.FieldTime)
		if !ok {
			continue
		}
		price, ok := doc.Float(model.FieldPrice)
		if !ok {
			continue
		}
		points = append(points, model.PricePoint{
			CurveName: doc.String(model.FieldCurveName),
			Time:      t,
			Region:    doc.String(model.FieldRegion),
			Profile:   doc.String(model.FieldProfile),
			Type:      doc.String(model.FieldType),
			Price:     price,
		})
	}
	return points, nil
}

// CurveNames returns the distinct non-empty curve names, unordered.
func (r *PriceCurveRepository) CurveNames(ctx context.Context) ([]string, error) {
	values, err := r.points.Distinct(ctx, model.FieldCurveName, docstore.All())
	if err != nil {
		return nil, fmt.Errorf("failed to list curve names: %w", err)
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			names = append(names, s)
		}
	}
	return names, nil
}

// Metadata maps curve name to the metadata stored for it.
func (r *PriceCurveRepository) Metadata(ctx context.Context) (map[string]any, error) {
	docs, err := r.metadata.Find(ctx, docstore.All(), docstore.SortBy(docstore.IDField, docstore.Ascending))
	if err != nil {
		return nil, fmt.Errorf("failed to query price curve metadata: %w", err)
	}
	out := make(map[string]any, len(docs))
	for _, doc := range docs {
		if name := doc.String(model.FieldCurveName); name != "" {
			out[name] = doc["metadata"]
		}
	}
	return out, nil
}
