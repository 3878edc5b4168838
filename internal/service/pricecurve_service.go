package service

import (
	"context"
	"sort"
	"strings"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/aggregate"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/validation"
)

// seriesSep joins the dimensions of a curve series into one aggregator entity.
const seriesSep = "\x1f"

// PriceCurveService serves the merchant price curves.
type PriceCurveService struct {
	priceCurveRepo *repository.PriceCurveRepository
	preferredCurve string
}

// NewPriceCurveService creates a new PriceCurveService. preferredCurve is listed first
// in the curve picker.
func NewPriceCurveService(priceCurveRepo *repository.PriceCurveRepository, preferredCurve string) *PriceCurveService {
	return &PriceCurveService{
		priceCurveRepo: priceCurveRepo,
		preferredCurve: preferredCurve,
	}
}

// PriceCurveRequest selects curve points. Period and CurveName both empty selects the
// legacy single-curve collection.
type PriceCurveRequest struct {
	Period string
	model.PriceCurveQuery
}

// PriceCurves returns curve points. With a grouping period the points are averaged per
// (REGION, PROFILE, TYPE, period) and dated with the period start; otherwise they are
// returned one by one in TIME order.
func (s *PriceCurveService) PriceCurves(ctx context.Context, req PriceCurveRequest) ([]map[string]any, error) {
	if req.Period == "" && req.CurveName == "" {
		docs, err := s.priceCurveRepo.Legacy(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]map[string]any, len(docs))
		for i, d := range docs {
			rows[i] = map[string]any(d)
		}
		return rows, nil
	}

	points, err := s.priceCurveRepo.Points(ctx, req.PriceCurveQuery)
	if err != nil {
		return nil, err
	}

	g := validation.ValidatePeriod(req.Period)
	if !g.Grouped() {
		rows := make([]map[string]any, len(points))
		for i, p := range points {
			rows[i] = map[string]any{
				model.FieldCurveName: p.CurveName,
				model.FieldTime:      p.Time,
				model.FieldRegion:    p.Region,
				model.FieldProfile:   p.Profile,
				model.FieldType:      p.Type,
				model.FieldPrice:     p.Price,
			}
		}
		return rows, nil
	}

	records := make([]aggregate.Record, len(points))
	for i, p := range points {
		records[i] = aggregate.Record{
			Entity: strings.Join([]string{p.Region, p.Profile, p.Type}, seriesSep),
			Date:   p.Time,
			Values: map[string]float64{model.FieldPrice: p.Price},
		}
	}
	buckets := aggregate.New(g, aggregate.WithFields(model.FieldPrice)).Aggregate(records)

	rows := make([]map[string]any, len(buckets))
	for i, b := range buckets {
		dims := strings.SplitN(b.Entity, seriesSep, 3)
		id := map[string]any{
			model.FieldRegion:  dims[0],
			model.FieldProfile: dims[1],
			model.FieldType:    dims[2],
		}
		for k, v := range b.Period.Components() {
			id[k] = v
		}
		rows[i] = map[string]any{
			docstore.IDField: id,
			model.FieldPrice: b.Values[model.FieldPrice],
			model.FieldTime:  b.Period.Start(),
		}
	}
	return rows, nil
}

// Meta lists the curve names, preferred curve first and the rest case-insensitively,
// with the metadata document of each curve.
func (s *PriceCurveService) Meta(ctx context.Context) (*model.PriceCurveMeta, error) {
	names, err := s.priceCurveRepo.CurveNames(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(names, func(i, j int) bool {
		a, b := names[i], names[j]
		if (a == s.preferredCurve) != (b == s.preferredCurve) {
			return a == s.preferredCurve
		}
		return strings.ToLower(a) < strings.ToLower(b)
	})

	metadata, err := s.priceCurveRepo.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	return &model.PriceCurveMeta{CurveNames: names, Metadata: metadata}, nil
}
