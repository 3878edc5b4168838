package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/aggregate"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/repository"
)

// capacityPerAssetFallback is the MW assumed per asset when no capacity is recorded.
const capacityPerAssetFallback = 100

// platformAssetName marks the portfolio-level row of ASSET_Output_Summary.
const platformAssetName = "Platform"

// outputSummaryColumns are the per-asset columns of the results table.
var outputSummaryColumns = []string{
	"asset_id",
	"asset_name",
	"construction_start_date",
	"operations_start_date",
	"operations_end_date",
	"terminal_value",
	"total_capex",
	"total_debt",
	"total_equity",
	"equity_irr",
	"total_revenue",
	"total_opex",
	"total_cfads",
	"total_equity_cash_flow",
}

// DashboardService computes the dashboard overview of a portfolio.
type DashboardService struct {
	resolver          *PortfolioResolver
	cashFlowRepo      *repository.CashFlowRepository
	inputsSummaryRepo *repository.InputsSummaryRepository
	outputSummaryRepo *repository.OutputSummaryRepository
	currencyUnit      string
}

// NewDashboardService creates a new DashboardService with the provided repository dependencies.
func NewDashboardService(
	resolver *PortfolioResolver,
	cashFlowRepo *repository.CashFlowRepository,
	inputsSummaryRepo *repository.InputsSummaryRepository,
	outputSummaryRepo *repository.OutputSummaryRepository,
	currencyUnit string,
) *DashboardService {
	return &DashboardService{
		resolver:          resolver,
		cashFlowRepo:      cashFlowRepo,
		inputsSummaryRepo: inputsSummaryRepo,
		outputSummaryRepo: outputSummaryRepo,
		currencyUnit:      currencyUnit,
	}
}

// Metrics returns the portfolio totals. The cash-flow totals, the inputs summary
// breakdowns and the IRR lookup run concurrently; the first two resolve the portfolio
// scope on their own.
//
// Cash flows are the base case of the portfolio's configured asset ids; an unknown
// portfolio reports zeros. Capacity falls back to 100 MW per asset when the inputs
// summary records none. A failing IRR lookup is logged and reported as 0.
func (s *DashboardService) Metrics(ctx context.Context, uniqueID string) (*model.DashboardMetrics, error) {
	m := &model.DashboardMetrics{
		ByType:       map[string]int{},
		ByRegion:     map[string]int{},
		CurrencyUnit: s.currencyUnit,
		DataSource: model.DashboardDataSource{
			CashFlows: s.cashFlowRepo.Collection(),
			Inputs:    model.CollectionInputsSummary,
		},
	}

	var (
		records []model.CashFlowRecord
		inputs  []docstore.Document
		irr     float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := s.resolver.ResolveAssetIDs(gctx, uniqueID)
		if err != nil {
			return err
		}
		records, err = s.cashFlowRepo.Find(gctx, model.CashFlowQuery{AssetIDs: ids})
		return err
	})
	g.Go(func() error {
		cfg, err := s.resolver.ResolveConfig(gctx, uniqueID)
		if err != nil {
			return err
		}
		var names []string
		if cfg != nil {
			names = cfg.AssetNames()
		}
		inputs, err = s.inputsSummaryRepo.FindByAssetNames(gctx, names)
		return err
	})
	g.Go(func() error {
		value, ok, err := s.inputsSummaryRepo.LatestIRR(gctx)
		if err != nil {
			log.Warn().Err(err).Msg("could not read equity IRR from inputs summary")
			return nil
		}
		if ok {
			irr = value
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	assets := map[int]bool{}
	for _, r := range records {
		m.TotalCapex += r.Values["capex"]
		m.TotalDebt += r.Values["debt_capex"]
		m.TotalEquity += r.Values["equity_capex"]
		m.TotalAnnualRevenue += r.Values["revenue"]
		m.TotalAnnualOpex += r.Values["opex"]
		m.TotalAnnualCashFlow += r.Values["equity_cash_flow"]
		m.TotalCfads += r.Values["cfads"]
		assets[r.AssetID] = true
	}
	m.TotalAssets = len(assets)

	var capacity float64
	for _, doc := range inputs {
		if t := doc.String("type"); t != "" {
			m.ByType[t]++
		}
		if r := doc.String("region"); r != "" {
			m.ByRegion[r]++
		}
		if c, ok := doc.Float("capacity"); ok {
			capacity += c
		}
	}
	m.TotalCapacity = capacity
	if capacity == 0 && m.TotalAssets > 0 {
		m.TotalCapacity = float64(m.TotalAssets * capacityPerAssetFallback)
	}

	m.Gearing = aggregate.SafeDiv(m.TotalDebt, m.TotalCapex)
	m.IRR = irr
	m.AvgRevenuePerAsset = aggregate.SafeDiv(m.TotalAnnualRevenue, float64(m.TotalAssets))
	m.AvgCapexPerAsset = aggregate.SafeDiv(m.TotalCapex, float64(m.TotalAssets))
	m.DataSource.HasIRR = irr > 0
	m.DataSource.HasCapacityData = capacity > 0
	return m, nil
}

// AssetOutputSummary returns the per-asset results table. The "Platform" row supplies
// the portfolio totals when present; otherwise the asset rows are summed and the IRR is
// the mean over assets with a positive equity_irr. A non-empty uniqueID restricts the rows
// to that portfolio.
func (s *DashboardService) AssetOutputSummary(ctx context.Context, uniqueID string) (*model.AssetOutputSummary, error) {
	rows, err := s.outputSummaryRepo.Find(ctx, uniqueID, nil)
	if err != nil {
		return nil, err
	}

	out := &model.AssetOutputSummary{
		Assets: []map[string]any{},
		Breakdown: model.OutputSummaryBreakdown{
			ByType:   map[string]int{},
			ByRegion: map[string]int{},
		},
	}
	if len(rows) == 0 {
		out.Message = "No asset output summary found"
		return out, nil
	}

	var platform docstore.Document
	var individual []docstore.Document
	for _, row := range rows {
		if row.String(model.FieldAssetName) == platformAssetName {
			if platform == nil {
				platform = row
			}
			continue
		}
		individual = append(individual, row)
	}

	num := func(d docstore.Document, field string) float64 {
		v, _ := d.Float(field)
		return v
	}

	summary := model.OutputSummaryTotals{TotalAssets: len(individual)}
	if platform != nil {
		summary.TotalCapex = num(platform, "total_capex")
		summary.TotalDebt = num(platform, "total_debt")
		summary.TotalEquity = num(platform, "total_equity")
		summary.AvgIRR = num(platform, "equity_irr")
		summary.TotalRevenue = num(platform, "total_revenue")
		summary.TotalOpex = num(platform, "total_opex")
		summary.TotalCfads = num(platform, "total_cfads")
		summary.TotalEquityCashFlow = num(platform, "total_equity_cash_flow")
		out.PortfolioData = map[string]any(platform)
	} else {
		var irrSum float64
		irrCount := 0
		for _, row := range individual {
			summary.TotalCapex += num(row, "total_capex")
			summary.TotalDebt += num(row, "total_debt")
			summary.TotalEquity += num(row, "total_equity")
			summary.TotalRevenue += num(row, "total_revenue")
			summary.TotalOpex += num(row, "total_opex")
			summary.TotalCfads += num(row, "total_cfads")
			summary.TotalEquityCashFlow += num(row, "total_equity_cash_flow")
			if irr := num(row, "equity_irr"); irr > 0 {
				irrSum += irr
				irrCount++
			}
		}
		summary.AvgIRR = aggregate.SafeDiv(irrSum, float64(irrCount))
	}
	summary.PortfolioGearing = aggregate.SafeDiv(summary.TotalDebt, summary.TotalCapex)
	out.Summary = summary

	for _, row := range individual {
		asset := make(map[string]any, len(outputSummaryColumns)+1)
		for _, col := range outputSummaryColumns {
			asset[col] = row[col]
		}
		asset["gearing"] = aggregate.SafeDiv(num(row, "total_debt"), num(row, "total_capex"))
		out.Assets = append(out.Assets, asset)

		out.Breakdown.ByType[attributeOrUnknown(row, "type")]++
		out.Breakdown.ByRegion[attributeOrUnknown(row, "region")]++
	}

	out.Metadata = &model.OutputSummaryMetadata{
		Source:            model.CollectionOutputSummary,
		TotalRecords:      len(rows),
		HasPortfolioEntry: platform != nil,
		IndividualAssets:  len(individual),
	}
	return out, nil
}

func attributeOrUnknown(d docstore.Document, field string) string {
	if v := d.String(field); v != "" {
		return v
	}
	return unknownAttribute
}
