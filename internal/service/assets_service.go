package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/aggregate"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/repository"
)

// capacityPerCapex estimates MW from CAPEX when no inputs summary exists: 1 MW per 1000 of CAPEX.
const capacityPerCapex = 0.001

// unknownAttribute fills type and region of assets derived from cash flows.
const unknownAttribute = "unknown"

// AssetsService serves the asset attribute table. Rows come from ASSET_inputs_summary
// when the portfolio has any there, and are otherwise estimated from cash flows.
type AssetsService struct {
	resolver          *PortfolioResolver
	inputsSummaryRepo *repository.InputsSummaryRepository
	cashFlowRepo      *repository.CashFlowRepository
}

// NewAssetsService creates a new AssetsService with the provided repository dependencies.
func NewAssetsService(
	resolver *PortfolioResolver,
	inputsSummaryRepo *repository.InputsSummaryRepository,
	cashFlowRepo *repository.CashFlowRepository,
) *AssetsService {
	return &AssetsService{
		resolver:          resolver,
		inputsSummaryRepo: inputsSummaryRepo,
		cashFlowRepo:      cashFlowRepo,
	}
}

// ListAssets walks the fallback chain: inputs summary rows of the portfolio's asset names,
// then per-asset totals from cash flows, then an empty result with a message.
// An empty or unknown uniqueID reads every row.
func (s *AssetsService) ListAssets(ctx context.Context, uniqueID string) (*model.AssetsResult, error) {
	cfg, err := s.resolver.ResolveConfig(ctx, uniqueID)
	if err != nil {
		return nil, err
	}

	var names []string
	if cfg != nil {
		names = cfg.AssetNames()
	}
	docs, err := s.inputsSummaryRepo.FindByAssetNames(ctx, names)
	if err != nil {
		log.Warn().Err(err).Msg("could not read inputs summary, falling back to cash flows")
	} else if len(docs) > 0 {
		assets := make([]any, len(docs))
		for i, d := range docs {
			assets[i] = d
		}
		return &model.AssetsResult{Assets: assets, Source: model.AssetsSourceInputsSummary, Count: len(assets)}, nil
	}

	summaries, err := s.summariesFromCashFlows(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("could not aggregate cash flows for asset list")
	}
	if err != nil || len(summaries) == 0 {
		return &model.AssetsResult{
			Assets:  []any{},
			Source:  model.AssetsSourceEmpty,
			Count:   0,
			Message: "No asset data found in any collection",
		}, nil
	}

	log.Warn().
		Int("assets", len(summaries)).
		Msg("no inputs summary rows, using asset totals derived from cash flows")
	assets := make([]any, len(summaries))
	for i, a := range summaries {
		assets[i] = a
	}
	return &model.AssetsResult{Assets: assets, Source: model.AssetsSourceCashFlows, Count: len(assets)}, nil
}

// summariesFromCashFlows totals the base-case rows per asset, ascending by asset id.
func (s *AssetsService) summariesFromCashFlows(ctx context.Context, cfg *model.PortfolioConfig) ([]model.AssetSummary, error) {
	q := model.CashFlowQuery{}
	if cfg != nil {
		q.AssetIDs = cfg.AssetIDs()
		q.UniqueID = cfg.UniqueID
	}
	records, err := s.cashFlowRepo.Find(ctx, q)
	if err != nil {
		return nil, err
	}

	index := map[int]*model.AssetSummary{}
	for _, r := range records {
		a, ok := index[r.AssetID]
		if !ok {
			date := r.Date
			name := fmt.Sprintf("Asset %d", r.AssetID)
			if cfg != nil {
				name = cfg.AssetName(r.AssetID)
			}
			a = &model.AssetSummary{
				ID:                 r.AssetID,
				AssetID:            r.AssetID,
				AssetName:          name,
				Type:               unknownAttribute,
				Region:             unknownAttribute,
				FirstDate:          &date,
				OperatingStartDate: &date,
			}
			index[r.AssetID] = a
		}
		date := r.Date
		a.LastDate = &date
		a.RecordCount++
		a.TotalCapex += r.Values["capex"]
		a.TotalDebt += r.Values["debt_capex"]
		a.TotalEquity += r.Values["equity_capex"]
		a.TotalRevenue += r.Values["revenue"]
		a.TotalOpex += r.Values["opex"]
	}

	out := make([]model.AssetSummary, 0, len(index))
	for _, a := range index {
		a.Capacity = a.TotalCapex * capacityPerCapex
		a.CostCapex = a.TotalCapex
		a.CostMaxGearing = aggregate.SafeDiv(a.TotalDebt, a.TotalCapex)
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out, nil
}

// CreateAsset stores a new inputs summary row stamped with createdAt and updatedAt.
func (s *AssetsService) CreateAsset(ctx context.Context, asset map[string]any, now time.Time) (string, docstore.Document, error) {
	if asset == nil {
		return "", nil, fmt.Errorf("%w: asset data is required", apperrors.ErrInvalidBody)
	}
	doc := docstore.Document(asset).Clone()
	doc["createdAt"] = now
	doc["updatedAt"] = now

	id, err := s.inputsSummaryRepo.Insert(ctx, doc)
	if err != nil {
		return "", nil, err
	}
	return id, doc, nil
}

// UpdateAsset sets the given fields on the row of assetID and stamps updatedAt.
// Returns the modified count, or apperrors.ErrAssetNotFound when no row matched.
func (s *AssetsService) UpdateAsset(ctx context.Context, assetID int, asset map[string]any, now time.Time) (int64, error) {
	if asset == nil {
		return 0, fmt.Errorf("%w: asset data is required", apperrors.ErrInvalidBody)
	}
	set := docstore.Document(asset).Without(docstore.IDField)
	set["updatedAt"] = now

	res, err := s.inputsSummaryRepo.UpdateByAssetID(ctx, assetID, set)
	if err != nil {
		return 0, err
	}
	if res.Matched == 0 {
		return 0, fmt.Errorf("%w: %d", apperrors.ErrAssetNotFound, assetID)
	}
	return res.Modified, nil
}

// InputSummary returns every ASSET_inputs_summary row in the asset inputs table shape.
// An empty collection yields no rows and a message.
func (s *AssetsService) InputSummary(ctx context.Context) (*model.AssetInputSummaryResult, error) {
	docs, err := s.inputsSummaryRepo.FindByAssetNames(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return &model.AssetInputSummaryResult{
			Assets:  []model.AssetInputSummary{},
			Message: "No asset inputs found in ASSET_inputs_summary collection",
		}, nil
	}

	rows := make([]model.AssetInputSummary, len(docs))
	for i, doc := range docs {
		rows[i] = inputSummaryRow(doc)
	}
	return &model.AssetInputSummaryResult{
		Assets: rows,
		Count:  len(rows),
		Source: model.CollectionInputsSummary,
	}, nil
}

func inputSummaryRow(d docstore.Document) model.AssetInputSummary {
	num := func(field string) float64 {
		v, _ := d.Float(field)
		return v
	}
	whole := func(field string, fallback int) int {
		if v := int(num(field)); v != 0 {
			return v
		}
		return fallback
	}
	orBlank := func(field string) any {
		if isBlank(d[field]) {
			return ""
		}
		return d[field]
	}
	orUnknown := func(field string) string {
		if v := d.String(field); v != "" {
			return v
		}
		return unknownAttribute
	}

	name := d.String(model.FieldAssetName)
	if name == "" {
		name = d.String("name")
	}
	if name == "" {
		name = fmt.Sprintf("Asset %v", d[model.FieldAssetID])
	}

	row := model.AssetInputSummary{
		AssetID:   d[model.FieldAssetID],
		AssetName: name,
		Type:      orUnknown("type"),
		Region:    orUnknown("region"),
		Capacity:  num("capacity"),
		Volume:    num("volume"),

		CostCapex:                   num("cost_capex"),
		CostMaxGearing:              num("cost_maxGearing"),
		CostInterestRate:            num("cost_interestRate"),
		CostTenorYears:              num("cost_tenorYears"),
		CostTerminalValue:           num("cost_terminalValue"),
		CostOperatingCosts:          num("cost_operatingCosts"),
		CostOperatingCostEscalation: num("cost_operatingCostEscalation"),
		CostTargetDSCRContract:      num("cost_targetDSCRContract"),
		CostTargetDSCRMerchant:      num("cost_targetDSCRMerchant"),
		CostCalculatedGearing:       num("cost_calculatedGearing"),
		CostDebtStructure:           orBlank("cost_debtStructure"),

		CapacityFactor:       orBlank("capacityFactor"),
		QtrCapacityFactorQ1:  orBlank("qtrCapacityFactor_q1"),
		QtrCapacityFactorQ2:  orBlank("qtrCapacityFactor_q2"),
		QtrCapacityFactorQ3:  orBlank("qtrCapacityFactor_q3"),
		QtrCapacityFactorQ4:  orBlank("qtrCapacityFactor_q4"),
		AnnualDegradation:    num("annualDegradation"),
		VolumeLossAdjustment: num("volumeLossAdjustment"),
		AssetLife:            whole("assetLife", model.DefaultAssetLife),
		ConstructionDuration: whole("constructionDuration", 0),

		ConstructionStartDate: d["constructionStartDate"],
		OperatingStartDate:    d["OperatingStartDate"],

		DebtTotalCapex:   num("debt_total_capex"),
		DebtDebtAmount:   num("debt_debt_amount"),
		DebtEquityAmount: num("debt_equity_amount"),
		DebtGearing:      num("debt_gearing"),

		Contracts: orBlank("contracts"),
		CreatedAt: d["createdAt"],
		UpdatedAt: d["updatedAt"],
	}
	if row.VolumeLossAdjustment == 0 {
		row.VolumeLossAdjustment = model.DefaultVolumeLossAdjustment
	}
	if irr := num(repository.FieldEquityIRR); irr != 0 {
		row.EquityIRR = &irr
	}
	return row
}

// isBlank reports whether a stored value counts as not filled in: null, an empty
// string, zero or false.
func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	}
	f, ok := docstore.ToFloat(v)
	return ok && f == 0
}

// SaveInputSummary writes each asset onto its ASSET_inputs_summary row, creating rows
// for new ids, and stamps updatedAt. Entries without an asset_id are skipped.
func (s *AssetsService) SaveInputSummary(ctx context.Context, assets []map[string]any, now time.Time) ([]model.AssetInputUpdate, error) {
	results := make([]model.AssetInputUpdate, 0, len(assets))
	for _, asset := range assets {
		id := asset[model.FieldAssetID]
		if isBlank(id) {
			continue
		}
		set := docstore.Document(asset).Without(docstore.IDField)
		set["updatedAt"] = now

		res, err := s.inputsSummaryRepo.UpsertByAssetID(ctx, id, set)
		if err != nil {
			return nil, err
		}
		results = append(results, model.AssetInputUpdate{
			AssetID:  id,
			Matched:  res.Matched,
			Modified: res.Modified,
			Upserted: res.Upserted,
		})
	}
	return results, nil
}
