package service

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/repository"
)

// bpsPerPercentPoint converts IRR differences from basis points.
const bpsPerPercentPoint = 100

var assetIRRField = regexp.MustCompile(`^asset_(\d+)_irr_pct$`)

// SensitivityService reads sensitivity run results: the per-scenario summary rows, the
// tornado chart derived from them, and the scenario catalogue across result collections.
type SensitivityService struct {
	resolver        *PortfolioResolver
	sensitivityRepo *repository.SensitivityRepository
	cashFlowRepo    *repository.CashFlowRepository
	sensOutputsRepo *repository.CashFlowRepository
}

// NewSensitivityService creates a new SensitivityService with the provided repository dependencies.
// sensOutputsRepo reads SENS_Asset_Outputs, which shares the cash-flow row shape.
func NewSensitivityService(
	resolver *PortfolioResolver,
	sensitivityRepo *repository.SensitivityRepository,
	cashFlowRepo *repository.CashFlowRepository,
	sensOutputsRepo *repository.CashFlowRepository,
) *SensitivityService {
	return &SensitivityService{
		resolver:        resolver,
		sensitivityRepo: sensitivityRepo,
		cashFlowRepo:    cashFlowRepo,
		sensOutputsRepo: sensOutputsRepo,
	}
}

// Output returns the summary rows of a portfolio with its asset names.
//
// Rows tagged with the unique_id are used when any exist. Otherwise untagged rows are
// kept when one of their fields is named asset_<id>_ for an asset of the portfolio.
// An unknown portfolio yields no rows.
func (s *SensitivityService) Output(ctx context.Context, uniqueID, scenarioID string) (*model.SensitivityOutput, error) {
	cfg, err := s.resolver.ResolveConfig(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	out := &model.SensitivityOutput{
		Data:              []map[string]any{},
		UniqueScenarioIDs: []string{},
		AssetNames:        map[string]string{},
	}
	if cfg == nil {
		return out, nil
	}
	for _, a := range cfg.Assets {
		out.AssetNames[strconv.Itoa(a.ID)] = cfg.AssetName(a.ID)
	}

	rows, scenarios, err := s.scopedRows(ctx, cfg, scenarioID)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out.Data = append(out.Data, map[string]any(r))
	}
	out.UniqueScenarioIDs = scenarios
	return out, nil
}

func (s *SensitivityService) scopedRows(ctx context.Context, cfg *model.PortfolioConfig, scenarioID string) ([]docstore.Document, []string, error) {
	tagged, err := s.sensitivityRepo.HasPortfolioRows(ctx, cfg.UniqueID)
	if err != nil {
		return nil, nil, err
	}
	if tagged {
		rows, err := s.sensitivityRepo.Find(ctx, cfg.UniqueID, scenarioID)
		if err != nil {
			return nil, nil, err
		}
		scenarios, err := s.sensitivityRepo.ScenarioIDs(ctx, cfg.UniqueID)
		if err != nil {
			return nil, nil, err
		}
		return rows, scenarios, nil
	}

	all, err := s.sensitivityRepo.Find(ctx, "", "")
	if err != nil {
		return nil, nil, err
	}
	prefixes := make([]string, 0, len(cfg.Assets))
	for _, a := range cfg.Assets {
		prefixes = append(prefixes, fmt.Sprintf("asset_%d_", a.ID))
	}

	rows := []docstore.Document{}
	seen := map[string]bool{}
	scenarios := []string{}
	for _, doc := range all {
		if !coversAnyAsset(doc, prefixes) {
			continue
		}
		sid := doc.String(model.FieldScenarioID)
		if sid != "" && !seen[sid] {
			seen[sid] = true
			scenarios = append(scenarios, sid)
		}
		if scenarioID == "" || sid == scenarioID {
			rows = append(rows, doc)
		}
	}
	sort.Strings(scenarios)
	if len(all) > 0 {
		log.Warn().
			Str("unique_id", cfg.UniqueID).
			Int("matched", len(rows)).
			Msg("no sensitivity rows tagged with unique_id, matched untagged rows by asset fields")
	}
	return rows, scenarios, nil
}

func coversAnyAsset(doc docstore.Document, prefixes []string) bool {
	for k := range doc {
		for _, p := range prefixes {
			if strings.HasPrefix(k, p) {
				return true
			}
		}
	}
	return false
}

// Tornado ranks the sensitivity parameters by their IRR swing for the portfolio or one
// asset. asset is "portfolio" (the default) or an asset id. Impacts are in percentage points.
// Parameters that never move the IRR are left out.
func (s *SensitivityService) Tornado(ctx context.Context, uniqueID, asset string) (*model.Tornado, error) {
	output, err := s.Output(ctx, uniqueID, "")
	if err != nil {
		return nil, err
	}

	asset = strings.TrimSpace(asset)
	if asset == "" || strings.EqualFold(asset, model.PortfolioTornadoAsset) {
		asset = model.PortfolioTornadoAsset
	}

	result := &model.Tornado{
		Asset:           asset,
		AssetName:       "Portfolio",
		AvailableAssets: availableTornadoAssets(output),
		Parameters:      []model.TornadoBar{},
	}
	diffField, rawField := "portfolio_irr_diff_bps", "portfolio_irr_pct"
	if asset != model.PortfolioTornadoAsset {
		id, err := strconv.Atoi(asset)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidAssetID, asset)
		}
		diffField = fmt.Sprintf("asset_%d_irr_diff_bps", id)
		rawField = fmt.Sprintf("asset_%d_irr_pct", id)
		result.AssetName = assetDisplayName(output.AssetNames, id)
	}

	index := map[string]*model.TornadoBar{}
	var order []*model.TornadoBar
	for _, row := range output.Data {
		doc := docstore.Document(row)
		name := doc.String("parameter_name")
		if name == "" {
			name = doc.String("parameter")
		}
		if name == "" {
			name = model.UnknownParameter
		}
		bar, ok := index[name]
		if !ok {
			bar = &model.TornadoBar{Parameter: name, Units: doc.String("parameter_units")}
			index[name] = bar
			order = append(order, bar)
		}

		diff, _ := doc.Float(diffField)
		scenario := model.TornadoScenario{
			ScenarioID:     doc.String(model.FieldScenarioID),
			ParameterValue: doc["input_value"],
			ParameterUnits: doc.String("parameter_units"),
			MetricDiff:     diff / bpsPerPercentPoint,
		}
		if raw, ok := doc.Float(rawField); ok {
			scenario.RawValue = &raw
		}
		bar.Scenarios = append(bar.Scenarios, scenario)
	}

	for _, b := range order {
		bar := *b
		maxIdx, minIdx := 0, 0
		bar.Impacts = make([]float64, len(bar.Scenarios))
		for i, sc := range bar.Scenarios {
			bar.Impacts[i] = sc.MetricDiff
			if sc.MetricDiff > bar.Scenarios[maxIdx].MetricDiff {
				maxIdx = i
			}
			if sc.MetricDiff < bar.Scenarios[minIdx].MetricDiff {
				minIdx = i
			}
		}
		maxImpact := bar.Scenarios[maxIdx].MetricDiff
		minImpact := bar.Scenarios[minIdx].MetricDiff
		bar.Upside = math.Max(maxImpact, 0)
		bar.Downside = math.Min(minImpact, 0)
		bar.TotalRange = math.Abs(maxImpact) + math.Abs(minImpact)
		if bar.TotalRange <= 0 {
			continue
		}
		bar.MaxScenario = &bar.Scenarios[maxIdx]
		bar.MinScenario = &bar.Scenarios[minIdx]
		bar.MaxInputValue = bar.MaxScenario.ParameterValue
		bar.MinInputValue = bar.MinScenario.ParameterValue
		result.Parameters = append(result.Parameters, bar)
	}
	sort.SliceStable(result.Parameters, func(i, j int) bool {
		return result.Parameters[i].TotalRange > result.Parameters[j].TotalRange
	})
	return result, nil
}

// availableTornadoAssets lists the assets that have IRR columns in any row, ascending.
func availableTornadoAssets(output *model.SensitivityOutput) []model.AssetRef {
	ids := map[int]bool{}
	for _, row := range output.Data {
		for k := range row {
			if m := assetIRRField.FindStringSubmatch(k); m != nil {
				id, _ := strconv.Atoi(m[1])
				ids[id] = true
			}
		}
	}
	sorted := make([]int, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Ints(sorted)

	refs := make([]model.AssetRef, len(sorted))
	for i, id := range sorted {
		refs[i] = model.AssetRef{ID: id, Name: assetDisplayName(output.AssetNames, id)}
	}
	return refs
}

func assetDisplayName(names map[string]string, id int) string {
	if name, ok := names[strconv.Itoa(id)]; ok && name != "" {
		return name
	}
	return "Asset " + strconv.Itoa(id)
}

// Scenarios lists the base and sensitivity runs with totals over their records.
// kind is "all", "base" or "sensitivity"; anything else is treated as "all".
// Base scenarios sort first, then by name.
func (s *SensitivityService) Scenarios(ctx context.Context, kind string) ([]model.Scenario, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	wantBase := kind != model.ScenarioTypeSensitivity
	wantSens := kind != model.ScenarioTypeBase

	scenarios := []model.Scenario{}
	if wantBase {
		ids, err := s.cashFlowRepo.DistinctScenarioIDs(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			stats, err := s.scenarioStats(ctx, s.cashFlowRepo, id)
			if err != nil {
				return nil, err
			}
			scenario := model.Scenario{
				ScenarioID:  id,
				Name:        id,
				Type:        model.ScenarioTypeBase,
				Description: "Base case financial model",
				Stats:       stats,
			}
			if id == "" {
				scenario.ScenarioID = "base_case"
				scenario.Name = "Base Case"
			}
			scenarios = append(scenarios, scenario)
		}
	}

	if wantSens {
		ids, err := s.sensOutputsRepo.DistinctScenarioIDs(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if id == "" {
				continue
			}
			stats, err := s.scenarioStats(ctx, s.sensOutputsRepo, id)
			if err != nil {
				return nil, err
			}
			params := model.ParseScenarioID(id)
			scenarios = append(scenarios, model.Scenario{
				ScenarioID:  id,
				Name:        params.Name,
				Type:        model.ScenarioTypeSensitivity,
				Parameter:   params.Parameter,
				Value:       params.Value,
				Description: params.Description,
				Stats:       stats,
			})
		}
	}

	sort.SliceStable(scenarios, func(i, j int) bool {
		a, b := scenarios[i], scenarios[j]
		if a.Type != b.Type {
			return a.Type == model.ScenarioTypeBase
		}
		return a.Name < b.Name
	})
	return scenarios, nil
}

func (s *SensitivityService) scenarioStats(ctx context.Context, repo *repository.CashFlowRepository, scenarioID string) (model.ScenarioStats, error) {
	records, err := repo.Find(ctx, model.CashFlowQuery{ScenarioID: scenarioID})
	if err != nil {
		return model.ScenarioStats{}, err
	}

	var stats model.ScenarioStats
	assets := map[int]bool{}
	for _, r := range records {
		stats.TotalRevenue += r.Values["revenue"]
		stats.TotalCapex += r.Values["capex"]
		stats.TotalEquityCashFlow += r.Values["equity_cash_flow"]
		assets[r.AssetID] = true

		date := r.Date
		if stats.DateRange.Start == nil || date.Before(*stats.DateRange.Start) {
			stats.DateRange.Start = &date
		}
		if stats.DateRange.End == nil || date.After(*stats.DateRange.End) {
			stats.DateRange.End = &date
		}
	}
	stats.RecordCount = len(records)
	stats.AssetCount = len(assets)
	return stats, nil
}

// HasBaseResults reports whether the model has written any cash-flow rows.
func (s *SensitivityService) HasBaseResults(ctx context.Context) (bool, error) {
	n, err := s.cashFlowRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
