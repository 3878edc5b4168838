package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/aggregate"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/hybrid"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/validation"
)

// AssetDataService builds the per-asset and cross-asset time series read from
// ASSET_cash_flows: the all-assets summary, the asset output charts, hybrid series and
// the three-way forecast.
type AssetDataService struct {
	resolver          *PortfolioResolver
	configRepo        *repository.ConfigRepository
	cashFlowRepo      *repository.CashFlowRepository
	outputSummaryRepo *repository.OutputSummaryRepository
}

// NewAssetDataService creates a new AssetDataService with the provided repository dependencies.
func NewAssetDataService(
	resolver *PortfolioResolver,
	configRepo *repository.ConfigRepository,
	cashFlowRepo *repository.CashFlowRepository,
	outputSummaryRepo *repository.OutputSummaryRepository,
) *AssetDataService {
	return &AssetDataService{
		resolver:          resolver,
		configRepo:        configRepo,
		cashFlowRepo:      cashFlowRepo,
		outputSummaryRepo: outputSummaryRepo,
	}
}

// AvailableUniqueIDs lists a few configured portfolios for not-found responses.
func (s *AssetDataService) AvailableUniqueIDs(ctx context.Context) []string {
	ids, err := s.resolver.AvailableUniqueIDs(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to list available unique_ids")
		return []string{}
	}
	return ids
}

// AllAssetsSummaryQuery selects one field of every asset of a portfolio.
type AllAssetsSummaryQuery struct {
	UniqueID   string
	Period     string
	Field      string
	ScenarioID string
}

// AllAssetsSummary returns field per period per asset: data[periodKey][assetID].
// A bucket missing the field reports 0.
//
// The configured asset ids are cross-checked against the portfolio's output summary rows
// by normalised asset name, so assets renamed or moved to another portfolio drop out.
// When the summary has no rows for the portfolio the configured ids are used unchanged.
func (s *AssetDataService) AllAssetsSummary(ctx context.Context, q AllAssetsSummaryQuery) (map[string]map[string]float64, error) {
	cfg, err := s.resolver.RequireConfig(ctx, q.UniqueID)
	if err != nil {
		return nil, err
	}
	if q.Period == "" || q.Field == "" {
		return nil, fmt.Errorf("%w: period and field", apperrors.ErrMissingParameter)
	}

	ids := cfg.AssetIDs()
	if len(ids) == 0 {
		log.Warn().Str("unique_id", cfg.UniqueID).Msg("portfolio has no asset ids")
		return map[string]map[string]float64{}, nil
	}
	if err := validation.ValidateField(q.Field); err != nil {
		return nil, err
	}
	g, err := validation.ValidateGroupedPeriod(q.Period)
	if err != nil {
		return nil, err
	}

	ids, err = s.verifiedAssetIDs(ctx, cfg, ids)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return map[string]map[string]float64{}, nil
	}

	records, err := s.cashFlowRepo.Find(ctx, model.CashFlowQuery{
		AssetIDs:   ids,
		UniqueID:   cfg.UniqueID,
		ScenarioID: q.ScenarioID,
	})
	if err != nil {
		return nil, err
	}

	buckets := aggregate.New(g, aggregate.WithFields(q.Field)).Aggregate(toRecords(records))
	data := make(map[string]map[string]float64)
	for _, b := range buckets {
		key := b.Period.Key()
		if data[key] == nil {
			data[key] = make(map[string]float64)
		}
		data[key][b.Entity] = b.Values[q.Field]
	}
	return data, nil
}

func (s *AssetDataService) verifiedAssetIDs(ctx context.Context, cfg *model.PortfolioConfig, ids []int) ([]int, error) {
	names := cfg.AssetNames()
	if len(names) == 0 {
		return ids, nil
	}

	rows, err := s.outputSummaryRepo.Find(ctx, cfg.UniqueID, ids)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 && cfg.PlatformName != "" {
		rows, err = s.outputSummaryRepo.FindByPortfolioName(ctx, cfg.PlatformName, ids)
		if err != nil {
			return nil, err
		}
	}
	if len(rows) == 0 {
		return ids, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[normalizeName(n)] = true
	}
	seen := map[int]bool{}
	verified := []int{}
	for _, row := range rows {
		id, ok := row.Int(model.FieldAssetID)
		if !ok || seen[id] || !wanted[normalizeName(row.String(model.FieldAssetName))] {
			continue
		}
		seen[id] = true
		verified = append(verified, id)
	}
	if len(verified) == 0 {
		log.Warn().
			Str("unique_id", cfg.UniqueID).
			Ints("configured_ids", ids).
			Msg("no configured asset matches the output summary by name")
	}
	return verified, nil
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// OutputAssetDataQuery selects the series of one asset.
type OutputAssetDataQuery struct {
	UniqueID   string
	AssetID    int
	Period     string
	ScenarioID string
}

// OutputAssetData returns the chart series of one asset. An asset whose hybrid group has
// at least two members with cash-flow rows is reported as the combined group: pre-combined rows are used when
// the model wrote them, otherwise the members are aggregated and summed per period.
// An unknown or empty period returns the stored rows.
func (s *AssetDataService) OutputAssetData(ctx context.Context, q OutputAssetDataQuery) ([]map[string]any, error) {
	cfg, err := s.resolver.RequireConfig(ctx, q.UniqueID)
	if err != nil {
		return nil, err
	}
	g := validation.ValidatePeriod(q.Period)

	base := model.CashFlowQuery{UniqueID: cfg.UniqueID, ScenarioID: q.ScenarioID}

	scoped, err := s.withCashFlows(ctx, cfg)
	if err != nil {
		return nil, err
	}
	group, isHybrid := hybrid.Detect(scoped, q.AssetID)
	if !isHybrid {
		base.AssetIDs = []int{q.AssetID}
		return s.series(ctx, base, g)
	}

	combined := base
	combined.AssetIDs = []int{group.PrimaryID}
	combined.HybridGroup = group.Name
	exists, err := s.cashFlowRepo.HasRecords(ctx, combined)
	if err != nil {
		return nil, err
	}
	if exists {
		return s.series(ctx, combined, g)
	}

	base.AssetIDs = group.MemberIDs
	return s.combinedSeries(ctx, base, group, g)
}

// series aggregates the matching rows per asset and period, or returns them raw when
// the granularity does not group.
func (s *AssetDataService) series(ctx context.Context, q model.CashFlowQuery, g aggregate.Granularity) ([]map[string]any, error) {
	if !g.Grouped() {
		docs, err := s.cashFlowRepo.FindDocuments(ctx, q)
		if err != nil {
			return nil, err
		}
		return rawRows(docs), nil
	}

	records, err := s.cashFlowRepo.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	buckets := aggregate.New(g, aggregate.WithFields(aggregate.NumericFields...)).Aggregate(toRecords(records))
	return bucketRows(buckets, true), nil
}

// combinedSeries aggregates each member and merges them onto the group's primary id.
// Without grouping the members are merged per day.
func (s *AssetDataService) combinedSeries(ctx context.Context, q model.CashFlowQuery, group hybrid.Group, g aggregate.Granularity) ([]map[string]any, error) {
	records, err := s.cashFlowRepo.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	buckets := aggregate.New(g, aggregate.WithFields(aggregate.NumericFields...)).Aggregate(toRecords(records))
	return bucketRows(hybrid.Combine(buckets, group), true), nil
}

// AssetList builds the asset picker of a portfolio. Only configured assets with cash-flow
// rows are listed. Each hybrid group with at least two such members appears once, named
// after the group and keyed by its primary member; every other asset appears on its own.
func (s *AssetDataService) AssetList(ctx context.Context, uniqueID string) (*model.AssetListing, error) {
	cfg, err := s.resolver.RequireConfig(ctx, uniqueID)
	if err != nil {
		return nil, err
	}

	listing := &model.AssetListing{
		UniqueAssetIDs: []model.DisplayAsset{},
		HybridGroups:   map[string][]model.AssetRef{},
		AllAssets:      []model.ListedAsset{},
	}
	scoped, err := s.withCashFlows(ctx, cfg)
	if err != nil {
		return nil, err
	}

	for _, a := range scoped.Assets {
		listing.AllAssets = append(listing.AllAssets, model.ListedAsset{
			ID:          a.ID,
			Name:        cfg.AssetName(a.ID),
			HybridGroup: a.HybridGroup,
		})
	}

	members := map[string][]model.ListedAsset{}
	for _, a := range listing.AllAssets {
		if a.HybridGroup != "" {
			members[a.HybridGroup] = append(members[a.HybridGroup], a)
		}
	}
	for name, group := range members {
		if len(group) < hybrid.MinMembers {
			continue
		}
		refs := make([]model.AssetRef, len(group))
		for i, m := range group {
			refs[i] = model.AssetRef{ID: m.ID, Name: m.Name}
		}
		listing.HybridGroups[name] = refs
	}

	emitted := map[string]bool{}
	for _, a := range listing.AllAssets {
		refs, grouped := listing.HybridGroups[a.HybridGroup]
		if !grouped {
			entry := model.DisplayAsset{ID: a.ID, Name: a.Name}
			if a.HybridGroup != "" {
				tag := a.HybridGroup
				entry.HybridGroup = &tag
			}
			listing.UniqueAssetIDs = append(listing.UniqueAssetIDs, entry)
			continue
		}
		if emitted[a.HybridGroup] {
			continue
		}
		emitted[a.HybridGroup] = true

		tag := a.HybridGroup
		entry := model.DisplayAsset{
			ID:          refs[0].ID,
			Name:        hybrid.Group{Name: tag}.DisplayName(),
			HybridGroup: &tag,
			IsHybrid:    true,
		}
		for _, r := range refs {
			entry.ComponentIDs = append(entry.ComponentIDs, r.ID)
			entry.ComponentNames = append(entry.ComponentNames, r.Name)
		}
		listing.UniqueAssetIDs = append(listing.UniqueAssetIDs, entry)
	}
	return listing, nil
}

// withCashFlows narrows the configuration to the assets that have cash-flow rows. Hybrid
// groups are detected on this view by both the picker and the single-asset series.
func (s *AssetDataService) withCashFlows(ctx context.Context, cfg *model.PortfolioConfig) (*model.PortfolioConfig, error) {
	scoped := *cfg
	scoped.Assets = []model.AssetInput{}

	ids := cfg.AssetIDs()
	if len(ids) == 0 {
		return &scoped, nil
	}
	withFlows, err := s.cashFlowRepo.DistinctAssetIDs(ctx, cfg.UniqueID, ids)
	if err != nil {
		return nil, err
	}
	has := make(map[int]bool, len(withFlows))
	for _, id := range withFlows {
		has[id] = true
	}
	for _, a := range cfg.Assets {
		if has[a.ID] {
			scoped.Assets = append(scoped.Assets, a)
		}
	}
	return &scoped, nil
}

// HybridAssetQuery selects a hybrid group series.
type HybridAssetQuery struct {
	HybridGroup string
	UniqueID    string
	Period      string
}

// HybridAssetData returns the combined series of a hybrid group. Without a unique_id the
// oldest configuration is used.
func (s *AssetDataService) HybridAssetData(ctx context.Context, q HybridAssetQuery) (*model.HybridAssetData, error) {
	cfg, err := s.hybridConfig(ctx, q.UniqueID)
	if err != nil {
		return nil, err
	}
	group, ok := hybrid.Find(cfg, q.HybridGroup)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrHybridGroupNotFound, q.HybridGroup)
	}
	g := validation.ValidatePeriod(q.Period)

	combined := model.CashFlowQuery{HybridGroup: group.Name}
	if q.UniqueID != "" {
		combined.UniqueID = cfg.UniqueID
	}
	exists, err := s.cashFlowRepo.HasRecords(ctx, combined)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	switch {
	case exists && !g.Grouped():
		docs, err := s.cashFlowRepo.FindDocuments(ctx, combined)
		if err != nil {
			return nil, err
		}
		rows = rawRows(docs)
	case exists:
		records, err := s.cashFlowRepo.Find(ctx, combined)
		if err != nil {
			return nil, err
		}
		for i := range records {
			records[i].AssetID = group.PrimaryID
		}
		buckets := aggregate.New(g, aggregate.WithFields(aggregate.NumericFields...)).Aggregate(toRecords(records))
		rows = bucketRows(buckets, false)
	default:
		members := model.CashFlowQuery{AssetIDs: group.MemberIDs, UniqueID: combined.UniqueID}
		records, err := s.cashFlowRepo.Find(ctx, members)
		if err != nil {
			return nil, err
		}
		buckets := aggregate.New(g, aggregate.WithFields(aggregate.NumericFields...)).Aggregate(toRecords(records))
		rows = bucketRows(hybrid.Combine(buckets, group), false)
	}

	return &model.HybridAssetData{
		Data: rows,
		Metadata: model.HybridMetadata{
			HybridGroup:    group.Name,
			AssetIDs:       group.MemberIDs,
			AssetNames:     group.AssetNames(),
			ComponentCount: len(group.MemberIDs),
		},
	}, nil
}

func (s *AssetDataService) hybridConfig(ctx context.Context, uniqueID string) (*model.PortfolioConfig, error) {
	if strings.TrimSpace(uniqueID) == "" {
		return s.configRepo.First(ctx)
	}
	cfg, err := s.resolver.ResolveConfig(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, apperrors.ErrNoConfiguration
	}
	return cfg, nil
}

// ThreeWayQuery selects the three-way forecast of one asset.
type ThreeWayQuery struct {
	AssetID  int
	UniqueID string
	Period   string
}

// ThreeWayData returns the profit and loss, balance sheet and cash flow lines of one
// asset. Balance sheet lines take the period's closing value and the row is dated with
// the last record of the period. Lines absent from a period report 0.
func (s *AssetDataService) ThreeWayData(ctx context.Context, q ThreeWayQuery) ([]map[string]any, error) {
	query := model.CashFlowQuery{AssetIDs: []int{q.AssetID}, UniqueID: strings.TrimSpace(q.UniqueID)}
	g := validation.ValidatePeriod(q.Period)
	if !g.Grouped() {
		docs, err := s.cashFlowRepo.FindDocuments(ctx, query)
		if err != nil {
			return nil, err
		}
		return rawRows(docs), nil
	}

	records, err := s.cashFlowRepo.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	fields := aggregate.ThreeWayFields()
	buckets := aggregate.New(g, aggregate.WithFields(fields...)).Aggregate(toRecords(records))
	rows := make([]map[string]any, len(buckets))
	for i, b := range buckets {
		row := bucketRow(b, b.LastDate, true)
		for _, f := range fields {
			if _, ok := row[f]; !ok {
				row[f] = 0.0
			}
		}
		rows[i] = row
	}
	return rows, nil
}

// ThreeWayAssets lists the assets with cash-flow rows and their configured names. With a
// unique_id only that portfolio is searched; otherwise names come from any configuration.
// Assets without a configured name are left out.
func (s *AssetDataService) ThreeWayAssets(ctx context.Context, uniqueID string) ([]model.AssetRef, error) {
	uniqueID = strings.TrimSpace(uniqueID)

	var configs []model.PortfolioConfig
	if uniqueID != "" {
		cfg, err := s.resolver.ResolveConfig(ctx, uniqueID)
		if err != nil {
			return nil, err
		}
		if cfg != nil {
			configs = []model.PortfolioConfig{*cfg}
		}
	} else {
		all, err := s.configRepo.List(ctx)
		if err != nil {
			return nil, err
		}
		configs = all
	}

	names := map[int]string{}
	for _, cfg := range configs {
		for _, a := range cfg.Assets {
			if _, ok := names[a.ID]; !ok && a.Name != "" {
				names[a.ID] = a.Name
			}
		}
	}

	ids, err := s.cashFlowRepo.DistinctAssetIDs(ctx, uniqueID, nil)
	if err != nil {
		return nil, err
	}
	out := []model.AssetRef{}
	for _, id := range ids {
		name, ok := names[id]
		if !ok {
			log.Debug().Str("asset_id", strconv.Itoa(id)).Msg("asset has cash flows but no configured name")
			continue
		}
		out = append(out, model.AssetRef{ID: id, Name: name})
	}
	return out, nil
}
