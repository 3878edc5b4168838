package service

import (
	"context"
	"sort"
	"strings"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/aggregate"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/export"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/validation"
)

// ExportCollectionSensitivity selects SENS_Asset_Outputs as the export source.
const ExportCollectionSensitivity = "sensitivity"

// ExportService flattens result rows into period totals for download.
type ExportService struct {
	cashFlowRepo    *repository.CashFlowRepository
	sensOutputsRepo *repository.CashFlowRepository
}

// NewExportService creates a new ExportService.
func NewExportService(cashFlowRepo, sensOutputsRepo *repository.CashFlowRepository) *ExportService {
	return &ExportService{
		cashFlowRepo:    cashFlowRepo,
		sensOutputsRepo: sensOutputsRepo,
	}
}

// ExportQuery selects the rows and columns of an export.
type ExportQuery struct {
	AssetID     *int
	Variables   string
	Granularity string
	Collection  string
	ScenarioID  string
	UniqueID    string
}

// Export aggregates the selected rows per asset and period. Each row is
// {asset_id, date, <fields>} with date the period start as YYYY-MM-DD, ordered by asset
// then date. Granularity defaults to monthly; variables restricts the fields.
//
// The base-case filter applies to ASSET_cash_flows only. Every row of SENS_Asset_Outputs
// belongs to a scenario, so without a scenario_id all of them are exported.
func (s *ExportService) Export(ctx context.Context, q ExportQuery) (export.Table, error) {
	vars, err := validation.ParseVariables(q.Variables)
	if err != nil {
		return export.Table{}, err
	}

	g, err := aggregate.ParseGranularity(q.Granularity)
	if err != nil || q.Granularity == "" {
		g = aggregate.Monthly
	}

	repo := s.cashFlowRepo
	query := model.CashFlowQuery{ScenarioID: q.ScenarioID, UniqueID: strings.TrimSpace(q.UniqueID)}
	if q.Collection == ExportCollectionSensitivity {
		repo = s.sensOutputsRepo
		query.AllScenarios = q.ScenarioID == ""
	}
	if q.AssetID != nil {
		query.AssetIDs = []int{*q.AssetID}
	}

	records, err := repo.Find(ctx, query)
	if err != nil {
		return export.Table{}, err
	}

	var opts []aggregate.Option
	if vars != nil {
		opts = append(opts, aggregate.WithFields(vars...))
	}
	buckets := aggregate.New(g, opts...).Aggregate(toRecords(records))

	rows := make([]map[string]any, len(buckets))
	seen := map[string]bool{}
	var fields []string
	for i, b := range buckets {
		row := map[string]any{
			model.FieldAssetID: entityAssetID(b),
			model.FieldDate:    b.Period.Start().Format("2006-01-02"),
		}
		for k, v := range b.Values {
			row[k] = v
			if !seen[k] {
				seen[k] = true
				fields = append(fields, k)
			}
		}
		rows[i] = row
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i][model.FieldAssetID].(int), rows[j][model.FieldAssetID].(int)
		if a != b {
			return a < b
		}
		return rows[i][model.FieldDate].(string) < rows[j][model.FieldDate].(string)
	})

	columns := []string{model.FieldAssetID, model.FieldDate}
	if vars != nil {
		columns = append(columns, vars...)
	} else {
		sort.Strings(fields)
		columns = append(columns, fields...)
	}
	return export.Table{Columns: columns, Rows: rows}, nil
}
