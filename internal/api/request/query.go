package request

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/export"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/service"
)

// ExportParams are the raw query parameters of an export.
type ExportParams struct {
	AssetID     string
	Variables   string
	Granularity string
	Collection  string
	ScenarioID  string
	UniqueID    string
	Format      string
}

// ParseExportQuery converts export query parameters into a service query and an
// output format. All parameters are optional.
//
// Validation rules:
//   - assetId: must be an integer when given
//   - collection: "sensitivity" selects SENS_Asset_Outputs, anything else ASSET_cash_flows
//   - format: json (default), csv or xlsx
//
// Variables and granularity are checked by the service.
func ParseExportQuery(p ExportParams) (service.ExportQuery, export.Format, error) {
	q := service.ExportQuery{
		Variables:   p.Variables,
		Granularity: strings.ToLower(strings.TrimSpace(p.Granularity)),
		ScenarioID:  strings.TrimSpace(p.ScenarioID),
		UniqueID:    strings.TrimSpace(p.UniqueID),
	}

	if raw := strings.TrimSpace(p.AssetID); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return service.ExportQuery{}, "", errors.New("invalid assetId: must be a number")
		}
		q.AssetID = &id
	}

	if strings.EqualFold(strings.TrimSpace(p.Collection), service.ExportCollectionSensitivity) {
		q.Collection = service.ExportCollectionSensitivity
	}

	format, err := export.ParseFormat(p.Format)
	if err != nil {
		return service.ExportQuery{}, "", err
	}
	return q, format, nil
}

// ParsePriceCurveQuery converts price curve query parameters. Dimension filters are
// matched exactly; an empty value does not filter.
func ParsePriceCurveQuery(period, curveName, region, profile, curveType string) service.PriceCurveRequest {
	return service.PriceCurveRequest{
		Period: strings.ToLower(strings.TrimSpace(period)),
		PriceCurveQuery: model.PriceCurveQuery{
			CurveName: strings.TrimSpace(curveName),
			Region:    strings.TrimSpace(region),
			Profile:   strings.TrimSpace(profile),
			Type:      strings.TrimSpace(curveType),
		},
	}
}
