package model

// DashboardMetrics is the portfolio overview of the dashboard page.
type DashboardMetrics struct {
	TotalCapex  float64 `json:"totalCapex"`
	TotalDebt   float64 `json:"totalDebt"`
	TotalEquity float64 `json:"totalEquity"`
	Gearing     float64 `json:"gearing"`

	TotalAnnualRevenue  float64 `json:"totalAnnualRevenue"`
	TotalAnnualOpex     float64 `json:"totalAnnualOpex"`
	TotalAnnualCashFlow float64 `json:"totalAnnualCashFlow"`
	TotalCfads          float64 `json:"totalCfads"`

	TotalAssets   int     `json:"totalAssets"`
	TotalCapacity float64 `json:"totalCapacity"`

	IRR                float64 `json:"irr"`
	AvgRevenuePerAsset float64 `json:"avgRevenuePerAsset"`
	AvgCapexPerAsset   float64 `json:"avgCapexPerAsset"`

	ByType   map[string]int `json:"byType"`
	ByRegion map[string]int `json:"byRegion"`

	DataSource   DashboardDataSource `json:"dataSource"`
	CurrencyUnit string              `json:"currencyUnit"`
}

// DashboardDataSource names the collections behind the metrics.
type DashboardDataSource struct {
	CashFlows       string `json:"cashFlows"`
	Inputs          string `json:"inputs"`
	HasIRR          bool   `json:"hasIRR"`
	HasCapacityData bool   `json:"hasCapacityData"`
}

// OutputSummaryTotals are portfolio totals from ASSET_Output_Summary.
type OutputSummaryTotals struct {
	TotalAssets         int     `json:"totalAssets"`
	TotalCapacity       float64 `json:"totalCapacity"`
	TotalCapex          float64 `json:"totalCapex"`
	TotalDebt           float64 `json:"totalDebt"`
	TotalEquity         float64 `json:"totalEquity"`
	PortfolioGearing    float64 `json:"portfolioGearing"`
	AvgIRR              float64 `json:"avgIRR"`
	TotalRevenue        float64 `json:"totalRevenue"`
	TotalOpex           float64 `json:"totalOpex"`
	TotalCfads          float64 `json:"totalCfads"`
	TotalEquityCashFlow float64 `json:"totalEquityCashFlow"`
}

// OutputSummaryBreakdown counts assets per type and region.
type OutputSummaryBreakdown struct {
	ByType   map[string]int `json:"byType"`
	ByRegion map[string]int `json:"byRegion"`
}

// OutputSummaryMetadata describes the rows behind an output summary.
type OutputSummaryMetadata struct {
	Source            string `json:"source"`
	TotalRecords      int    `json:"totalRecords"`
	HasPortfolioEntry bool   `json:"hasPortfolioEntry"`
	IndividualAssets  int    `json:"individualAssets"`
}

// AssetOutputSummary is the per-asset results table of the dashboard.
type AssetOutputSummary struct {
	Assets        []map[string]any       `json:"assets"`
	Summary       OutputSummaryTotals    `json:"summary"`
	Breakdown     OutputSummaryBreakdown `json:"breakdown"`
	PortfolioData map[string]any         `json:"portfolioData"`
	Metadata      *OutputSummaryMetadata `json:"metadata,omitempty"`
	Message       string                 `json:"message,omitempty"`
}
