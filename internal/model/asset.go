package model

// ListedAsset is a configured asset that has cash-flow output.
type ListedAsset struct {
	ID          int    `json:"_id"`
	Name        string `json:"name"`
	HybridGroup string `json:"hybridGroup,omitempty"`
}

// DisplayAsset is one entry of the asset picker. Hybrid groups appear once, under
// their primary member's id.
type DisplayAsset struct {
	ID             int      `json:"_id"`
	Name           string   `json:"name"`
	HybridGroup    *string  `json:"hybridGroup"`
	IsHybrid       bool     `json:"isHybrid"`
	ComponentIDs   []int    `json:"componentIds,omitempty"`
	ComponentNames []string `json:"componentNames,omitempty"`
}

// AssetListing is the response of the asset picker lookup.
type AssetListing struct {
	UniqueAssetIDs []DisplayAsset        `json:"uniqueAssetIds"`
	HybridGroups   map[string][]AssetRef `json:"hybridGroups"`
	AllAssets      []ListedAsset         `json:"allAssets"`
}

// HybridMetadata describes the members behind a hybrid series.
type HybridMetadata struct {
	HybridGroup    string `json:"hybridGroup"`
	AssetIDs       []int  `json:"assetIds"`
	AssetNames     string `json:"assetNames"`
	ComponentCount int    `json:"componentCount"`
}

// HybridAssetData is a combined series with its member description.
type HybridAssetData struct {
	Data     []map[string]any `json:"data"`
	Metadata HybridMetadata   `json:"metadata"`
}

// AssetsResult is the outcome of the assets fallback chain. Source names the strategy
// that produced the rows.
type AssetsResult struct {
	Assets  []any  `json:"assets"`
	Source  string `json:"source"`
	Count   int    `json:"count"`
	Message string `json:"message,omitempty"`
}

// Assets fallback sources.
const (
	AssetsSourceInputsSummary = "inputs_summary"
	AssetsSourceCashFlows     = "cash_flows_aggregated"
	AssetsSourceEmpty         = "empty_fallback"
)

// AssetInputSummary is one ASSET_inputs_summary row in the fixed shape of the asset
// inputs table. Numeric fields read as 0 when absent or unparsable, except where a
// documented default applies.
type AssetInputSummary struct {
	AssetID   any     `json:"asset_id"`
	AssetName string  `json:"asset_name"`
	Type      string  `json:"type"`
	Region    string  `json:"region"`
	Capacity  float64 `json:"capacity"`
	Volume    float64 `json:"volume"`

	CostCapex                   float64 `json:"cost_capex"`
	CostMaxGearing              float64 `json:"cost_maxGearing"`
	CostInterestRate            float64 `json:"cost_interestRate"`
	CostTenorYears              float64 `json:"cost_tenorYears"`
	CostTerminalValue           float64 `json:"cost_terminalValue"`
	CostOperatingCosts          float64 `json:"cost_operatingCosts"`
	CostOperatingCostEscalation float64 `json:"cost_operatingCostEscalation"`
	CostTargetDSCRContract      float64 `json:"cost_targetDSCRContract"`
	CostTargetDSCRMerchant      float64 `json:"cost_targetDSCRMerchant"`
	CostCalculatedGearing       float64 `json:"cost_calculatedGearing"`
	CostDebtStructure           any     `json:"cost_debtStructure"`

	CapacityFactor       any     `json:"capacityFactor"`
	QtrCapacityFactorQ1  any     `json:"qtrCapacityFactor_q1"`
	QtrCapacityFactorQ2  any     `json:"qtrCapacityFactor_q2"`
	QtrCapacityFactorQ3  any     `json:"qtrCapacityFactor_q3"`
	QtrCapacityFactorQ4  any     `json:"qtrCapacityFactor_q4"`
	AnnualDegradation    float64 `json:"annualDegradation"`
	VolumeLossAdjustment float64 `json:"volumeLossAdjustment"`
	AssetLife            int     `json:"assetLife"`
	ConstructionDuration int     `json:"constructionDuration"`

	ConstructionStartDate any `json:"constructionStartDate,omitempty"`
	OperatingStartDate    any `json:"OperatingStartDate,omitempty"`

	DebtTotalCapex   float64 `json:"debt_total_capex"`
	DebtDebtAmount   float64 `json:"debt_debt_amount"`
	DebtEquityAmount float64 `json:"debt_equity_amount"`
	DebtGearing      float64 `json:"debt_gearing"`

	EquityIRR *float64 `json:"equity_irr"`
	Contracts any      `json:"contracts"`

	CreatedAt any `json:"created_at,omitempty"`
	UpdatedAt any `json:"updated_at,omitempty"`
}

// Defaults of the asset inputs table.
const (
	DefaultVolumeLossAdjustment = 95
	DefaultAssetLife            = 25
)

// AssetInputSummaryResult is the asset inputs table. Message is set when the collection
// is empty.
type AssetInputSummaryResult struct {
	Assets  []AssetInputSummary `json:"assets"`
	Count   int                 `json:"count,omitempty"`
	Source  string              `json:"source,omitempty"`
	Message string              `json:"message,omitempty"`
}

// AssetInputUpdate reports the write of one row of a bulk asset inputs save.
type AssetInputUpdate struct {
	AssetID  any   `json:"asset_id"`
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
	Upserted int64 `json:"upserted"`
}
