package model

import "time"

// CashFlowRecord is one dated row of model output for an asset.
// Values holds every numeric field of the row except the key fields.
type CashFlowRecord struct {
	AssetID     int
	Date        time.Time
	UniqueID    string
	ScenarioID  string
	HybridGroup string
	AssetName   string
	Values      map[string]float64
}

// CashFlowQuery scopes a cash-flow lookup.
type CashFlowQuery struct {
	AssetIDs []int
	UniqueID string
	// ScenarioID selects a sensitivity scenario. Empty selects the base case
	// (records whose scenario_id is absent, null or empty) unless AllScenarios is set.
	ScenarioID   string
	AllScenarios bool
	// HybridGroup selects pre-combined records of that group. Empty selects
	// ordinary per-asset records (hybrid_group absent), so combined rows stored
	// under a primary asset id are never counted twice.
	HybridGroup string
}

// AssetSummary is the per-asset attribute row derived from cash flows when no
// inputs summary exists for the portfolio.
type AssetSummary struct {
	ID             int        `json:"_id"`
	AssetID        int        `json:"asset_id"`
	AssetName      string     `json:"asset_name"`
	Type           string     `json:"type"`
	Region         string     `json:"region"`
	Capacity       float64    `json:"capacity"`
	TotalCapex     float64    `json:"totalCapex"`
	TotalDebt      float64    `json:"totalDebt"`
	TotalEquity    float64    `json:"totalEquity"`
	TotalRevenue   float64    `json:"totalRevenue"`
	TotalOpex      float64    `json:"totalOpex"`
	CostCapex      float64    `json:"cost_capex"`
	CostMaxGearing float64    `json:"cost_maxGearing"`
	FirstDate      *time.Time `json:"firstDate,omitempty"`
	LastDate       *time.Time `json:"lastDate,omitempty"`
	RecordCount    int        `json:"recordCount"`
	// OperatingStartDate is the first cash-flow date.
	OperatingStartDate *time.Time `json:"OperatingStartDate,omitempty"`
}
