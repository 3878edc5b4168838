package model

// PortfolioTornadoAsset selects the portfolio-level IRR columns of a sensitivity row.
const PortfolioTornadoAsset = "portfolio"

// UnknownParameter labels sensitivity rows that name no parameter.
const UnknownParameter = "Unknown Parameter"

// TornadoScenario is one sensitivity run of a parameter.
type TornadoScenario struct {
	ScenarioID     string      `json:"scenario_id"`
	ParameterValue interface{} `json:"parameter_value"`
	ParameterUnits string      `json:"parameter_units"`
	// MetricDiff is the IRR change in percentage points.
	MetricDiff float64  `json:"metric_diff"`
	RawValue   *float64 `json:"raw_value"`
}

// TornadoBar summarises all runs of one parameter.
type TornadoBar struct {
	Parameter     string            `json:"parameter"`
	Units         string            `json:"units"`
	Upside        float64           `json:"upside"`
	Downside      float64           `json:"downside"`
	TotalRange    float64           `json:"totalRange"`
	Impacts       []float64         `json:"impacts"`
	Scenarios     []TornadoScenario `json:"scenarios"`
	MaxScenario   *TornadoScenario  `json:"maxScenario"`
	MinScenario   *TornadoScenario  `json:"minScenario"`
	MaxInputValue any               `json:"maxInputValue"`
	MinInputValue any               `json:"minInputValue"`
}

// Tornado is the ranked sensitivity chart for the portfolio or one asset.
type Tornado struct {
	Asset           string       `json:"asset"`
	AssetName       string       `json:"assetName"`
	AvailableAssets []AssetRef   `json:"availableAssets"`
	Parameters      []TornadoBar `json:"parameters"`
}

// AssetRef is an asset id with its display name.
type AssetRef struct {
	ID   int    `json:"_id"`
	Name string `json:"name"`
}

// SensitivityOutput is the scoped SENS_Summary_Main result.
type SensitivityOutput struct {
	Data              []map[string]any  `json:"data"`
	UniqueScenarioIDs []string          `json:"uniqueScenarioIds"`
	AssetNames        map[string]string `json:"assetNames"`
}
