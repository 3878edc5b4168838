package model

// Collection names in the document store. They are shared with the model backend,
// which writes the result collections.
const (
	CollectionConfigInputs        = "CONFIG_Inputs"
	CollectionCashFlows           = "ASSET_cash_flows"
	CollectionOutputSummary       = "ASSET_Output_Summary"
	CollectionInputsSummary       = "ASSET_inputs_summary"
	CollectionSensitivitySummary  = "SENS_Summary_Main"
	CollectionSensitivityOutputs  = "SENS_Asset_Outputs"
	CollectionPriceCurvesLegacy   = "PRICE_Curves"
	CollectionPriceCurves         = "PRICE_Curves_2"
	CollectionPriceCurvesMetadata = "PRICE_Curves_Metadata"
	CollectionPortfolioCosts      = "PORTFOLIO_Costs"
	CollectionModelSettings       = "CONFIG_modelSettings"
	CollectionSensitivityConfig   = "SENSITIVITY_Config"
	CollectionDefaults            = "CONFIG_Defaults"
	CollectionAssetDefaults       = "CONFIG_assetDefaults"
	CollectionSettings            = "Settings"
)

// Field names shared by the result collections.
const (
	FieldAssetID     = "asset_id"
	FieldAssetName   = "asset_name"
	FieldDate        = "date"
	FieldUniqueID    = "unique_id"
	FieldScenarioID  = "scenario_id"
	FieldHybridGroup = "hybrid_group"
	FieldPortfolio   = "portfolio"
	FieldUpdatedAt   = "updated_at"
)
