package model

// DefaultSetting is one CONFIG_Defaults field as the settings page edits it.
// CurrentValue is always sent as a string; saves may carry any JSON value.
type DefaultSetting struct {
	Name         string   `json:"name"`
	CurrentValue any      `json:"currentValue"`
	Options      []string `json:"options"`
}

// SaveDefaultsRequest is the body of a defaults save.
type SaveDefaultsRequest struct {
	Defaults []DefaultSetting `json:"defaults"`
}

// SettingsSaveResult reports an upsert of a settings document.
type SettingsSaveResult struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
	Upserted bool  `json:"upserted"`
}

// DefaultSensitivityConfig is returned when no sensitivity configuration is stored.
func DefaultSensitivityConfig() map[string]any {
	return map[string]any{
		"base_scenario_file":       nil,
		"output_collection_prefix": "sensitivity_results",
		"sensitivities":            map[string]any{},
	}
}
