package model

import (
	"strconv"
	"strings"
	"time"
)

// Scenario types.
const (
	ScenarioTypeBase        = "base"
	ScenarioTypeSensitivity = "sensitivity"
)

// SensitivityScenarioPrefix starts every sensitivity scenario id.
const SensitivityScenarioPrefix = "sensitivity_results_"

// Scenario describes one model run stored in a results collection.
type Scenario struct {
	ScenarioID  string        `json:"scenarioId"`
	Name        string        `json:"name"`
	Type        string        `json:"type"`
	Parameter   string        `json:"parameter,omitempty"`
	Value       *float64      `json:"value,omitempty"`
	Description string        `json:"description"`
	Stats       ScenarioStats `json:"stats"`
}

// ScenarioStats are totals over a scenario's records.
type ScenarioStats struct {
	TotalRevenue        float64   `json:"totalRevenue"`
	TotalCapex          float64   `json:"totalCapex"`
	TotalEquityCashFlow float64   `json:"totalEquityCashFlow"`
	RecordCount         int       `json:"recordCount"`
	AssetCount          int       `json:"assetCount"`
	DateRange           DateRange `json:"dateRange"`
}

// DateRange bounds a set of records.
type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// ScenarioParams is the decoded form of a sensitivity scenario id.
type ScenarioParams struct {
	Name        string
	Parameter   string
	Value       *float64
	Description string
}

var parameterDisplayNames = map[string]string{
	"electricity_price": "Electricity Price",
	"green_price":       "Green Certificate Price",
	"volume":            "Generation Volume",
	"capex":             "CAPEX",
	"opex":              "OPEX",
	"interest_rate":     "Interest Rate",
	"terminal_value":    "Terminal Value",
}

// ParseScenarioID decodes ids of the form sensitivity_results_<parameter>_<value>.
func ParseScenarioID(id string) ScenarioParams {
	unknown := ScenarioParams{Name: id, Parameter: "unknown", Description: "Unknown scenario"}
	if id == "" {
		unknown.Name = "Unknown Scenario"
	}
	if !strings.HasPrefix(id, SensitivityScenarioPrefix) {
		return unknown
	}

	parts := strings.Split(id, "_")
	if len(parts) < 4 {
		return unknown
	}
	parameter := strings.Join(parts[2:len(parts)-1], "_")
	value, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil {
		return ScenarioParams{Name: id, Parameter: parameter, Description: "Unknown scenario"}
	}

	display, ok := parameterDisplayNames[parameter]
	if !ok {
		display = strings.ReplaceAll(parameter, "_", " ")
	}

	formatted := strconv.FormatFloat(value, 'f', -1, 64)
	sign := ""
	description := display + " scenario"
	switch {
	case value > 0:
		sign = "+"
		description += " (+" + formatted + ")"
	case value < 0:
		description += " (" + formatted + ")"
	}

	return ScenarioParams{
		Name:        display + " " + sign + formatted,
		Parameter:   parameter,
		Value:       &value,
		Description: description,
	}
}
