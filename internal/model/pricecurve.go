package model

import "time"

// Price curve fields, in the upper-case form the curve loader writes them.
const (
	FieldCurveName = "curve_name"
	FieldTime      = "TIME"
	FieldRegion    = "REGION"
	FieldProfile   = "PROFILE"
	FieldType      = "TYPE"
	FieldPrice     = "PRICE"
)

// PricePoint is one observation of a named price curve.
type PricePoint struct {
	CurveName string
	Time      time.Time
	Region    string
	Profile   string
	Type      string
	Price     float64
}

// PriceCurveQuery filters curve points. Empty fields do not filter.
type PriceCurveQuery struct {
	CurveName string
	Region    string
	Profile   string
	Type      string
}

// PriceCurveMeta lists the available curves.
type PriceCurveMeta struct {
	CurveNames []string       `json:"curveNames"`
	Metadata   map[string]any `json:"metadata"`
}
