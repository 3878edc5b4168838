package model

import "time"

// PortfolioCosts holds the CAPEX/OPEX line items of a portfolio. Assets is
// an arbitrary nested map owned by the UI and stored as-is.
type PortfolioCosts struct {
	ID        string         `json:"_id,omitempty"`
	UniqueID  string         `json:"unique_id"`
	Assets    map[string]any `json:"assets"`
	UpdatedAt *time.Time     `json:"updated_at"`
	// Revision counts saves. Clients that echo it back get conflict detection.
	Revision int `json:"revision"`
}

// SaveCostsRequest is the body of a costs save. A nil Revision means
// last-writer-wins.
type SaveCostsRequest struct {
	UniqueID string         `json:"unique_id"`
	Assets   map[string]any `json:"assets"`
	Revision *int           `json:"revision,omitempty"`
}

// SaveCostsResult reports a costs save.
type SaveCostsResult struct {
	Updated   bool      `json:"updated"`
	Created   bool      `json:"created"`
	UpdatedAt time.Time `json:"updated_at"`
	Revision  int       `json:"revision"`
}
