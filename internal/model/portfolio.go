package model

import (
	"strconv"
	"time"
)

// PortfolioConfig is the configuration document of one portfolio, keyed by unique_id.
// It is created and edited outside this service.
type PortfolioConfig struct {
	UniqueID       string       `json:"unique_id"`
	PlatformName   string       `json:"PlatformName"`
	PortfolioTitle string       `json:"PortfolioTitle,omitempty"`
	Assets         []AssetInput `json:"asset_inputs"`
	UpdatedAt      *time.Time   `json:"updated_at,omitempty"`
	// InvalidAssetIDs holds asset_inputs ids that could not be parsed as integers.
	InvalidAssetIDs []string `json:"-"`
}

// AssetInput is one entry of asset_inputs.
type AssetInput struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	HybridGroup string  `json:"hybridGroup,omitempty"`
	Type        string  `json:"type,omitempty"`
	Region      string  `json:"region,omitempty"`
	Capacity    float64 `json:"capacity,omitempty"`
}

// AssetIDs returns the ids in configuration order.
func (c *PortfolioConfig) AssetIDs() []int {
	ids := make([]int, 0, len(c.Assets))
	for _, a := range c.Assets {
		ids = append(ids, a.ID)
	}
	return ids
}

// AssetNames returns the non-empty asset names in configuration order.
func (c *PortfolioConfig) AssetNames() []string {
	names := make([]string, 0, len(c.Assets))
	for _, a := range c.Assets {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names
}

// Asset finds a configured asset by id.
func (c *PortfolioConfig) Asset(id int) (AssetInput, bool) {
	for _, a := range c.Assets {
		if a.ID == id {
			return a, true
		}
	}
	return AssetInput{}, false
}

// AssetName returns the configured name or "Asset <id>".
func (c *PortfolioConfig) AssetName(id int) string {
	if a, ok := c.Asset(id); ok && a.Name != "" {
		return a.Name
	}
	return "Asset " + strconv.Itoa(id)
}

// DisplayName is the title shown in portfolio pickers.
func (c *PortfolioConfig) DisplayName() string {
	if c.PortfolioTitle != "" {
		return c.PortfolioTitle
	}
	if c.PlatformName != "" {
		return c.PlatformName
	}
	return c.UniqueID
}

// PortfolioListing is one row of the portfolio picker.
type PortfolioListing struct {
	UniqueID        string           `json:"unique_id"`
	Name            string           `json:"name"`
	Title           string           `json:"title"`
	PortfolioNames  []string         `json:"portfolioNames"`
	PortfolioTitles []PortfolioTitle `json:"portfolioTitles"`
	AssetCount      int              `json:"assetCount"`
	LastUpdated     *time.Time       `json:"lastUpdated"`
	IsDefault       bool             `json:"isDefault"`
}

// PortfolioTitle pairs a platform name with its display title.
type PortfolioTitle struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}
