package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
)

// PortfolioConfigBuilder provides a fluent interface for creating CONFIG_Inputs documents.
//
// Example usage:
//
//	// Two assets, the second one part of a hybrid group
//	cfg := testutil.NewPortfolioConfig().
//	    WithUniqueID("p1").
//	    WithAsset(1, "Solar A").
//	    WithHybridAsset(2, "Battery B", "Site X").
//	    Build(t, store)
type PortfolioConfigBuilder struct {
	UniqueID       string
	PlatformName   string
	PortfolioTitle string
	Assets         []docstore.Document
	UpdatedAt      *time.Time
}

// NewPortfolioConfig creates a PortfolioConfigBuilder with sensible defaults.
func NewPortfolioConfig() *PortfolioConfigBuilder {
	return &PortfolioConfigBuilder{
		UniqueID:     MakeUniqueID(),
		PlatformName: "Test Platform",
		Assets:       []docstore.Document{},
	}
}

// WithUniqueID sets a custom unique_id.
func (b *PortfolioConfigBuilder) WithUniqueID(id string) *PortfolioConfigBuilder {
	b.UniqueID = id
	return b
}

// WithPlatformName sets the platform name.
func (b *PortfolioConfigBuilder) WithPlatformName(name string) *PortfolioConfigBuilder {
	b.PlatformName = name
	return b
}

// WithTitle sets the portfolio title.
func (b *PortfolioConfigBuilder) WithTitle(title string) *PortfolioConfigBuilder {
	b.PortfolioTitle = title
	return b
}

// WithUpdatedAt sets updated_at.
func (b *PortfolioConfigBuilder) WithUpdatedAt(t time.Time) *PortfolioConfigBuilder {
	b.UpdatedAt = &t
	return b
}

// WithAsset appends an asset entry.
func (b *PortfolioConfigBuilder) WithAsset(id int, name string) *PortfolioConfigBuilder {
	b.Assets = append(b.Assets, docstore.Document{"id": id, "name": name})
	return b
}

// WithHybridAsset appends an asset entry tagged with a hybrid group.
func (b *PortfolioConfigBuilder) WithHybridAsset(id int, name, group string) *PortfolioConfigBuilder {
	b.Assets = append(b.Assets, docstore.Document{"id": id, "name": name, "hybridGroup": group})
	return b
}

// WithRawAsset appends an asset entry as given, for ids stored as strings or garbage.
func (b *PortfolioConfigBuilder) WithRawAsset(entry docstore.Document) *PortfolioConfigBuilder {
	b.Assets = append(b.Assets, entry)
	return b
}

// Document returns the configuration as it is stored.
func (b *PortfolioConfigBuilder) Document() docstore.Document {
	assets := make([]any, len(b.Assets))
	for i, a := range b.Assets {
		assets[i] = a
	}
	doc := docstore.Document{
		model.FieldUniqueID: b.UniqueID,
		"PlatformName":      b.PlatformName,
		"asset_inputs":      assets,
	}
	if b.PortfolioTitle != "" {
		doc["PortfolioTitle"] = b.PortfolioTitle
	}
	if b.UpdatedAt != nil {
		doc[model.FieldUpdatedAt] = *b.UpdatedAt
	}
	return doc
}

// Build stores the configuration and returns the document.
func (b *PortfolioConfigBuilder) Build(t *testing.T, store docstore.Store) docstore.Document {
	t.Helper()

	doc := b.Document()
	InsertDocuments(t, store, model.CollectionConfigInputs, doc)
	return doc
}

// CashFlowBuilder provides a fluent interface for creating result rows in
// ASSET_cash_flows (or any collection with the same row shape).
//
// Example usage:
//
//	testutil.NewCashFlow(1, testutil.Date(2024, 1, 31)).
//	    WithUniqueID("p1").
//	    With("revenue", 100).
//	    Build(t, store)
type CashFlowBuilder struct {
	Collection string
	Fields     docstore.Document
}

// NewCashFlow creates a base-case row for the asset at the given date.
func NewCashFlow(assetID int, date time.Time) *CashFlowBuilder {
	return &CashFlowBuilder{
		Collection: model.CollectionCashFlows,
		Fields: docstore.Document{
			model.FieldAssetID: assetID,
			model.FieldDate:    date,
		},
	}
}

// With sets a field on the row.
func (b *CashFlowBuilder) With(field string, value any) *CashFlowBuilder {
	b.Fields[field] = value
	return b
}

// WithUniqueID tags the row with a portfolio.
func (b *CashFlowBuilder) WithUniqueID(id string) *CashFlowBuilder {
	return b.With(model.FieldUniqueID, id)
}

// WithScenario tags the row with a sensitivity scenario.
func (b *CashFlowBuilder) WithScenario(id string) *CashFlowBuilder {
	return b.With(model.FieldScenarioID, id)
}

// WithHybridGroup marks the row as a pre-combined hybrid row.
func (b *CashFlowBuilder) WithHybridGroup(group string) *CashFlowBuilder {
	return b.With(model.FieldHybridGroup, group)
}

// InCollection stores the row in another collection, such as SENS_Asset_Outputs.
func (b *CashFlowBuilder) InCollection(name string) *CashFlowBuilder {
	b.Collection = name
	return b
}

// Build stores the row and returns it.
func (b *CashFlowBuilder) Build(t *testing.T, store docstore.Store) docstore.Document {
	t.Helper()

	InsertDocuments(t, store, b.Collection, b.Fields)
	return b.Fields
}

// Convenience functions

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateMonthlyCashFlows stores one row per month-end for the asset, starting at the
// given month, each carrying field = value.
//
// Example usage:
//
//	testutil.CreateMonthlyCashFlows(t, store, "p1", 1, testutil.Date(2024, 1, 1), 12, "revenue", 100)
func CreateMonthlyCashFlows(t *testing.T, store docstore.Store, uniqueID string, assetID int, start time.Time, months int, field string, value float64) {
	t.Helper()

	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < months; i++ {
		monthEnd := first.AddDate(0, i+1, -1)
		NewCashFlow(assetID, monthEnd).
			WithUniqueID(uniqueID).
			With(field, value).
			Build(t, store)
	}
}

// MakeUniqueID returns a fresh portfolio unique_id.
func MakeUniqueID() string {
	return fmt.Sprintf("portfolio-%s", uuid.New().String()[:8])
}
