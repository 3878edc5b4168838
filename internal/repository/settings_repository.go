package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
)

// SettingsRepository stores a single settings document in a collection, selected by a
// fixed key. CONFIG_modelSettings, CONFIG_Defaults and CONFIG_assetDefaults hold one
// unkeyed document, SENSITIVITY_Config uses unique_id "default" and Settings keys rows
// by type.
type SettingsRepository struct {
	coll   docstore.Collection
	filter docstore.Filter
}

// NewModelSettingsRepository serves CONFIG_modelSettings.
func NewModelSettingsRepository(store docstore.Store) *SettingsRepository {
	return &SettingsRepository{coll: store.Collection(model.CollectionModelSettings), filter: docstore.All()}
}

// NewSensitivityConfigRepository serves the shared SENSITIVITY_Config document.
func NewSensitivityConfigRepository(store docstore.Store) *SettingsRepository {
	return &SettingsRepository{
		coll:   store.Collection(model.CollectionSensitivityConfig),
		filter: docstore.All().Eq(model.FieldUniqueID, "default"),
	}
}

// NewDefaultsRepository serves CONFIG_Defaults.
func NewDefaultsRepository(store docstore.Store) *SettingsRepository {
	return &SettingsRepository{coll: store.Collection(model.CollectionDefaults), filter: docstore.All()}
}

// NewAssetDefaultsRepository serves the single CONFIG_assetDefaults document.
func NewAssetDefaultsRepository(store docstore.Store) *SettingsRepository {
	return &SettingsRepository{coll: store.Collection(model.CollectionAssetDefaults), filter: docstore.All()}
}

// NewDefaultPortfolioRepository serves the default_portfolio row of Settings.
func NewDefaultPortfolioRepository(store docstore.Store) *SettingsRepository {
	return &SettingsRepository{
		coll:   store.Collection(model.CollectionSettings),
		filter: docstore.All().Eq("type", "default_portfolio"),
	}
}

// Get returns the settings document, or nil when none is stored.
func (r *SettingsRepository) Get(ctx context.Context) (docstore.Document, error) {
	doc, err := r.coll.FindOne(ctx, r.filter, docstore.SortBy(docstore.IDField, docstore.Ascending))
	if errors.Is(err, docstore.ErrNoDocument) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.coll.Name(), err)
	}
	return doc, nil
}

// Set upserts the given fields onto the settings document.
func (r *SettingsRepository) Set(ctx context.Context, fields docstore.Document) (docstore.UpdateResult, error) {
	res, err := r.coll.UpdateOne(ctx, r.filter, fields, true)
	if err != nil {
		return docstore.UpdateResult{}, fmt.Errorf("failed to save %s: %w", r.coll.Name(), err)
	}
	return res, nil
}

// Insert stores doc as a new settings document. A document with the same _id yields
// docstore.ErrDuplicateID.
func (r *SettingsRepository) Insert(ctx context.Context, doc docstore.Document) (string, error) {
	id, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if errors.Is(err, docstore.ErrDuplicateID) {
			return "", err
		}
		return "", fmt.Errorf("failed to insert into %s: %w", r.coll.Name(), err)
	}
	return id, nil
}
