package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
)

// ConfigRepository provides read access to the portfolio configuration documents
// in CONFIG_Inputs. The documents are maintained outside this service.
type ConfigRepository struct {
	coll docstore.Collection
}

// NewConfigRepository creates a ConfigRepository over the store.
func NewConfigRepository(store docstore.Store) *ConfigRepository {
	return &ConfigRepository{coll: store.Collection(model.CollectionConfigInputs)}
}

// FindByUniqueID retrieves the configuration with an exact unique_id match.
// Returns apperrors.ErrPortfolioNotFound when none exists.
func (r *ConfigRepository) FindByUniqueID(ctx context.Context, uniqueID string) (*model.PortfolioConfig, error) {
	doc, err := r.coll.FindOne(ctx, docstore.All().Eq(model.FieldUniqueID, uniqueID))
	if errors.Is(err, docstore.ErrNoDocument) {
		return nil, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio config: %w", err)
	}
	cfg := ParseConfig(doc)
	return &cfg, nil
}

// lookupFields are tried in order by FindByName.
var lookupFields = []string{model.FieldUniqueID, "PlatformName", "PortfolioTitle"}

// FindByName retrieves the configuration whose unique_id, PlatformName or PortfolioTitle
// equals name, trying the fields in that order.
// Returns apperrors.ErrPortfolioNotFound when none matches.
func (r *ConfigRepository) FindByName(ctx context.Context, name string) (*model.PortfolioConfig, error) {
	for _, field := range lookupFields {
		doc, err := r.coll.FindOne(ctx, docstore.All().Eq(field, name))
		if errors.Is(err, docstore.ErrNoDocument) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query portfolio config: %w", err)
		}
		cfg := ParseConfig(doc)
		return &cfg, nil
	}
	return nil, apperrors.ErrPortfolioNotFound
}

// First retrieves the oldest configuration document, used by endpoints that predate
// unique_id scoping. Returns apperrors.ErrNoConfiguration when the collection is empty.
func (r *ConfigRepository) First(ctx context.Context) (*model.PortfolioConfig, error) {
	doc, err := r.coll.FindOne(ctx, docstore.All(), docstore.SortBy(docstore.IDField, docstore.Ascending))
	if errors.Is(err, docstore.ErrNoDocument) {
		return nil, apperrors.ErrNoConfiguration
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio config: %w", err)
	}
	cfg := ParseConfig(doc)
	return &cfg, nil
}

// List retrieves every configuration document in insertion order.
func (r *ConfigRepository) List(ctx context.Context) ([]model.PortfolioConfig, error) {
	docs, err := r.coll.Find(ctx, docstore.All(), docstore.SortBy(docstore.IDField, docstore.Ascending))
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolio configs: %w", err)
	}
	configs := make([]model.PortfolioConfig, 0, len(docs))
	for _, doc := range docs {
		configs = append(configs, ParseConfig(doc))
	}
	return configs, nil
}

// UniqueIDs returns up to limit unique_id values in insertion order. Zero means no limit.
func (r *ConfigRepository) UniqueIDs(ctx context.Context, limit int64) ([]string, error) {
	opts := []docstore.FindOption{
		docstore.SortBy(docstore.IDField, docstore.Ascending),
		docstore.Project(model.FieldUniqueID),
	}
	if limit > 0 {
		opts = append(opts, docstore.Limit(limit))
	}
	docs, err := r.coll.Find(ctx, docstore.All().Exists(model.FieldUniqueID), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolio ids: %w", err)
	}
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		if id := doc.String(model.FieldUniqueID); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ParseConfig maps a configuration document. Asset ids stored as numbers or numeric
// strings are accepted; others are dropped and reported in InvalidAssetIDs.
func ParseConfig(doc docstore.Document) model.PortfolioConfig {
	cfg := model.PortfolioConfig{
		UniqueID:       doc.String(model.FieldUniqueID),
		PlatformName:   doc.String("PlatformName"),
		PortfolioTitle: doc.String("PortfolioTitle"),
		Assets:         []model.AssetInput{},
	}
	if t, ok := doc.Time(model.FieldUpdatedAt); ok {
		cfg.UpdatedAt = &t
	}

	for _, raw := range doc.Slice("asset_inputs") {
		entry, ok := asDocument(raw)
		if !ok {
			continue
		}
		id, ok := entry.Int("id")
		if !ok {
			cfg.InvalidAssetIDs = append(cfg.InvalidAssetIDs, fmt.Sprint(entry["id"]))
			continue
		}
		capacity, _ := entry.Float("capacity")
		cfg.Assets = append(cfg.Assets, model.AssetInput{
			ID:          id,
			Name:        entry.String("name"),
			HybridGroup: entry.String("hybridGroup"),
			Type:        entry.String("type"),
			Region:      entry.String("region"),
			Capacity:    capacity,
		})
	}
	return cfg
}

func asDocument(v any) (docstore.Document, bool) {
	switch d := v.(type) {
	case docstore.Document:
		return d, true
	case map[string]any:
		return docstore.Document(d), true
	default:
		return nil, false
	}
}
