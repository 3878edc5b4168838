package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/repository"
)

// PortfolioService handles the portfolio picker: the list of configured portfolios and
// the default selection stored in Settings.
// Configurations themselves are maintained out-of-band and only read here.
type PortfolioService struct {
	configRepo           *repository.ConfigRepository
	defaultPortfolioRepo *repository.SettingsRepository
}

// NewPortfolioService creates a new PortfolioService with the provided repository dependencies.
func NewPortfolioService(
	configRepo *repository.ConfigRepository,
	defaultPortfolioRepo *repository.SettingsRepository,
) *PortfolioService {
	return &PortfolioService{
		configRepo:           configRepo,
		defaultPortfolioRepo: defaultPortfolioRepo,
	}
}

// ListPortfolios groups the configuration documents by unique_id. Documents without a
// unique_id are skipped. The default portfolio sorts first, the rest by unique_id.
//
// Returns the listing and the default unique_id, or "" when none is set.
func (s *PortfolioService) ListPortfolios(ctx context.Context) ([]model.PortfolioListing, string, error) {
	configs, err := s.configRepo.List(ctx)
	if err != nil {
		return nil, "", err
	}
	defaultID, err := s.GetDefaultPortfolio(ctx)
	if err != nil {
		return nil, "", err
	}

	index := map[string]*model.PortfolioListing{}
	var order []*model.PortfolioListing
	for _, cfg := range configs {
		if cfg.UniqueID == "" {
			continue
		}
		listing, ok := index[cfg.UniqueID]
		if !ok {
			listing = &model.PortfolioListing{
				UniqueID:        cfg.UniqueID,
				PortfolioNames:  []string{},
				PortfolioTitles: []model.PortfolioTitle{},
				IsDefault:       cfg.UniqueID == defaultID,
			}
			index[cfg.UniqueID] = listing
			order = append(order, listing)
		}

		title := cfg.PortfolioTitle
		if title == "" {
			title = cfg.PlatformName
		}
		listing.PortfolioNames = append(listing.PortfolioNames, cfg.PlatformName)
		listing.PortfolioTitles = append(listing.PortfolioTitles, model.PortfolioTitle{Name: cfg.PlatformName, Title: title})
		listing.AssetCount += len(cfg.Assets) + len(cfg.InvalidAssetIDs)
		if cfg.UpdatedAt != nil && (listing.LastUpdated == nil || cfg.UpdatedAt.After(*listing.LastUpdated)) {
			updated := *cfg.UpdatedAt
			listing.LastUpdated = &updated
		}
	}

	out := make([]model.PortfolioListing, 0, len(order))
	for _, listing := range order {
		listing.Name, listing.Title = primaryTitle(listing)
		out = append(out, *listing)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsDefault != b.IsDefault {
			return a.IsDefault
		}
		if a.UniqueID != b.UniqueID {
			return a.UniqueID < b.UniqueID
		}
		return a.Name < b.Name
	})
	return out, defaultID, nil
}

// primaryTitle picks the entry whose title differs from its name, else the first entry.
func primaryTitle(l *model.PortfolioListing) (string, string) {
	for _, t := range l.PortfolioTitles {
		if t.Title != t.Name {
			return t.Name, t.Title
		}
	}
	name, title := l.UniqueID, l.UniqueID
	if len(l.PortfolioTitles) > 0 {
		if n := l.PortfolioTitles[0].Name; n != "" {
			name = n
		}
		if t := l.PortfolioTitles[0].Title; t != "" {
			title = t
		}
	}
	return name, title
}

// GetDefaultPortfolio returns the stored default unique_id, or "" when none is set.
func (s *PortfolioService) GetDefaultPortfolio(ctx context.Context) (string, error) {
	doc, err := s.defaultPortfolioRepo.Get(ctx)
	if err != nil {
		return "", err
	}
	if doc == nil {
		return "", nil
	}
	return doc.String("value"), nil
}

// SetDefaultPortfolio stores the default portfolio after checking it is configured.
// Returns apperrors.ErrPortfolioNotFound for an unknown unique_id.
func (s *PortfolioService) SetDefaultPortfolio(ctx context.Context, uniqueID string) (string, error) {
	uniqueID = strings.TrimSpace(uniqueID)
	if uniqueID == "" {
		return "", fmt.Errorf("%w: unique_id", apperrors.ErrMissingParameter)
	}
	if _, err := s.configRepo.FindByUniqueID(ctx, uniqueID); err != nil {
		return "", err
	}

	_, err := s.defaultPortfolioRepo.Set(ctx, docstore.Document{
		"value":              uniqueID,
		model.FieldUpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}
	return uniqueID, nil
}

// LookupUniqueID maps a portfolio name as the UI knows it (a unique_id, platform name
// or title) to its unique_id. Configurations without one answer with their PlatformName.
func (s *PortfolioService) LookupUniqueID(ctx context.Context, portfolio string) (string, error) {
	portfolio = strings.TrimSpace(portfolio)
	if portfolio == "" {
		return "", fmt.Errorf("%w: portfolio", apperrors.ErrMissingParameter)
	}
	cfg, err := s.configRepo.FindByName(ctx, portfolio)
	if err != nil {
		return "", err
	}
	if cfg.UniqueID != "" {
		return cfg.UniqueID, nil
	}
	return cfg.PlatformName, nil
}
