package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/repository"
)

// sampleUniqueIDs is how many alternatives are logged and returned when a lookup misses.
const sampleUniqueIDs = 5

// PortfolioResolver maps a portfolio unique_id to its configuration and asset scope.
// Nothing is cached; every call reads CONFIG_Inputs again.
type PortfolioResolver struct {
	configRepo *repository.ConfigRepository
}

// NewPortfolioResolver creates a new PortfolioResolver.
func NewPortfolioResolver(configRepo *repository.ConfigRepository) *PortfolioResolver {
	return &PortfolioResolver{configRepo: configRepo}
}

// ResolveConfig looks up the configuration of a portfolio.
// An empty id or a miss yields nil without error; whether that is a 404 is the caller's call.
// Store failures are returned.
func (s *PortfolioResolver) ResolveConfig(ctx context.Context, uniqueID string) (*model.PortfolioConfig, error) {
	uniqueID = strings.TrimSpace(uniqueID)
	if uniqueID == "" {
		return nil, nil
	}

	cfg, err := s.configRepo.FindByUniqueID(ctx, uniqueID)
	if errors.Is(err, apperrors.ErrPortfolioNotFound) {
		available, listErr := s.AvailableUniqueIDs(ctx)
		if listErr != nil {
			available = nil
		}
		log.Warn().
			Str("unique_id", uniqueID).
			Strs("available_unique_ids", available).
			Msg("no portfolio configuration found")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve portfolio %s: %w", uniqueID, err)
	}

	if len(cfg.InvalidAssetIDs) > 0 {
		log.Warn().
			Str("unique_id", uniqueID).
			Strs("invalid_ids", cfg.InvalidAssetIDs).
			Msg("dropped asset_inputs entries with non-integer ids")
	}
	return cfg, nil
}

// ResolveAssetIDs returns the ordered asset ids of a portfolio, or an empty slice when
// the portfolio cannot be resolved.
func (s *PortfolioResolver) ResolveAssetIDs(ctx context.Context, uniqueID string) ([]int, error) {
	cfg, err := s.ResolveConfig(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return []int{}, nil
	}
	return cfg.AssetIDs(), nil
}

// AvailableUniqueIDs lists a few configured unique_ids for not-found diagnostics.
func (s *PortfolioResolver) AvailableUniqueIDs(ctx context.Context) ([]string, error) {
	return s.configRepo.UniqueIDs(ctx, sampleUniqueIDs)
}

// RequireConfig resolves a portfolio and turns a miss into apperrors.ErrPortfolioNotFound.
func (s *PortfolioResolver) RequireConfig(ctx context.Context, uniqueID string) (*model.PortfolioConfig, error) {
	cfg, err := s.ResolveConfig(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, apperrors.ErrPortfolioNotFound
	}
	return cfg, nil
}
