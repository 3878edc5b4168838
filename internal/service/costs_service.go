package service

import (
	"context"
	"strings"
	"time"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/validation"
)

// CostsService handles the CAPEX/OPEX line items edited on the costs page.
type CostsService struct {
	costsRepo *repository.CostsRepository
}

// NewCostsService creates a new CostsService.
func NewCostsService(costsRepo *repository.CostsRepository) *CostsService {
	return &CostsService{costsRepo: costsRepo}
}

// GetCosts returns the stored costs of a portfolio, or an empty document with a nil
// updated_at when nothing has been saved yet.
func (s *CostsService) GetCosts(ctx context.Context, uniqueID string) (*model.PortfolioCosts, error) {
	uniqueID = strings.TrimSpace(uniqueID)
	costs, err := s.costsRepo.Get(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	if costs == nil {
		return &model.PortfolioCosts{UniqueID: uniqueID, Assets: map[string]any{}}, nil
	}
	return costs, nil
}

// SaveCosts validates and stores the costs of a portfolio.
// Returns apperrors.ErrRevisionConflict when the request carries a stale revision.
func (s *CostsService) SaveCosts(ctx context.Context, req model.SaveCostsRequest) (model.SaveCostsResult, error) {
	if err := validation.ValidateSaveCosts(req); err != nil {
		return model.SaveCostsResult{}, err
	}
	req.UniqueID = strings.TrimSpace(req.UniqueID)
	return s.costsRepo.Save(ctx, req, time.Now().UTC())
}
