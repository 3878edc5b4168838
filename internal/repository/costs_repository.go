package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/docstore"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
)

const fieldRevision = "revision"

// CostsRepository reads and writes PORTFOLIO_Costs, one document per portfolio.
type CostsRepository struct {
	coll docstore.Collection
}

// NewCostsRepository creates a CostsRepository over the store.
func NewCostsRepository(store docstore.Store) *CostsRepository {
	return &CostsRepository{coll: store.Collection(model.CollectionPortfolioCosts)}
}

// Get retrieves the costs document of a portfolio. Returns nil when none is stored.
func (r *CostsRepository) Get(ctx context.Context, uniqueID string) (*model.PortfolioCosts, error) {
	doc, err := r.coll.FindOne(ctx, docstore.All().Eq(model.FieldUniqueID, uniqueID))
	if errors.Is(err, docstore.ErrNoDocument) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio costs: %w", err)
	}

	costs := &model.PortfolioCosts{
		ID:       doc.ID(),
		UniqueID: doc.String(model.FieldUniqueID),
		Assets:   map[string]any{},
	}
	if assets, ok := doc.Doc("assets"); ok {
		costs.Assets = map[string]any(assets)
	}
	if t, ok := doc.Time(model.FieldUpdatedAt); ok {
		costs.UpdatedAt = &t
	}
	if rev, ok := doc.Int(fieldRevision); ok {
		costs.Revision = rev
	}
	return costs, nil
}

// Save writes the costs of a portfolio and bumps its revision.
//
// Without a revision in the request the save always wins. With one, it must equal the
// stored revision (zero for a document that has none yet) or apperrors.ErrRevisionConflict
// is returned and nothing is written. The first document of a portfolio is inserted under
// a fixed _id and later saves are conditional updates on the stored revision, so two
// concurrent saves of the same revision cannot both succeed.
func (r *CostsRepository) Save(ctx context.Context, req model.SaveCostsRequest, now time.Time) (model.SaveCostsResult, error) {
	current, err := r.Get(ctx, req.UniqueID)
	if err != nil {
		return model.SaveCostsResult{}, err
	}

	if current == nil {
		if req.Revision != nil && *req.Revision != 0 {
			return model.SaveCostsResult{}, apperrors.ErrRevisionConflict
		}
		result, err := r.create(ctx, req, now)
		if !errors.Is(err, docstore.ErrDuplicateID) {
			return result, err
		}
		if req.Revision != nil {
			return model.SaveCostsResult{}, apperrors.ErrRevisionConflict
		}
		// Lost the race to create; the unconditional save overwrites the winner.
		if current, err = r.Get(ctx, req.UniqueID); err != nil {
			return model.SaveCostsResult{}, err
		}
		if current == nil {
			return model.SaveCostsResult{}, apperrors.ErrRevisionConflict
		}
	}

	filter := docstore.All().Eq(model.FieldUniqueID, req.UniqueID)
	var next int
	if req.Revision == nil {
		next = current.Revision + 1
	} else {
		expected := *req.Revision
		if expected == 0 && current.Revision == 0 {
			filter = filter.Missing(fieldRevision)
		} else {
			filter = filter.Eq(fieldRevision, expected)
		}
		next = expected + 1
	}

	res, err := r.coll.UpdateOne(ctx, filter, docstore.Document{
		"assets":             req.Assets,
		model.FieldUpdatedAt: now,
		fieldRevision:        next,
	}, false)
	if err != nil {
		return model.SaveCostsResult{}, fmt.Errorf("failed to save portfolio costs: %w", err)
	}
	if res.Matched == 0 {
		return model.SaveCostsResult{}, apperrors.ErrRevisionConflict
	}

	return model.SaveCostsResult{
		Updated:   res.Modified > 0,
		UpdatedAt: now,
		Revision:  next,
	}, nil
}

// create inserts the first costs document of a portfolio. A concurrent create of the same
// portfolio fails with docstore.ErrDuplicateID.
func (r *CostsRepository) create(ctx context.Context, req model.SaveCostsRequest, now time.Time) (model.SaveCostsResult, error) {
	_, err := r.coll.InsertOne(ctx, docstore.Document{
		docstore.IDField:     costsDocumentID(req.UniqueID),
		model.FieldUniqueID:  req.UniqueID,
		"assets":             req.Assets,
		model.FieldUpdatedAt: now,
		fieldRevision:        1,
	})
	if err != nil {
		if errors.Is(err, docstore.ErrDuplicateID) {
			return model.SaveCostsResult{}, err
		}
		return model.SaveCostsResult{}, fmt.Errorf("failed to save portfolio costs: %w", err)
	}
	return model.SaveCostsResult{Created: true, UpdatedAt: now, Revision: 1}, nil
}

func costsDocumentID(uniqueID string) string {
	return "costs:" + uniqueID
}
