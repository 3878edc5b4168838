package request

// DefaultPortfolioRequest is the body of a default portfolio change.
type DefaultPortfolioRequest struct {
	UniqueID string `json:"unique_id"`
}
