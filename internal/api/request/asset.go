package request

// CreateAssetRequest represents the request body for adding an inputs summary row.
// Asset is stored as sent.
type CreateAssetRequest struct {
	Asset map[string]any `json:"asset"`
}

// UpdateAssetRequest represents the request body for changing an inputs summary row.
// AssetID may arrive as a number or a numeric string.
type UpdateAssetRequest struct {
	AssetID any            `json:"assetId"`
	Asset   map[string]any `json:"asset"`
}

// SaveAssetInputsRequest represents the request body of a bulk asset inputs save.
// Entries without an asset_id are ignored.
type SaveAssetInputsRequest struct {
	Assets []map[string]any `json:"assets"`
}
