package apperrors

import "errors"

// Domain entity errors represent missing entities in the document store.
var (
	// ErrPortfolioNotFound indicates that no configuration document carries the unique_id.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrAssetNotFound indicates that no asset matched the given id.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrHybridGroupNotFound indicates that no configured asset carries the hybrid group tag.
	ErrHybridGroupNotFound = errors.New("hybrid group not found")

	// ErrNoConfiguration indicates that the store holds no portfolio configuration at all.
	ErrNoConfiguration = errors.New("no asset configuration found")

	// ErrDefaultsNotFound indicates that the CONFIG_Defaults document is absent.
	ErrDefaultsNotFound = errors.New("CONFIG_Defaults document not found")

	// ErrAssetDefaultsNotFound indicates that the CONFIG_assetDefaults document is absent.
	ErrAssetDefaultsNotFound = errors.New("asset defaults not found")
)

// Validation errors represent bad request parameters.
var (
	ErrMissingParameter = errors.New("missing required parameter")
	ErrInvalidField     = errors.New("invalid field for aggregation")
	ErrInvalidPeriod    = errors.New("invalid period parameter")
	ErrInvalidAssetID   = errors.New("invalid asset id")
	ErrInvalidFormat    = errors.New("invalid export format")
	ErrInvalidBody      = errors.New("invalid request body")
)

// Business logic errors represent constraint violations.
var (
	// ErrRevisionConflict indicates that a save carried a stale revision.
	ErrRevisionConflict = errors.New("portfolio costs were modified by another user")

	// ErrInvalidAssetDefaults indicates asset defaults without assetDefaults or platformDefaults.
	ErrInvalidAssetDefaults = errors.New("invalid asset defaults structure")

	// ErrAssetDefaultsExist indicates that initialization found a stored document.
	ErrAssetDefaultsExist = errors.New("asset defaults already exist")
)

// Operation failure errors represent system-level failures.
var (
	// ErrBackendUnavailable indicates that the model backend could not be reached.
	ErrBackendUnavailable = errors.New("model backend unavailable")
)
