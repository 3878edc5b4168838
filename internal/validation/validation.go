package validation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/aggregate"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/model"
)

// Error collects per-field validation failures of a request body.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// RequireUniqueID trims and checks the portfolio key.
func RequireUniqueID(uniqueID string) (string, error) {
	id := strings.TrimSpace(uniqueID)
	if id == "" {
		return "", fmt.Errorf("%w: unique_id", apperrors.ErrMissingParameter)
	}
	return id, nil
}

// ValidateGroupedPeriod parses a period that must bucket records. none and the
// empty string are rejected.
func ValidateGroupedPeriod(period string) (aggregate.Granularity, error) {
	g, err := aggregate.ParseGranularity(period)
	if err != nil || !g.Grouped() {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidPeriod, period)
	}
	return g, nil
}

// ValidatePeriod parses an optional period. Unknown names fall back to none,
// which returns the raw records.
func ValidatePeriod(period string) aggregate.Granularity {
	g, err := aggregate.ParseGranularity(period)
	if err != nil {
		return aggregate.None
	}
	return g
}

// ValidateField checks a field name against the numeric allowlist.
func ValidateField(field string) error {
	if !aggregate.IsNumericField(field) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidField, field)
	}
	return nil
}

// ParseVariables splits a comma separated list of export columns and checks each
// against the allowlist. An empty list means every column.
func ParseVariables(csv string) ([]string, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, nil
	}
	var out []string
	for _, v := range strings.Split(csv, ",") {
		v = strings.TrimSpace(v)
		if v == "" || v == model.FieldDate || v == model.FieldAssetID {
			continue
		}
		if err := ValidateField(v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseAssetID parses an asset id parameter.
func ParseAssetID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidAssetID, s)
	}
	return id, nil
}

// ValidateSaveCosts checks a portfolio costs save.
func ValidateSaveCosts(req model.SaveCostsRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.UniqueID) == "" {
		errors["unique_id"] = "unique_id is required"
	}
	if req.Assets == nil {
		errors["assets"] = "assets object is required"
	}
	if req.Revision != nil && *req.Revision < 0 {
		errors["revision"] = "revision cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
