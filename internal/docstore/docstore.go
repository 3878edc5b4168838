// Package docstore is a small document-store abstraction over the collections the dashboard
// reads and writes. MongoDB is the production backend; SQLite keeps documents as JSON rows
// for local runs and tests. Only the operations the services need are exposed: filtered finds,
// distinct values, counts, inserts and $set-style updates. Aggregation happens in Go.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrNoDocument is returned by FindOne when nothing matches the filter.
var ErrNoDocument = errors.New("document not found")

// ErrDuplicateID is returned by InsertOne when a document with the same _id exists.
var ErrDuplicateID = errors.New("duplicate document id")

// ErrInvalidFieldName is returned when a field name cannot be used in a query.
var ErrInvalidFieldName = errors.New("invalid field name")

// SortOrder is the direction of a sort key.
type SortOrder int

const (
	Ascending  SortOrder = 1
	Descending SortOrder = -1
)

// SortKey orders results by one field.
type SortKey struct {
	Field string
	Order SortOrder
}

// FindOptions controls ordering, limits and projection of a find.
type FindOptions struct {
	Sort   []SortKey
	Limit  int64
	Fields []string
}

// FindOption mutates FindOptions.
type FindOption func(*FindOptions)

// SortBy appends a sort key.
func SortBy(field string, order SortOrder) FindOption {
	return func(o *FindOptions) {
		o.Sort = append(o.Sort, SortKey{Field: field, Order: order})
	}
}

// Limit caps the number of returned documents. Zero means no limit.
func Limit(n int64) FindOption {
	return func(o *FindOptions) {
		o.Limit = n
	}
}

// Project restricts returned documents to the named fields (plus _id).
func Project(fields ...string) FindOption {
	return func(o *FindOptions) {
		o.Fields = append(o.Fields, fields...)
	}
}

func buildFindOptions(opts []FindOption) FindOptions {
	var o FindOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// UpdateResult reports the outcome of UpdateOne, mirroring MongoDB's counters.
type UpdateResult struct {
	Matched    int64
	Modified   int64
	Upserted   int64
	UpsertedID string
}

// Collection is a named set of documents.
type Collection interface {
	Name() string
	Find(ctx context.Context, filter Filter, opts ...FindOption) ([]Document, error)
	FindOne(ctx context.Context, filter Filter, opts ...FindOption) (Document, error)
	Distinct(ctx context.Context, field string, filter Filter) ([]any, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	InsertOne(ctx context.Context, doc Document) (string, error)
	// UpdateOne sets the given top-level fields on the first matching document.
	// With upsert, a missing document is created from the filter's equality
	// conditions plus the set fields.
	UpdateOne(ctx context.Context, filter Filter, set Document, upsert bool) (UpdateResult, error)
}

// Store hands out collections and owns the underlying connection.
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	Driver() string
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_ -]*$`)

// ValidateFieldName rejects names that could escape a JSON path or act as a MongoDB operator.
func ValidateFieldName(name string) error {
	if !fieldNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidFieldName, name)
	}
	return nil
}

func cleanSet(set Document) (Document, error) {
	out := make(Document, len(set))
	for k, v := range set {
		if k == IDField {
			continue
		}
		if err := ValidateFieldName(k); err != nil {
			return nil, err
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil, errors.New("update has no fields to set")
	}
	return out, nil
}
