package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// storedTimeLayout is the fixed-width UTC form timestamps take inside SQLite JSON bodies,
// so that ORDER BY on a date field sorts chronologically.
const storedTimeLayout = "2006-01-02T15:04:05.000Z07:00"

const maxUpdateAttempts = 3

var simplePathPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteStore keeps every collection in the documents table created by the migrations.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open, migrated SQLite handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Collection returns the named collection.
func (s *SQLiteStore) Collection(name string) Collection {
	return &sqliteCollection{db: s.db, name: name}
}

// Ping checks the connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying handle.
func (s *SQLiteStore) Close(_ context.Context) error {
	return s.db.Close()
}

// Driver names the backend.
func (s *SQLiteStore) Driver() string {
	return "sqlite"
}

// DB exposes the handle for schema inspection.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

type sqliteCollection struct {
	db   *sql.DB
	name string
}

func (c *sqliteCollection) Name() string {
	return c.name
}

func (c *sqliteCollection) Find(ctx context.Context, filter Filter, opts ...FindOption) ([]Document, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}
	o := buildFindOptions(opts)

	where, args := c.where(filter)
	query := "SELECT body FROM documents WHERE " + where

	order, err := orderClause(o.Sort)
	if err != nil {
		return nil, err
	}
	query += order
	if o.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, o.Limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.name, err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan %s document: %w", c.name, err)
		}
		doc, err := decodeBody(body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", c.name, err)
		}
		docs = append(docs, project(doc, o.Fields))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s documents: %w", c.name, err)
	}
	return docs, nil
}

func (c *sqliteCollection) FindOne(ctx context.Context, filter Filter, opts ...FindOption) (Document, error) {
	docs, err := c.Find(ctx, filter, append(opts, Limit(1))...)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNoDocument
	}
	return docs[0], nil
}

func (c *sqliteCollection) Distinct(ctx context.Context, field string, filter Filter) ([]any, error) {
	if err := ValidateFieldName(field); err != nil {
		return nil, err
	}
	if err := filter.validate(); err != nil {
		return nil, err
	}
	where, args := c.where(filter)
	expr := extract(field)
	query := fmt.Sprintf(
		"SELECT DISTINCT %s AS v FROM documents WHERE %s AND %s IS NOT NULL ORDER BY v",
		expr, where, expr,
	)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct %s.%s: %w", c.name, field, err)
	}
	defer rows.Close()

	values := []any{}
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan distinct value: %w", err)
		}
		values = append(values, normalizeScalar(v))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating distinct values: %w", err)
	}
	return values, nil
}

func (c *sqliteCollection) Count(ctx context.Context, filter Filter) (int64, error) {
	if err := filter.validate(); err != nil {
		return 0, err
	}
	where, args := c.where(filter)
	var n int64
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE "+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", c.name, err)
	}
	return n, nil
}

func (c *sqliteCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	for k := range doc {
		if err := ValidateFieldName(k); err != nil {
			return "", err
		}
	}
	id := doc.ID()
	if id == "" {
		id = uuid.New().String()
	}
	stored := doc.Clone()
	stored[IDField] = id

	body, err := encodeBody(stored)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s document: %w", c.name, err)
	}
	_, err = c.db.ExecContext(ctx,
		"INSERT INTO documents (id, collection, body) VALUES (?, ?, ?)",
		id, c.name, body,
	)
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) && sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
		return "", fmt.Errorf("%w: %s %s", ErrDuplicateID, c.name, id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert %s document: %w", c.name, err)
	}
	return id, nil
}

func (c *sqliteCollection) UpdateOne(ctx context.Context, filter Filter, set Document, upsert bool) (UpdateResult, error) {
	if err := filter.validate(); err != nil {
		return UpdateResult{}, err
	}
	set, err := cleanSet(set)
	if err != nil {
		return UpdateResult{}, err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		id, body, err := c.first(ctx, filter)
		if errors.Is(err, ErrNoDocument) {
			if !upsert {
				return UpdateResult{}, nil
			}
			doc := filter.seed()
			for k, v := range set {
				doc[k] = v
			}
			newID, err := c.InsertOne(ctx, doc)
			if err != nil {
				return UpdateResult{}, err
			}
			return UpdateResult{Upserted: 1, UpsertedID: newID}, nil
		}
		if err != nil {
			return UpdateResult{}, err
		}

		current, err := decodeBody(body)
		if err != nil {
			return UpdateResult{}, fmt.Errorf("failed to decode %s document: %w", c.name, err)
		}
		before, err := encodeBody(current)
		if err != nil {
			return UpdateResult{}, err
		}
		for k, v := range set {
			current[k] = v
		}
		after, err := encodeBody(current)
		if err != nil {
			return UpdateResult{}, fmt.Errorf("failed to encode %s document: %w", c.name, err)
		}
		if after == before {
			return UpdateResult{Matched: 1}, nil
		}

		// Compare-and-swap on the body read above; a concurrent writer forces a retry.
		res, err := c.db.ExecContext(ctx,
			"UPDATE documents SET body = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND body = ?",
			after, id, body,
		)
		if err != nil {
			return UpdateResult{}, fmt.Errorf("failed to update %s document: %w", c.name, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 1 {
			return UpdateResult{Matched: 1, Modified: 1}, nil
		}
	}
	return UpdateResult{}, fmt.Errorf("failed to update %s document: concurrent modification", c.name)
}

func (c *sqliteCollection) first(ctx context.Context, filter Filter) (string, string, error) {
	where, args := c.where(filter)
	var id, body string
	err := c.db.QueryRowContext(ctx,
		"SELECT id, body FROM documents WHERE "+where+" ORDER BY rowid LIMIT 1", args...,
	).Scan(&id, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNoDocument
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to query %s: %w", c.name, err)
	}
	return id, body, nil
}

func (c *sqliteCollection) where(filter Filter) (string, []any) {
	clauses := []string{"collection = ?"}
	args := []any{c.name}
	for _, cond := range filter.Conditions() {
		expr := extract(cond.Field)
		switch cond.Op {
		case OpEq:
			clauses = append(clauses, expr+" = ?")
			args = append(args, bindValue(cond.Values[0]))
		case OpIn:
			if len(cond.Values) == 0 {
				clauses = append(clauses, "0")
				continue
			}
			placeholders := make([]string, len(cond.Values))
			for i, v := range cond.Values {
				placeholders[i] = "?"
				args = append(args, bindValue(v))
			}
			clauses = append(clauses, fmt.Sprintf("%s IN (%s)", expr, strings.Join(placeholders, ", ")))
		case OpMissing:
			clauses = append(clauses, fmt.Sprintf("(%s IS NULL OR %s = '')", expr, expr))
		case OpExists:
			clauses = append(clauses, expr+" IS NOT NULL")
		}
	}
	return strings.Join(clauses, " AND "), args
}

func orderClause(keys []SortKey) (string, error) {
	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		if err := ValidateFieldName(k.Field); err != nil {
			return "", err
		}
		dir := "ASC"
		if k.Order == Descending {
			dir = "DESC"
		}
		// _id sorts by insertion order, as MongoDB ObjectIDs do.
		if k.Field == IDField {
			parts = append(parts, "rowid "+dir)
			continue
		}
		parts = append(parts, extract(k.Field)+" "+dir)
	}
	parts = append(parts, "rowid ASC")
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// extract builds the json_extract expression for a validated field name. Simple
// identifiers use the unquoted path so expression indexes on '$.unique_id' apply.
func extract(field string) string {
	if simplePathPattern.MatchString(field) {
		return fmt.Sprintf("json_extract(body, '$.%s')", field)
	}
	return fmt.Sprintf(`json_extract(body, '$."%s"')`, field)
}

func bindValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(storedTimeLayout)
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return v
	}
}

func encodeBody(doc Document) (string, error) {
	b, err := json.Marshal(encodeValue(doc))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func encodeValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(storedTimeLayout)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(storedTimeLayout)
	case Document:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = encodeValue(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = encodeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = encodeValue(val)
		}
		return out
	default:
		return v
	}
}

func decodeBody(body string) (Document, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, err
	}
	return decodeValue(raw).(Document), nil
}

func decodeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(Document, len(t))
		for k, val := range t {
			out[k] = decodeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = decodeValue(val)
		}
		return out
	case string:
		return normalizeScalar(t)
	default:
		return v
	}
}

// normalizeScalar turns stored timestamp strings back into time.Time.
func normalizeScalar(v any) any {
	switch t := v.(type) {
	case []byte:
		return normalizeScalar(string(t))
	case string:
		if len(t) == len("2006-01-02T15:04:05.000Z") && strings.HasSuffix(t, "Z") {
			if parsed, err := time.Parse(storedTimeLayout, t); err == nil {
				return parsed.UTC()
			}
		}
		return t
	default:
		return v
	}
}

func project(doc Document, fields []string) Document {
	if len(fields) == 0 {
		return doc
	}
	out := Document{}
	if v, ok := doc[IDField]; ok {
		out[IDField] = v
	}
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}
