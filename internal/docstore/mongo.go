package docstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore serves collections from one MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore wraps a connected client.
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database)}
}

// Collection returns the named collection.
func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{coll: s.db.Collection(name)}
}

// Ping checks the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Driver names the backend.
func (s *MongoStore) Driver() string {
	return "mongo"
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) Name() string {
	return c.coll.Name()
}

func (c *mongoCollection) Find(ctx context.Context, filter Filter, opts ...FindOption) ([]Document, error) {
	query, err := mongoFilter(filter)
	if err != nil {
		return nil, err
	}
	o := buildFindOptions(opts)
	findOpts := options.Find()
	if len(o.Sort) > 0 {
		sort := bson.D{}
		for _, k := range o.Sort {
			if err := ValidateFieldName(k.Field); err != nil {
				return nil, err
			}
			sort = append(sort, bson.E{Key: k.Field, Value: int(k.Order)})
		}
		findOpts.SetSort(sort)
	}
	if o.Limit > 0 {
		findOpts.SetLimit(o.Limit)
	}
	if len(o.Fields) > 0 {
		projection := bson.D{}
		for _, f := range o.Fields {
			projection = append(projection, bson.E{Key: f, Value: 1})
		}
		findOpts.SetProjection(projection)
	}

	cursor, err := c.coll.Find(ctx, query, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.Name(), err)
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s documents: %w", c.Name(), err)
	}
	docs := make([]Document, len(raw))
	for i, m := range raw {
		docs[i] = fromBSON(m).(Document)
	}
	return docs, nil
}

func (c *mongoCollection) FindOne(ctx context.Context, filter Filter, opts ...FindOption) (Document, error) {
	docs, err := c.Find(ctx, filter, append(opts, Limit(1))...)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNoDocument
	}
	return docs[0], nil
}

func (c *mongoCollection) Distinct(ctx context.Context, field string, filter Filter) ([]any, error) {
	if err := ValidateFieldName(field); err != nil {
		return nil, err
	}
	query, err := mongoFilter(filter)
	if err != nil {
		return nil, err
	}
	raw, err := c.coll.Distinct(ctx, field, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct %s.%s: %w", c.Name(), field, err)
	}
	values := make([]any, 0, len(raw))
	for _, v := range raw {
		if v == nil {
			continue
		}
		values = append(values, fromBSON(v))
	}
	return values, nil
}

func (c *mongoCollection) Count(ctx context.Context, filter Filter) (int64, error) {
	query, err := mongoFilter(filter)
	if err != nil {
		return 0, err
	}
	n, err := c.coll.CountDocuments(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", c.Name(), err)
	}
	return n, nil
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	for k := range doc {
		if err := ValidateFieldName(k); err != nil {
			return "", err
		}
	}
	res, err := c.coll.InsertOne(ctx, bson.M(doc))
	if mongo.IsDuplicateKeyError(err) {
		return "", fmt.Errorf("%w: %s %v", ErrDuplicateID, c.Name(), doc[IDField])
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert %s document: %w", c.Name(), err)
	}
	return idString(res.InsertedID), nil
}

func (c *mongoCollection) UpdateOne(ctx context.Context, filter Filter, set Document, upsert bool) (UpdateResult, error) {
	query, err := mongoFilter(filter)
	if err != nil {
		return UpdateResult{}, err
	}
	set, err = cleanSet(set)
	if err != nil {
		return UpdateResult{}, err
	}
	res, err := c.coll.UpdateOne(ctx, query, bson.M{"$set": bson.M(set)}, options.Update().SetUpsert(upsert))
	if err != nil {
		return UpdateResult{}, fmt.Errorf("failed to update %s document: %w", c.Name(), err)
	}
	return UpdateResult{
		Matched:    res.MatchedCount,
		Modified:   res.ModifiedCount,
		Upserted:   res.UpsertedCount,
		UpsertedID: idString(res.UpsertedID),
	}, nil
}

// mongoFilter translates a Filter into a query document. Repeated fields are
// combined under $and so no clause is silently overwritten.
func mongoFilter(filter Filter) (bson.D, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}
	conds := filter.Conditions()
	clauses := make([]bson.E, 0, len(conds))
	seen := map[string]bool{}
	duplicate := false
	for _, c := range conds {
		if seen[c.Field] {
			duplicate = true
		}
		seen[c.Field] = true

		switch c.Op {
		case OpEq:
			clauses = append(clauses, bson.E{Key: c.Field, Value: c.Values[0]})
		case OpIn:
			values := c.Values
			if values == nil {
				values = []any{}
			}
			clauses = append(clauses, bson.E{Key: c.Field, Value: bson.M{"$in": bson.A(values)}})
		case OpMissing:
			// {$in: [null, ""]} also matches documents where the field is absent.
			clauses = append(clauses, bson.E{Key: c.Field, Value: bson.M{"$in": bson.A{nil, ""}}})
		case OpExists:
			clauses = append(clauses, bson.E{Key: c.Field, Value: bson.M{"$exists": true, "$ne": nil}})
		default:
			return nil, errors.New("unsupported filter operator")
		}
	}
	if !duplicate {
		return bson.D(clauses), nil
	}
	and := bson.A{}
	for _, clause := range clauses {
		and = append(and, bson.D{clause})
	}
	return bson.D{{Key: "$and", Value: and}}, nil
}

// fromBSON converts driver types into the backend-neutral Document representation.
func fromBSON(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(Document, len(t))
		for k, val := range t {
			out[k] = fromBSON(val)
		}
		return out
	case map[string]any:
		out := make(Document, len(t))
		for k, val := range t {
			out[k] = fromBSON(val)
		}
		return out
	case bson.D:
		out := make(Document, len(t))
		for _, e := range t {
			out[e.Key] = fromBSON(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = fromBSON(val)
		}
		return out
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = fromBSON(val)
		}
		return out
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return t.String()
		}
		return f
	default:
		return v
	}
}

func idString(id any) string {
	switch t := id.(type) {
	case nil:
		return ""
	case primitive.ObjectID:
		return t.Hex()
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
