package mongodb

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/ganadero/internal/repository"
	"github.com/mamadbah2/ganadero/internal/repository/record"
)

// Gateway implements repository.Gateway on top of MongoDB. Each collection
// maps to a Mongo collection of the same name.
type Gateway struct {
	client *mongo.Client
	dbName string
	logger *zap.Logger
}

// NewGateway connects to MongoDB and verifies the connection.
func NewGateway(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*Gateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Gateway{client: client, dbName: dbName, logger: logger}, nil
}

// Fetch implements repository.Gateway.
func (g *Gateway) Fetch(ctx context.Context, collection repository.Collection, query repository.Query) ([]record.Record, error) {
	schema, err := repository.SchemaFor(collection)
	if err != nil {
		return nil, err
	}
	if err := query.Validate(schema); err != nil {
		return nil, err
	}

	filter, opts := buildFind(schema, query)
	cursor, err := g.client.Database(g.dbName).Collection(string(collection)).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var out []record.Record
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			g.logger.Debug("skip undecodable document", zap.String("collection", string(collection)), zap.Error(err))
			continue
		}
		out = append(out, toRecord(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return out, nil
}

// Close closes the MongoDB connection.
func (g *Gateway) Close(ctx context.Context) error {
	return g.client.Disconnect(ctx)
}

func buildFind(schema repository.Schema, q repository.Query) (bson.D, *options.FindOptions) {
	filter := bson.D{}
	for _, f := range q.Filters {
		key := f.Field
		if key == repository.FieldID {
			key = "_id"
		}
		filter = append(filter, bson.E{Key: key, Value: idOrValue(key, f.Value)})
	}

	if q.Since != nil || q.Until != nil {
		rng := bson.D{}
		if q.Since != nil {
			rng = append(rng, bson.E{Key: "$gte", Value: *q.Since})
		}
		if q.Until != nil {
			rng = append(rng, bson.E{Key: "$lte", Value: *q.Until})
		}
		filter = append(filter, bson.E{Key: schema.DateField, Value: rng})
	}

	opts := options.Find()
	if q.NewestFirst && schema.DateField != "" {
		opts.SetSort(bson.D{{Key: schema.DateField, Value: -1}, {Key: "_id", Value: -1}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	return filter, opts
}

// idOrValue matches both the ObjectID and the plain string form of a valid hex
// id on _id and on foreign keys ending in "_id".
func idOrValue(key, value string) any {
	if !strings.HasSuffix(key, "_id") {
		return value
	}
	if oid, err := primitive.ObjectIDFromHex(value); err == nil {
		return bson.D{{Key: "$in", Value: bson.A{oid, value}}}
	}
	return value
}

func toRecord(doc bson.M) record.Record {
	out := make(record.Record, len(doc))
	for k, v := range doc {
		if k == "_id" {
			k = repository.FieldID
		}
		out[k] = normalize(v)
	}
	return out
}

func normalize(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Decimal128:
		return t.String()
	case int32:
		return int64(t)
	default:
		return v
	}
}
