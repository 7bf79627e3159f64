package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo connects to uri, verifies the primary answers and returns the
// named database.
func ConnectMongo(ctx context.Context, uri, database string, logger zerolog.Logger) (*mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	logger.Info().Str("database", database).Msg("Connected to MongoDB")
	return client.Database(database), nil
}

// EnsureIndexes creates the indexes the stores rely on: a unique email index
// and lookup indexes on the owner references.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger zerolog.Logger) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"products": {
			{Keys: bson.D{{Key: "seller", Value: 1}}},
		},
		"orders": {
			{Keys: bson.D{{Key: "client", Value: 1}}},
		},
		"transactions": {
			{Keys: bson.D{{Key: "client", Value: 1}}},
			{Keys: bson.D{{Key: "seller", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo: indexes on %s: %w", coll, err)
		}
	}
	logger.Info().Msg("MongoDB indexes ensured")
	return nil
}
