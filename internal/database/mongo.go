package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"mflix-backend/internal/logging"
)

const (
	UsersCollection    = "users"
	SessionsCollection = "sessions"
)

// Connect opens a client for uri, pings the primary and returns the named
// database. Callers own the client and should Disconnect it via db.Client().
func Connect(ctx context.Context, uri, dbName string, logger *logging.Logger) (*mongo.Database, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Infow("connected to MongoDB", "database", dbName)
	return client.Database(dbName), nil
}
