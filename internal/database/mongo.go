package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DialMongo returns a Dialer for MongoDB. Server selection is bounded by
// timeout and the primary is pinged before the client is handed out, so an
// unreachable deployment fails the attempt instead of queueing commands.
func DialMongo(timeout time.Duration) Dialer[*mongo.Client] {
	return func(ctx context.Context, uri string) (*mongo.Client, error) {
		opts := options.Client().
			ApplyURI(uri).
			SetServerSelectionTimeout(timeout).
			SetConnectTimeout(timeout).
			SetAppName("devevents")

		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ping mongo: %w", err)
		}
		return client, nil
	}
}

// CloseMongo disconnects the client.
func CloseMongo(ctx context.Context, client *mongo.Client) error {
	return client.Disconnect(ctx)
}
