// Package mongodb owns the MongoDB client lifecycle. The handle is
// opened once at startup, passed explicitly to whatever needs it, and
// closed at shutdown; there is no package-level connection.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Handle bundles a connected client with the application database.
type Handle struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a MongoDB connection and verifies it with a ping.
// Returns an error instead of exiting so the caller can shut down
// gracefully.
func Connect(ctx context.Context, uri, dbName string) (*Handle, error) {
	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(25)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}

	return &Handle{client: client, db: client.Database(dbName)}, nil
}

// Database returns the application database.
func (h *Handle) Database() *mongo.Database {
	return h.db
}

// Collection returns a collection from the application database.
func (h *Handle) Collection(name string) *mongo.Collection {
	return h.db.Collection(name)
}

// Ping verifies the connection is still live.
func (h *Handle) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := h.client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb: ping: %w", err)
	}
	return nil
}

// Close disconnects the client, draining in-flight operations first.
func (h *Handle) Close(ctx context.Context) error {
	if err := h.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongodb: disconnect: %w", err)
	}
	return nil
}
