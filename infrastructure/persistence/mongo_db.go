package persistence

import (
	"context"
	"time"

	"ai-promoter/infrastructure/configuration"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NewMongoDb connects to the extraction archive. An empty URI yields a nil client.
func NewMongoDb(cfg configuration.Mongo) (*mongo.Client, error) {
	if cfg.URI == "" {
		return nil, nil
	}
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI).SetConnectTimeout(10 * time.Second))
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
