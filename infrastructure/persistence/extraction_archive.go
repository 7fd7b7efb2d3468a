package persistence

import (
	"context"
	"time"

	"ai-promoter/domain/apperror"
	"ai-promoter/domain/repository"
	"ai-promoter/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ExtractionArchive keeps raw LLM output in MongoDB. A nil client turns Save into a no-op.
type ExtractionArchive struct {
	client     *mongo.Client
	database   string
	collection string
}

func NewExtractionArchive(client *mongo.Client, database, collection string) repository.IExtractionArchive {
	return &ExtractionArchive{client: client, database: database, collection: collection}
}

func (a *ExtractionArchive) Save(ctx context.Context, contentID int64, url, raw string) error {
	if a.client == nil {
		logger.GetLogger().WithField("content_id", contentID).Debug("MongoDB client is nil - skipping extraction archive")
		return nil
	}
	doc := bson.M{
		"content_id": contentID,
		"url":        url,
		"raw":        raw,
		"created_at": time.Now().UTC(),
	}
	if _, err := a.client.Database(a.database).Collection(a.collection).InsertOne(ctx, doc); err != nil {
		return apperror.Wrap(apperror.Persistence, "extraction_archive.save", err)
	}
	return nil
}
