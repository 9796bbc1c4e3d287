package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

// Mongo stores records in a MongoDB collection with a unique index on url.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// OpenMongo connects, pings the primary and ensures the url index.
func OpenMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, common.Fatal("connect to %s: %w", redact(uri), err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, common.Fatal("ping %s: %w", redact(uri), err)
	}

	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "url", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("url_unique"),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, common.Fatal("create url index: %w", err)
	}

	return &Mongo{client: client, collection: coll}, nil
}

// Save upserts with $setOnInsert so existing documents are left untouched.
func (m *Mongo) Save(ctx context.Context, records []common.ArticleRecord) (int, error) {
	models := make([]mongo.WriteModel, 0, len(records))
	for _, r := range records {
		if r.URL == "" {
			continue
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "url", Value: r.URL}}).
			SetUpdate(bson.D{{Key: "$setOnInsert", Value: r}}).
			SetUpsert(true))
	}
	if len(models) == 0 {
		return 0, nil
	}

	res, err := m.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	// A concurrent writer may insert the same url between match and insert.
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return 0, fmt.Errorf("bulk upsert: %w", err)
	}
	if res == nil {
		return 0, nil
	}
	return int(res.UpsertedCount), nil
}

// Count returns the number of stored documents
func (m *Mongo) Count(ctx context.Context) (int64, error) {
	n, err := m.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// drop removes the collection
func (m *Mongo) drop(ctx context.Context) error {
	return m.collection.Drop(ctx)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
