package docdb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"
)

type mongoBackend struct {
	client *mongo.Client
	db     *mongo.Database
}

func openMongo(ctx context.Context, uri, databaseName string) (*mongoBackend, error) {
	if databaseName == "" {
		cs, err := connstring.ParseAndValidate(uri)
		if err != nil {
			return nil, fmt.Errorf("docdb: parsing connection string: %w", err)
		}
		databaseName = cs.Database
	}
	if databaseName == "" {
		databaseName = defaultDatabaseName
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("docdb: connecting to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("docdb: pinging mongodb: %w", err)
	}

	return &mongoBackend{client: client, db: client.Database(databaseName)}, nil
}

func (b *mongoBackend) kind() string { return "mongodb" }

func (b *mongoBackend) insert(ctx context.Context, collection string, id bson.ObjectID, doc bson.Raw) error {
	if _, err := b.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s in %s", ErrDuplicateKey, id.Hex(), collection)
		}
		return err
	}

	return nil
}

func (b *mongoBackend) replace(ctx context.Context, collection string, id bson.ObjectID, doc bson.Raw) (bool, error) {
	result, err := b.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return false, err
	}

	return result.MatchedCount > 0, nil
}

func (b *mongoBackend) remove(ctx context.Context, collection string, id bson.ObjectID) (bool, error) {
	result, err := b.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}

	return result.DeletedCount > 0, nil
}

func (b *mongoBackend) removeMany(ctx context.Context, collection string, filter Filter) (int64, error) {
	result, err := b.db.Collection(collection).DeleteMany(ctx, render(filter))
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}

func (b *mongoBackend) find(ctx context.Context, collection string, filter Filter, limit int64) ([]bson.Raw, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := b.db.Collection(collection).Find(ctx, render(filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.Raw
	for cursor.Next(ctx) {
		doc := make(bson.Raw, len(cursor.Current))
		copy(doc, cursor.Current)
		docs = append(docs, doc)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

func (b *mongoBackend) count(ctx context.Context, collection string, filter Filter) (int64, error) {
	return b.db.Collection(collection).CountDocuments(ctx, render(filter))
}

func (b *mongoBackend) ensureIndex(ctx context.Context, collection string, fields []string) error {
	if len(fields) == 0 {
		return nil
	}

	keys := make(bson.D, 0, len(fields))
	for _, field := range fields {
		keys = append(keys, bson.E{Key: field, Value: 1})
	}

	_, err := b.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys})
	return err
}

func (b *mongoBackend) close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

func render(filter Filter) bson.D {
	if filter == nil {
		return bson.D{}
	}

	return filter.Document()
}
