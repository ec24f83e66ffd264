package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ---- Abstractions for Testability ----

// DataStore defines the interface for collection-level database operations.
type DataStore interface {
	BulkWrite(
		ctx context.Context,
		models []mongo.WriteModel,
		opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)
	Find(
		ctx context.Context,
		filter interface{},
		opts ...*options.FindOptions) (*mongo.Cursor, error)
	DeleteMany(
		ctx context.Context,
		filter interface{},
		opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	InsertOne(
		ctx context.Context,
		document interface{},
		opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	CreateIndex(ctx context.Context, model mongo.IndexModel) (string, error)
}

// CollectionProvider defines the interface for obtaining a collection.
type CollectionProvider interface {
	Collection(name string) DataStore
}

// MongoCollection adapts *mongo.Collection to DataStore.
type MongoCollection struct {
	*mongo.Collection
}

// BulkWrite performs a bulk write operation.
func (c *MongoCollection) BulkWrite(
	ctx context.Context,
	models []mongo.WriteModel,
	opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	result, err := c.Collection.BulkWrite(ctx, models, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to perform BulkWrite: %w", err)
	}

	return result, nil
}

// Find executes a find query.
func (c *MongoCollection) Find(
	ctx context.Context,
	filter interface{},
	opts ...*options.FindOptions) (*mongo.Cursor, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to perform Find: %w", err)
	}

	return cursor, nil
}

// DeleteMany deletes all documents matching the filter.
func (c *MongoCollection) DeleteMany(
	ctx context.Context,
	filter interface{},
	opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	result, err := c.Collection.DeleteMany(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to perform DeleteMany: %w", err)
	}

	return result, nil
}

// InsertOne inserts a single document.
func (c *MongoCollection) InsertOne(
	ctx context.Context,
	document interface{},
	opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	result, err := c.Collection.InsertOne(ctx, document, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to perform InsertOne: %w", err)
	}

	return result, nil
}

// CreateIndex creates an index on the collection. Creating an index that
// already exists with the same definition is a no-op on the server.
func (c *MongoCollection) CreateIndex(ctx context.Context, model mongo.IndexModel) (string, error) {
	name, err := c.Collection.Indexes().CreateOne(ctx, model)
	if err != nil {
		return "", fmt.Errorf("failed to perform CreateOne index: %w", err)
	}

	return name, nil
}

// MongoProvider adapts *mongo.Client to CollectionProvider for one database.
type MongoProvider struct {
	client   *mongo.Client
	database string
}

// NewMongoProvider creates a new MongoProvider.
func NewMongoProvider(client *mongo.Client, database string) *MongoProvider {
	return &MongoProvider{client: client, database: database}
}

// Collection returns a DataStore for the given collection name.
func (p *MongoProvider) Collection(name string) DataStore {
	return &MongoCollection{p.client.Database(p.database).Collection(name)}
}
