package storage

import (
	"context"
	"fmt"

	"warframe/datasync/syncer"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const syncLogCollection = "dataSync"

// SyncRepository implements the syncer.Store interface for MongoDB.
type SyncRepository struct {
	provider CollectionProvider
}

// NewSyncRepository creates a new SyncRepository.
func NewSyncRepository(provider CollectionProvider) *SyncRepository {
	return &SyncRepository{
		provider: provider,
	}
}

// EnsureIdentifierIndex creates the unique index on the identifier field.
// The index is sparse so documents without the field stay out of it.
func (r *SyncRepository) EnsureIdentifierIndex(ctx context.Context, collection string) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: syncer.IdentifierField, Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	}

	if _, err := r.provider.Collection(collection).CreateIndex(ctx, model); err != nil {
		return fmt.Errorf("failed to create %s index on %s: %w", syncer.IdentifierField, collection, err)
	}

	return nil
}

type identifierDoc struct {
	UniqueName string `bson:"uniqueName"`
}

// ExistingIdentifiers fetches every identifier currently stored in the
// collection, using a projection so only the identifier field travels.
func (r *SyncRepository) ExistingIdentifiers(ctx context.Context, collection string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{syncer.IdentifierField: 1})

	cursor, err := r.provider.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query identifiers from %s: %w", collection, err)
	}

	var docs []identifierDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode identifiers from %s: %w", collection, err)
	}

	identifiers := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.UniqueName != "" {
			identifiers = append(identifiers, doc.UniqueName)
		}
	}

	return identifiers, nil
}

// ApplyUpserts issues one unordered batch of $set upserts keyed on the
// identifier field and maps the bulk result to created/changed/unchanged.
func (r *SyncRepository) ApplyUpserts(
	ctx context.Context,
	collection string,
	records []syncer.Record,
) (syncer.UpsertResult, error) {
	if len(records) == 0 {
		return syncer.UpsertResult{}, nil // Nothing to upsert
	}

	models := make([]mongo.WriteModel, 0, len(records))
	for _, record := range records {
		filter := bson.M{syncer.IdentifierField: record.UniqueName()}
		update := bson.M{"$set": record}
		models = append(models, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update).SetUpsert(true))
	}

	result, err := r.provider.Collection(collection).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return syncer.UpsertResult{}, fmt.Errorf("failed to perform bulk upsert for collection %s: %w", collection, err)
	}

	return syncer.UpsertResult{
		Created:   result.UpsertedCount,
		Changed:   result.ModifiedCount,
		Unchanged: result.MatchedCount - result.ModifiedCount,
	}, nil
}

// DeleteIdentifiers removes every document whose identifier is in the given
// set, in one $in delete.
func (r *SyncRepository) DeleteIdentifiers(
	ctx context.Context,
	collection string,
	identifiers []string,
) (int64, error) {
	if len(identifiers) == 0 {
		return 0, nil
	}

	filter := bson.M{syncer.IdentifierField: bson.M{"$in": identifiers}}

	result, err := r.provider.Collection(collection).DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale documents from %s: %w", collection, err)
	}

	return result.DeletedCount, nil
}

// RecordSyncLog appends an audit entry to the dataSync collection.
func (r *SyncRepository) RecordSyncLog(ctx context.Context, entry syncer.SyncLog) error {
	if _, err := r.provider.Collection(syncLogCollection).InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert into %s collection: %w", syncLogCollection, err)
	}

	return nil
}
