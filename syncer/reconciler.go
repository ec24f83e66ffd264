package syncer

import (
	"context"
	"fmt"
	"time"

	"warframe/datasync/appcontext"
)

// UpsertResult reports how a batch of upserts landed in the store.
type UpsertResult struct {
	Created   int64
	Changed   int64
	Unchanged int64
}

// SyncLog is one audit entry in the dataSync collection, written after each
// successful write-mode pass.
type SyncLog struct {
	CollectionName  string    `bson:"collection_name"`
	SyncTimestamp   time.Time `bson:"sync_timestamp"`
	RecordsUploaded int64     `bson:"records_uploaded"`
}

// Store defines the persistence operations the reconciler needs. The batch
// upsert reports created/changed/unchanged counts so the reconciler stays
// independent of any one driver's bulk-result shape.
type Store interface {
	EnsureIdentifierIndex(ctx context.Context, collection string) error
	ExistingIdentifiers(ctx context.Context, collection string) ([]string, error)
	ApplyUpserts(ctx context.Context, collection string, records []Record) (UpsertResult, error)
	DeleteIdentifiers(ctx context.Context, collection string, identifiers []string) (int64, error)
	RecordSyncLog(ctx context.Context, entry SyncLog) error
}

// Reconciler makes a collection's contents match a set of keyed records.
type Reconciler struct {
	store Store
}

// NewReconciler creates a new Reconciler backed by the given store.
func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// Sync reconciles collection against records, keyed on uniqueName. Records
// without an identifier are ignored entirely. In write mode it ensures a
// unique sparse index on the identifier, upserts every keyed record in one
// unordered batch ($set merge, so stored fields absent from the new record
// survive), then deletes every stored identifier not present in records.
//
// Dry-run mode reports what would happen without touching the store. Its
// "updated" count is optimistic: every record that already exists counts as
// updated, whether or not its fields would change. Write mode counts only
// actual field changes. The asymmetry is intentional and part of the contract.
func (r *Reconciler) Sync(ctx context.Context, collection string, records []Record, dryRun bool) (*Stats, error) {
	logger := appcontext.LoggerFromContext(ctx)
	stats := &Stats{}

	keyed := make([]Record, 0, len(records))
	target := make(map[string]struct{}, len(records))
	for _, record := range records {
		name := record.UniqueName()
		if name == "" {
			continue
		}
		target[name] = struct{}{}
		keyed = append(keyed, record)
	}

	logger.DebugContext(ctx, "Reconciling collection",
		"collection", collection,
		"records", len(records),
		"keyed", len(keyed),
		"dryRun", dryRun,
	)

	if dryRun {
		existing, err := r.store.ExistingIdentifiers(ctx, collection)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch identifiers from %s: %w", collection, err)
		}

		for _, name := range existing {
			if _, ok := target[name]; ok {
				stats.Updated++
			} else {
				stats.Deleted++
			}
		}
		stats.Inserted = int64(len(target)) - stats.Updated

		return stats, nil
	}

	if err := r.store.EnsureIdentifierIndex(ctx, collection); err != nil {
		return nil, fmt.Errorf("failed to ensure %s index on %s: %w", IdentifierField, collection, err)
	}

	if len(keyed) > 0 {
		result, err := r.store.ApplyUpserts(ctx, collection, keyed)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert into %s: %w", collection, err)
		}
		stats.Inserted = result.Created
		stats.Updated = result.Changed
		stats.Unchanged = result.Unchanged
	}

	existing, err := r.store.ExistingIdentifiers(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch identifiers from %s: %w", collection, err)
	}

	var stale []string
	for _, name := range existing {
		if _, ok := target[name]; !ok {
			stale = append(stale, name)
		}
	}

	if len(stale) > 0 {
		deleted, err := r.store.DeleteIdentifiers(ctx, collection, stale)
		if err != nil {
			return nil, fmt.Errorf("failed to delete stale documents from %s: %w", collection, err)
		}
		stats.Deleted = deleted
	}

	entry := SyncLog{
		CollectionName:  collection,
		SyncTimestamp:   time.Now(),
		RecordsUploaded: int64(len(keyed)),
	}
	// The audit entry is best-effort; a failure here must not discard the
	// stats of an otherwise completed pass.
	if err := r.store.RecordSyncLog(ctx, entry); err != nil {
		logger.WarnContext(ctx, "Failed to record sync log entry", "collection", collection, "error", err)
	}

	return stats, nil
}
