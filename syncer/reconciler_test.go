package syncer_test

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warframe/datasync/syncer"
)

// ---- Fake in-memory store ----

// fakeStore implements syncer.Store with upsert merge semantics matching the
// real repository: fields absent from a new record survive on the stored doc.
type fakeStore struct {
	collections map[string]map[string]syncer.Record
	indexed     map[string]bool
	syncLogs    []syncer.SyncLog
	calls       []string

	failUpserts bool
	failFetch   bool
	failSyncLog bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		collections: make(map[string]map[string]syncer.Record),
		indexed:     make(map[string]bool),
	}
}

func (f *fakeStore) docs(collection string) map[string]syncer.Record {
	if f.collections[collection] == nil {
		f.collections[collection] = make(map[string]syncer.Record)
	}
	return f.collections[collection]
}

// seed stores records directly, bypassing the sync path.
func (f *fakeStore) seed(collection string, records ...syncer.Record) {
	docs := f.docs(collection)
	for _, record := range records {
		docs[record.UniqueName()] = clone(record)
	}
}

// snapshot deep-copies a collection's state for before/after comparison.
func (f *fakeStore) snapshot(collection string) map[string]syncer.Record {
	out := make(map[string]syncer.Record)
	for id, doc := range f.docs(collection) {
		out[id] = clone(doc)
	}
	return out
}

func clone(record syncer.Record) syncer.Record {
	copied := make(syncer.Record, len(record))
	for key, value := range record {
		copied[key] = value
	}
	return copied
}

func (f *fakeStore) EnsureIdentifierIndex(_ context.Context, collection string) error {
	f.calls = append(f.calls, "index")
	f.indexed[collection] = true
	return nil
}

func (f *fakeStore) ExistingIdentifiers(_ context.Context, collection string) ([]string, error) {
	f.calls = append(f.calls, "fetch")
	if f.failFetch {
		return nil, errors.New("fetch failed")
	}

	identifiers := make([]string, 0, len(f.docs(collection)))
	for id := range f.docs(collection) {
		identifiers = append(identifiers, id)
	}
	sort.Strings(identifiers)
	return identifiers, nil
}

func (f *fakeStore) ApplyUpserts(
	_ context.Context,
	collection string,
	records []syncer.Record,
) (syncer.UpsertResult, error) {
	f.calls = append(f.calls, "upsert")
	if f.failUpserts {
		return syncer.UpsertResult{}, errors.New("bulk write failed")
	}

	docs := f.docs(collection)
	var result syncer.UpsertResult
	for _, record := range records {
		id := record.UniqueName()
		existing, ok := docs[id]
		if !ok {
			docs[id] = clone(record)
			result.Created++
			continue
		}

		changed := false
		for key, value := range record {
			if !reflect.DeepEqual(existing[key], value) {
				existing[key] = value
				changed = true
			}
		}
		if changed {
			result.Changed++
		} else {
			result.Unchanged++
		}
	}

	return result, nil
}

func (f *fakeStore) DeleteIdentifiers(_ context.Context, collection string, identifiers []string) (int64, error) {
	f.calls = append(f.calls, "delete")

	docs := f.docs(collection)
	var deleted int64
	for _, id := range identifiers {
		if _, ok := docs[id]; ok {
			delete(docs, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeStore) RecordSyncLog(_ context.Context, entry syncer.SyncLog) error {
	f.calls = append(f.calls, "synclog")
	if f.failSyncLog {
		return errors.New("sync log insert failed")
	}
	f.syncLogs = append(f.syncLogs, entry)
	return nil
}

// ---- Tests ----

func item(name string, fields ...any) syncer.Record {
	record := syncer.Record{"uniqueName": name}
	for i := 0; i+1 < len(fields); i += 2 {
		record[fields[i].(string)] = fields[i+1]
	}
	return record
}

func storedIdentifiers(t *testing.T, store *fakeStore, collection string) []string {
	t.Helper()
	identifiers, err := store.ExistingIdentifiers(context.Background(), collection)
	require.NoError(t, err)
	return identifiers
}

func TestSync_WriteMode_InsertsUpdatesDeletes(t *testing.T) {
	store := newFakeStore()
	store.seed("warframes",
		item("A", "name", "Ash"),
		item("B", "name", "Banshee"),
		item("C", "name", "Chroma"),
	)

	records := []syncer.Record{
		item("B", "name", "Banshee Prime"), // changed
		item("C", "name", "Chroma"),        // unchanged
		item("D", "name", "Dante"),         // new
	}

	stats, err := syncer.NewReconciler(store).Sync(context.Background(), "warframes", records, false)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.Inserted)
	assert.Equal(t, int64(1), stats.Updated)
	assert.Equal(t, int64(1), stats.Deleted)
	assert.Equal(t, int64(1), stats.Unchanged)
	assert.Equal(t, []string{"B", "C", "D"}, storedIdentifiers(t, store, "warframes"))
}

func TestSync_IgnoresRecordsWithoutIdentifier(t *testing.T) {
	store := newFakeStore()

	records := []syncer.Record{
		item("A", "name", "Ash"),
		{"name": "no identifier"},
		{"uniqueName": "", "name": "empty identifier"},
		{"uniqueName": 42, "name": "numeric identifier"},
	}

	stats, err := syncer.NewReconciler(store).Sync(context.Background(), "warframes", records, false)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.Inserted)
	assert.Equal(t, int64(0), stats.Deleted)
	assert.Equal(t, []string{"A"}, storedIdentifiers(t, store, "warframes"))
}

func TestSync_WriteMode_Idempotent(t *testing.T) {
	store := newFakeStore()
	records := []syncer.Record{
		item("A", "name", "Ash"),
		item("B", "name", "Banshee"),
	}
	reconciler := syncer.NewReconciler(store)

	first, err := reconciler.Sync(context.Background(), "warframes", records, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), first.Inserted)

	second, err := reconciler.Sync(context.Background(), "warframes", records, false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.Inserted)
	assert.Equal(t, int64(0), second.Deleted)
	assert.Equal(t, int64(0), second.Updated)
	assert.Equal(t, int64(2), second.Unchanged)
}

func TestSync_WriteMode_MergePreservesMissingFields(t *testing.T) {
	store := newFakeStore()
	store.seed("warframes", item("A", "name", "Ash", "legacy", "keep me"))

	records := []syncer.Record{item("A", "name", "Ash Prime")}

	_, err := syncer.NewReconciler(store).Sync(context.Background(), "warframes", records, false)
	require.NoError(t, err)

	stored := store.docs("warframes")["A"]
	assert.Equal(t, "Ash Prime", stored["name"])
	assert.Equal(t, "keep me", stored["legacy"])
}

func TestSync_WriteMode_EnsuresIndexBeforeUpserts(t *testing.T) {
	store := newFakeStore()

	_, err := syncer.NewReconciler(store).Sync(
		context.Background(), "warframes", []syncer.Record{item("A")}, false)
	require.NoError(t, err)

	require.True(t, store.indexed["warframes"])
	require.GreaterOrEqual(t, len(store.calls), 2)
	assert.Equal(t, "index", store.calls[0])
	assert.Equal(t, "upsert", store.calls[1])
}

func TestSync_WriteMode_RecordsSyncLog(t *testing.T) {
	store := newFakeStore()

	records := []syncer.Record{
		item("A"),
		item("B"),
		{"name": "no identifier"},
	}

	_, err := syncer.NewReconciler(store).Sync(context.Background(), "warframes", records, false)
	require.NoError(t, err)

	require.Len(t, store.syncLogs, 1)
	assert.Equal(t, "warframes", store.syncLogs[0].CollectionName)
	assert.Equal(t, int64(2), store.syncLogs[0].RecordsUploaded)
	assert.False(t, store.syncLogs[0].SyncTimestamp.IsZero())
}

func TestSync_SyncLogFailureDoesNotFailSync(t *testing.T) {
	store := newFakeStore()
	store.failSyncLog = true

	stats, err := syncer.NewReconciler(store).Sync(
		context.Background(), "warframes", []syncer.Record{item("A")}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Inserted)
}

func TestSync_DryRun_ReportsWithoutWriting(t *testing.T) {
	store := newFakeStore()
	store.seed("warframes",
		item("A", "name", "Ash"),
		item("B", "name", "Banshee"),
	)
	before := store.snapshot("warframes")

	records := []syncer.Record{
		item("B", "name", "Banshee Prime"),
		item("D", "name", "Dante"),
	}

	stats, err := syncer.NewReconciler(store).Sync(context.Background(), "warframes", records, true)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.Inserted)
	assert.Equal(t, int64(1), stats.Updated)
	assert.Equal(t, int64(1), stats.Deleted)
	assert.Equal(t, int64(0), stats.Unchanged)

	assert.Equal(t, before, store.snapshot("warframes"))
	assert.False(t, store.indexed["warframes"], "dry run must not create the index")
	assert.Empty(t, store.syncLogs, "dry run must not write a sync log entry")
}

func TestSync_DryRun_UpdatedCountIsOptimistic(t *testing.T) {
	store := newFakeStore()
	store.seed("warframes", item("A", "name", "Ash"))

	// Content identical to what is stored: dry run still reports it as
	// updated, unlike the write path.
	stats, err := syncer.NewReconciler(store).Sync(
		context.Background(), "warframes", []syncer.Record{item("A", "name", "Ash")}, true)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.Updated)
	assert.Equal(t, int64(0), stats.Unchanged)
}

func TestSync_StoreErrorsPropagate(t *testing.T) {
	store := newFakeStore()
	store.failUpserts = true

	_, err := syncer.NewReconciler(store).Sync(
		context.Background(), "warframes", []syncer.Record{item("A")}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bulk write failed")

	store = newFakeStore()
	store.failFetch = true
	_, err = syncer.NewReconciler(store).Sync(context.Background(), "warframes", nil, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch failed")
}
