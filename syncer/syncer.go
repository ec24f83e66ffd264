package syncer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"warframe/datasync/appcontext"
)

// SkipFiles lists aggregate/translation files that are never synced as
// standalone collections.
var SkipFiles = map[string]struct{}{
	"All.json":  {},
	"i18n.json": {},
}

// Syncer drives the per-file load/reconcile loop over a JSON directory.
type Syncer struct {
	reconciler *Reconciler
	out        io.Writer
}

// New creates a Syncer writing progress output to out.
func New(store Store, out io.Writer) *Syncer {
	return &Syncer{
		reconciler: NewReconciler(store),
		out:        out,
	}
}

// SyncAll processes every *.json file directly inside jsonDir in filename
// order, skipping SkipFiles, and returns per-collection stats. A file's
// failure is recorded in its stats entry and never aborts the run; only an
// unreadable directory is fatal.
func (s *Syncer) SyncAll(ctx context.Context, jsonDir string, dryRun bool) (map[string]*Stats, error) {
	logger := appcontext.LoggerFromContext(ctx)

	entries, err := os.ReadDir(jsonDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", jsonDir, err)
	}

	// os.ReadDir returns entries sorted by filename, which fixes the
	// processing order across runs.
	allStats := make(map[string]*Stats)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if _, skip := SkipFiles[entry.Name()]; skip {
			fmt.Fprintf(s.out, "Skipping %s\n", entry.Name())
			continue
		}

		collection := CollectionName(entry.Name())
		fmt.Fprintf(s.out, "Processing %s -> %s... ", entry.Name(), collection)

		stats, err := s.syncFile(ctx, filepath.Join(jsonDir, entry.Name()), collection, dryRun)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to sync file", "file", entry.Name(), "error", err)
			fmt.Fprintf(s.out, "ERROR: %v\n", err)
			allStats[collection] = &Stats{Err: err.Error()}
			continue
		}

		fmt.Fprintf(s.out, "inserted=%d, updated=%d, deleted=%d, unchanged=%d\n",
			stats.Inserted, stats.Updated, stats.Deleted, stats.Unchanged)
		allStats[collection] = stats
	}

	return allStats, nil
}

// syncFile loads one JSON file and reconciles its target collection.
func (s *Syncer) syncFile(ctx context.Context, path, collection string, dryRun bool) (*Stats, error) {
	records, err := Load(path)
	if err != nil {
		return nil, err
	}

	return s.reconciler.Sync(ctx, collection, records, dryRun)
}
