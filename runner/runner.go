// Package runner wires configuration, the MongoDB connection, and the syncer
// together for one sync run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"warframe/datasync/appcontext"
	"warframe/datasync/config"
	"warframe/datasync/storage"
	"warframe/datasync/syncer"
)

// ErrJSONDirNotFound signals that the configured JSON directory is missing.
// This is the only per-run condition that exits nonzero before any file is
// processed.
var ErrJSONDirNotFound = errors.New("JSON directory not found")

// Runner holds everything a single sync run needs.
type Runner struct {
	Config *config.Config
	Out    io.Writer
}

// NewRunner creates a new Runner writing its report to out.
func NewRunner(cfg *config.Config, out io.Writer) *Runner {
	return &Runner{
		Config: cfg,
		Out:    out,
	}
}

// Run executes one full sync: directory check, MongoDB connection, per-file
// reconciliation, and the final summary. Per-collection failures are reported
// in the summary and do not cause an error return.
func (r *Runner) Run(ctx context.Context) error {
	logger := appcontext.LoggerFromContext(ctx)
	logger.DebugContext(ctx, "Starting JSON sync run")

	if _, err := os.Stat(r.Config.JSONDir); err != nil {
		logger.ErrorContext(
			ctx,
			"The JSON directory does not exist. Please create it and place your JSON files inside.",
			"dir", r.Config.JSONDir,
			"error", err,
		)
		return fmt.Errorf("%w: %s", ErrJSONDirNotFound, r.Config.JSONDir)
	}

	fmt.Fprintf(r.Out, "JSON directory: %s\n", r.Config.JSONDir)
	fmt.Fprintf(r.Out, "MongoDB URI: %s\n", r.Config.MongoURI)
	fmt.Fprintf(r.Out, "Database: %s\n", r.Config.Database)
	if r.Config.DryRun {
		fmt.Fprintln(r.Out, "DRY RUN MODE - No changes will be made")
	}
	fmt.Fprintln(r.Out)

	client, err := storage.ConnectToMongoDB(ctx, r.Config.MongoURI)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to MongoDB", "error", err)
		return fmt.Errorf("connection to MongoDB failed: %w", err)
	}

	defer func() {
		if deferErr := client.Disconnect(ctx); deferErr != nil {
			logger.ErrorContext(ctx, "Error disconnecting from MongoDB", "error", deferErr)
		}
	}()

	logger.InfoContext(ctx, "Successfully connected to MongoDB.")

	repo := storage.NewSyncRepository(storage.NewMongoProvider(client, r.Config.Database))

	allStats, err := syncer.New(repo, r.Out).SyncAll(ctx, r.Config.JSONDir, r.Config.DryRun)
	if err != nil {
		logger.ErrorContext(ctx, "Error syncing JSON files", "error", err)
		return fmt.Errorf("sync of JSON files failed: %w", err)
	}

	syncer.Summarize(allStats).Print(r.Out)
	logger.InfoContext(ctx, "Sync run completed.")

	return nil
}
