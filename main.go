// main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"warframe/datasync/appcontext"
	"warframe/datasync/config"
	"warframe/datasync/runner"
	"warframe/datasync/synthetic"
)

const (
	defaultSampleRows = 25
	defaultSampleDir  = "tmp/sample-json"
)

func main() {
	// Progress output and the summary go to stdout; diagnostics go to stderr
	// so the report stays machine-readable.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if err := run(logger, os.Args[1:]); err != nil {
		logger.Error("Application terminated with an error", "error", fmt.Sprintf("%+v", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, args []string) error {
	if len(args) > 0 && args[0] == "generate-sample-data" {
		genFlagSet := pflag.NewFlagSet("generate-sample-data", pflag.ExitOnError)
		rows := genFlagSet.Int("rows", defaultSampleRows, "Number of records per sample file")
		dir := genFlagSet.String("dir", defaultSampleDir, "Directory to write sample JSON files to")
		genFlagSet.Parse(args[1:])

		logger.Info("Generating sample data", "dir", *dir, "rows", *rows)
		if err := synthetic.GenerateSampleData(*rows, *dir); err != nil {
			return fmt.Errorf("failed to generate sample data: %w", err)
		}
		logger.Info("Sample data generated successfully")
		return nil
	}

	cfg := config.LoadConfig(appcontext.WithLogger(context.Background(), logger), logger)

	ctx, cancel := context.WithTimeout(
		appcontext.WithLogger(context.Background(), logger),
		cfg.Timeout,
	)
	defer cancel()

	flagSet := pflag.NewFlagSet("datasync", pflag.ExitOnError)
	flagSet.StringVar(&cfg.JSONDir, "json-dir", cfg.JSONDir, "Path to the JSON directory")
	flagSet.StringVar(&cfg.MongoURI, "mongo-uri", cfg.MongoURI, "MongoDB connection URI")
	flagSet.StringVar(&cfg.Database, "database", cfg.Database, "MongoDB database name")
	flagSet.BoolVar(&cfg.DryRun, "dry-run", false, "Show what would be done without making changes")
	flagSet.Parse(args)

	if err := runner.NewRunner(cfg, os.Stdout).Run(ctx); err != nil {
		return fmt.Errorf("sync run failed: %w", err)
	}

	return nil
}
