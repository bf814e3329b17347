package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"hanriver.app/readfeed/internal/cli"
	"hanriver.app/readfeed/internal/config"
	"hanriver.app/readfeed/internal/db"
	"hanriver.app/readfeed/internal/ingest"
	"hanriver.app/readfeed/internal/logging"
	batchschema "hanriver.app/readfeed/schema"
)

func runIngest(args []string) int {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 60*time.Second, "Command timeout")
	batch := fs.String("batch", "", "Ingest batch JSON")
	batchFile := fs.String("batch-file", "", "Path to batch JSON file (overrides --batch)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	payload, err := loadJSONInput(*batch, *batchFile, "batch")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid batch: %v\n", err)
		return 2
	}

	parsed, err := batchschema.ValidateIngestBatch(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid batch: %v\n", err)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	svc := ingest.NewService(pool, cfg, logger)
	result, err := svc.IngestBatch(ctx, parsed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
		return 1
	}

	fmt.Printf("fetched=%d inserted=%d updated=%d deduped=%d failed=%d\n",
		result.Fetched, result.Inserted, result.Updated, result.Deduped, result.Failed)
	for _, sample := range result.Errors {
		fmt.Printf("error: %s\n", sample)
	}
	return 0
}
