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
	"hanriver.app/readfeed/internal/logging"
	"hanriver.app/readfeed/internal/projection"
)

func runProject(args []string) int {
	fs := flag.NewFlagSet("project", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")
	course := fs.String("course", "", "Course id (defaults to RF_DEFAULT_COURSE_ID)")
	limit := fs.Int("limit", 300, "Maximum articles to project (capped at 300)")

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

	courseID := *course
	if courseID == "" {
		courseID = cfg.DefaultCourseID
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

	svc := projection.NewService(pool, logger)
	result, err := svc.ProjectBatch(ctx, courseID, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Projection failed: %v\n", err)
		return 1
	}

	fmt.Printf("scanned=%d projected=%d skipped=%d failed=%d\n",
		result.Scanned, result.Projected, result.Skipped, result.Failed)
	for _, sample := range result.Errors {
		fmt.Printf("error: %s\n", sample)
	}
	return 0
}
