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

func runStats(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 20*time.Second, "Command timeout")
	course := fs.String("course", "", "Course id (defaults to RF_DEFAULT_COURSE_ID)")

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

	pipeline, err := pool.GetPipelineStats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to compute pipeline stats: %v\n", err)
		return 1
	}

	projectionStats, err := projection.NewService(pool, logger).GetStats(ctx, courseID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to compute projection stats: %v\n", err)
		return 1
	}

	if err := printJSON(map[string]any{
		"pipeline":   pipeline,
		"projection": projectionStats,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode output: %v\n", err)
		return 1
	}
	return 0
}
