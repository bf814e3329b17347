package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"hanriver.app/readfeed/internal/cli"
	"hanriver.app/readfeed/internal/config"
	"hanriver.app/readfeed/internal/db"
	"hanriver.app/readfeed/internal/logging"
	"hanriver.app/readfeed/internal/projection"
)

// runCron drives the projection batcher on a schedule. Each tick is one
// bounded batch; the backlog drains over successive ticks.
func runCron(args []string) int {
	fs := flag.NewFlagSet("cron", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	schedule := fs.String("schedule", "*/10 * * * *", "Cron schedule for projection batches")
	course := fs.String("course", "", "Course id (defaults to RF_DEFAULT_COURSE_ID)")
	limit := fs.Int("limit", 300, "Maximum articles to project per tick (capped at 300)")
	once := fs.Bool("once", false, "Run a single batch immediately and exit")
	batchTimeout := fs.Duration("batch-timeout", 5*time.Minute, "Timeout per projection batch")

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	pool, err := db.NewPool(connectCtx, cfg)
	cancel()
	if err != nil {
		logger.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	svc := projection.NewService(pool, logger)

	runBatch := func() {
		batchCtx, cancel := context.WithTimeout(ctx, *batchTimeout)
		defer cancel()

		result, err := svc.ProjectBatch(batchCtx, courseID, *limit)
		if err != nil {
			logger.Error().Err(err).Msg("scheduled projection failed")
			return
		}
		logger.Info().
			Int("projected", result.Projected).
			Int("skipped", result.Skipped).
			Int("failed", result.Failed).
			Msg("scheduled projection tick complete")
	}

	if *once {
		runBatch()
		return 0
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(*schedule, runBatch); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --schedule: %v\n", err)
		return 2
	}
	scheduler.Start()
	logger.Info().Str("schedule", *schedule).Str("course_id", courseID).Msg("projection scheduler started")

	<-ctx.Done()

	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(*batchTimeout):
		logger.Warn().Msg("scheduler stop timed out")
	}
	logger.Info().Msg("projection scheduler stopped")
	return 0
}
