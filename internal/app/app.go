package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "validate":
		return runValidate(args[1:])
	case "ingest":
		return runIngest(args[1:])
	case "project":
		return runProject(args[1:])
	case "articles":
		return runArticles(args[1:])
	case "runs":
		return runRuns(args[1:])
	case "stats":
		return runStats(args[1:])
	case "cron":
		return runCron(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "readfeed CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  readfeed <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health    Verify database connectivity")
	fmt.Fprintln(os.Stderr, "  validate  Validate an ingest batch JSON file against the schema")
	fmt.Fprintln(os.Stderr, "  ingest    Ingest a batch of raw articles")
	fmt.Fprintln(os.Stderr, "  project   Project pending articles into reading units")
	fmt.Fprintln(os.Stderr, "  articles  List recent active articles")
	fmt.Fprintln(os.Stderr, "  runs      List recent fetch runs")
	fmt.Fprintln(os.Stderr, "  stats     Show pipeline and projection statistics")
	fmt.Fprintln(os.Stderr, "  cron      Run the projection batcher on a schedule")
	fmt.Fprintln(os.Stderr, "  serve     Start the Echo API server")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"readfeed <command> -h\" for command-specific flags.")
}
