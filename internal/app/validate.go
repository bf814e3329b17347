package app

import (
	"errors"
	"flag"
	"fmt"
	"os"

	batchschema "hanriver.app/readfeed/schema"
)

func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	batch := fs.String("batch", "", "Ingest batch JSON")
	batchFile := fs.String("batch-file", "", "Path to batch JSON file (overrides --batch)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	payload, err := loadJSONInput(*batch, *batchFile, "batch")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid batch: %v\n", err)
		return 2
	}

	parsed, err := batchschema.ValidateIngestBatch(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Batch is invalid: %v\n", err)
		return 1
	}

	fmt.Printf("batch ok: sourceKey=%s sourceType=%s articles=%d\n",
		parsed.SourceKey, parsed.SourceType, len(parsed.Articles))
	return 0
}
