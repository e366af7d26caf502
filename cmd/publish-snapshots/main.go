package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"seiyo-exam/internal/config"
	"seiyo-exam/internal/logger"
	"seiyo-exam/internal/publish"
)

func main() {
	cfg, _ := config.Load()

	input := flag.String("input", publish.DefaultInput, "question workbook (.xlsx or .csv)")
	out := flag.String("out", publish.DefaultOutDir, "snapshot output directory")
	allowErrors := flag.Bool("allow-errors", false, "publish valid rows even when some rows fail validation")
	fresh := flag.Bool("fresh", false, "drop manifest entries not produced by this run")
	db := flag.String("db", "", "also record answer keys in this SQLite catalog")
	dryRun := flag.Bool("dry-run", false, "validate and report without writing")
	flag.Parse()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer log.Sync()

	publishedAt := time.Now().UTC()
	summary, err := publish.Run(context.Background(), publish.Options{
		Input:       *input,
		OutDir:      *out,
		AllowErrors: *allowErrors,
		Fresh:       *fresh,
		DBPath:      *db,
		DryRun:      *dryRun,
	}, publishedAt, log)

	if err == nil || summary.Ready > 0 {
		publish.PrintSummary(os.Stdout, summary)
	}
	if err != nil {
		if errors.Is(err, publish.ErrValidationFailed) {
			fmt.Fprintln(os.Stderr, "validation errors found; nothing written (use --allow-errors to publish valid rows)")
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		log.Sync()
		os.Exit(1)
	}
}
