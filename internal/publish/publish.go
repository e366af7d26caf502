package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"seiyo-exam/internal/exam"
	"seiyo-exam/internal/exam/sqlite"
	"seiyo-exam/internal/logger"
	"seiyo-exam/internal/question"
	"seiyo-exam/internal/snapshot"
	"seiyo-exam/internal/workbook"
)

const (
	DefaultInput  = "data-source/SeiyoQuestions.xlsx"
	DefaultOutDir = "public/snapshots"

	// MaxListedIssues caps each printed issue list.
	MaxListedIssues = 20
)

var ErrValidationFailed = errors.New("validation failed")

type Options struct {
	Input       string
	OutDir      string
	AllowErrors bool
	Fresh       bool
	// DBPath, when set, records the publish and its answer keys in the
	// SQLite catalog used by the exam service.
	DBPath string
	DryRun bool
	// NewSuffix overrides the generated-id suffix source.
	NewSuffix question.SuffixFunc
}

type Summary struct {
	Ready     int
	Published int
	Errors    []question.Issue
	Warns     []question.Issue
	Result    snapshot.Result
	Written   bool
}

// Run reads the workbook, validates every ready row and, unless validation
// blocks it or DryRun is set, writes snapshots stamped with publishedAt.
// The returned Summary is filled as far as the run got, also on error.
func Run(ctx context.Context, opts Options, publishedAt time.Time, log *logger.Logger) (Summary, error) {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Input == "" {
		opts.Input = DefaultInput
	}
	if opts.OutDir == "" {
		opts.OutDir = DefaultOutDir
	}

	tables, err := workbook.ReadFile(opts.Input)
	if err != nil {
		return Summary{}, fmt.Errorf("read %s: %w", opts.Input, err)
	}
	log.Info("workbook loaded", "input", opts.Input, "rows", len(tables.Questions), "subjects", len(tables.Subjects))

	batch := question.Prepare(tables.Questions, opts.NewSuffix)
	rows := batch.Published()
	summary := Summary{
		Ready:     batch.Ready,
		Published: len(rows),
		Errors:    batch.Report.Errors,
		Warns:     batch.Report.Warns,
	}
	log.Info("rows validated", "ready", batch.Ready, "valid", len(rows), "errors", len(summary.Errors), "warnings", len(summary.Warns))

	if len(summary.Errors) > 0 && !opts.AllowErrors {
		return summary, ErrValidationFailed
	}
	if opts.DryRun {
		log.Info("dry run, nothing written")
		return summary, nil
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	writer := &snapshot.Writer{OutDir: opts.OutDir, Fresh: opts.Fresh, Log: log}
	result, err := writer.Write(snapshot.GroupRows(rows), snapshot.BuildSubjects(tables.Subjects), publishedAt)
	if err != nil {
		return summary, err
	}
	summary.Result = result
	summary.Written = true

	if opts.DBPath != "" {
		if err := recordCatalog(ctx, opts, result, publishedAt); err != nil {
			return summary, fmt.Errorf("record catalog: %w", err)
		}
		log.Info("catalog updated", "db", opts.DBPath, "questions", summary.Published)
	}
	return summary, nil
}

func recordCatalog(ctx context.Context, opts Options, result snapshot.Result, publishedAt time.Time) error {
	store, err := sqlite.NewSQLiteStore(opts.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	items := make([]question.SnapshotItem, 0)
	for _, published := range result.Published {
		items = append(items, published.Items...)
	}
	return store.RecordPublish(ctx, exam.PublishRun{
		Version:       snapshot.Version(publishedAt),
		GeneratedAt:   publishedAt.UTC(),
		QuestionCount: len(items),
		Fresh:         opts.Fresh,
	}, items)
}

// FormatIssues prints a titled issue list capped at limit entries, followed
// by "... +N more" when entries were left out. Nothing is printed for an
// empty list.
func FormatIssues(out io.Writer, title string, issues []question.Issue, limit int) {
	if len(issues) == 0 {
		return
	}
	if limit <= 0 {
		limit = MaxListedIssues
	}

	fmt.Fprintf(out, "%s (%d):\n", title, len(issues))
	for idx, issue := range issues {
		if idx == limit {
			fmt.Fprintf(out, "  ... +%d more\n", len(issues)-limit)
			break
		}
		fmt.Fprintf(out, "  - %s\n", issue)
	}
}

// PrintSummary writes the human report of a run.
func PrintSummary(out io.Writer, summary Summary) {
	FormatIssues(out, "Errors", summary.Errors, MaxListedIssues)
	FormatIssues(out, "Warnings", summary.Warns, MaxListedIssues)

	fmt.Fprintf(out, "Ready rows: %d, publishable: %d\n", summary.Ready, summary.Published)
	if !summary.Written {
		return
	}
	for _, published := range summary.Result.Published {
		fmt.Fprintf(out, "Wrote %s (%d questions)\n", published.Entry.Path, len(published.Items))
	}
	fmt.Fprintf(out, "Manifest version %d with %d files\n", summary.Result.Manifest.Version, len(summary.Result.Manifest.Files))
}
