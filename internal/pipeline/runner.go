// Package pipeline drives the read, number, review, store and evaluate steps
// over a list of input files.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spboyer/mdspell/internal/evaluate"
	"github.com/spboyer/mdspell/internal/lines"
	"github.com/spboyer/mdspell/internal/models"
	"github.com/spboyer/mdspell/internal/results"
	"github.com/spboyer/mdspell/internal/review"
)

// ErrNoInputFiles is returned by [Runner.Run] when it is given no paths.
var ErrNoInputFiles = errors.New("no input files")

// Options configures a [Runner].
type Options struct {
	// Fresh removes the results log before the first file is reviewed.
	Fresh bool

	// Progress, if set, is called before each review request. The returned
	// func is called once the request finishes.
	Progress func(file string) (done func())
}

// Runner reviews files one at a time and evaluates the resulting log.
type Runner struct {
	reviewer review.Reviewer
	store    *results.Store
	opts     Options
}

// NewRunner creates a runner. The caller owns reviewer and closes it.
func NewRunner(reviewer review.Reviewer, store *results.Store, opts Options) *Runner {
	return &Runner{
		reviewer: reviewer,
		store:    store,
		opts:     opts,
	}
}

// Run processes files in order. A file that fails at any stage is logged and
// recorded in the outcome's Skipped list; the remaining files still run.
func (r *Runner) Run(ctx context.Context, files []string) (*models.RunOutcome, error) {
	if len(files) == 0 {
		return nil, ErrNoInputFiles
	}

	if r.opts.Fresh {
		if err := r.store.Reset(); err != nil {
			return nil, err
		}
	}

	var skipped []models.SkippedFile

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		reason, err := r.processFile(ctx, file)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			skipped = append(skipped, models.SkippedFile{Path: file, Reason: err.Error()})
			continue
		}

		if reason != "" {
			skipped = append(skipped, models.SkippedFile{Path: file, Reason: reason})
		}
	}

	outcome := evaluate.FileOrFailSafe(r.store.Path())
	outcome.Skipped = skipped
	return outcome, nil
}

// processFile returns a non-empty reason when the file was skipped on purpose.
func (r *Runner) processFile(ctx context.Context, file string) (string, error) {
	contents, err := lines.Read(file)
	if err != nil {
		if errors.Is(err, lines.ErrNotExist) {
			slog.Warn("Skipping missing file", "file", file)
		} else {
			slog.Error("Skipping unreadable file", "file", file, "error", err)
		}
		return "", err
	}

	if len(contents) == 0 {
		slog.Info("Skipping empty file", "file", file)
		return models.SkipReasonEmpty, nil
	}

	req := &review.Request{
		FileName: file,
		Lines:    lines.Number(contents),
	}

	slog.Info("Reviewing file", "file", file, "lines", len(req.Lines))

	var done func()
	if r.opts.Progress != nil {
		done = r.opts.Progress(file)
	}

	start := time.Now()
	resp, err := r.reviewer.Review(ctx, req)

	if done != nil {
		done()
	}

	if err != nil {
		slog.ErrorContext(ctx, "Review failed", "file", file, "error", err)
		return "", fmt.Errorf("review failed: %w", err)
	}

	slog.Debug("Review complete", "file", file, "durationMs", time.Since(start).Milliseconds())

	if err := r.store.Append(file, resp); err != nil {
		slog.Error("Unable to store review", "file", file, "error", err)
		return "", fmt.Errorf("storing review: %w", err)
	}

	return "", nil
}
