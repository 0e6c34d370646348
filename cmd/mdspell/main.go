package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0 // No blocking issues
	ExitIssuesFound = 1 // Spelling issues found, or the log could not be evaluated
	ExitError       = 1 // Configuration or runtime error
)

// IssuesFoundError indicates that the files were reviewed, but the results
// log holds at least one blocking issue (or could not be evaluated at all).
type IssuesFoundError struct {
	Files []string

	// EvalError is set when the verdict comes from a log that could not be
	// read.
	EvalError string
}

func (e *IssuesFoundError) Error() string {
	if e.EvalError != "" {
		return "results log could not be evaluated: " + e.EvalError
	}
	return fmt.Sprintf("spelling issues found in %d file(s): %s", len(e.Files), strings.Join(e.Files, ", "))
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var issuesErr *IssuesFoundError
	if errors.As(err, &issuesErr) {
		return ExitIssuesFound
	}

	return ExitError
}

func main() {
	// .env never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: ignoring .env:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := execute(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	os.Exit(exitCode(err))
}
