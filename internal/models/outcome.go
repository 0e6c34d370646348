package models

import (
	"time"
)

// Status represents the evaluation status of one file's review.
type Status string

const (
	StatusClean     Status = "clean"
	StatusIssues    Status = "issues"
	StatusMalformed Status = "malformed"
	// StatusSkipped is used for input files that never produced a review.
	StatusSkipped Status = "skipped"
)

// FileOutcome is the evaluated result of a single "Results for" section of the
// results log.
type FileOutcome struct {
	File   string        `json:"file"`
	Status Status        `json:"status"`
	Issues []IssueRecord `json:"issues,omitempty"`

	// Message holds the reviewer's "no issues" message for clean files, or the
	// reason a section was skipped for malformed ones.
	Message string `json:"message,omitempty"`

	// Blocking is true when at least one issue fails the pipeline.
	Blocking bool `json:"blocking"`
}

// SkipReasonEmpty is the SkippedFile reason for files with no lines.
const SkipReasonEmpty = "empty file"

// SkippedFile is an input file that was dropped before its review was stored.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// RunOutcome represents the complete result of a run over a results log
type RunOutcome struct {
	LogPath    string        `json:"log_path"`
	Timestamp  time.Time     `json:"timestamp"`
	Files      []FileOutcome `json:"files"`
	Skipped    []SkippedFile `json:"skipped,omitempty"`
	ShouldFail bool          `json:"should_fail"`

	// EvalError is set when the log could not be evaluated at all, in which
	// case ShouldFail is forced to true.
	EvalError string `json:"eval_error,omitempty"`
}

// IssueCount returns the total number of issues across all files.
func (o *RunOutcome) IssueCount() int {
	n := 0
	for _, f := range o.Files {
		n += len(f.Issues)
	}
	return n
}

// BlockingFiles returns the names of the files whose issues fail the run.
func (o *RunOutcome) BlockingFiles() []string {
	var files []string
	for _, f := range o.Files {
		if f.Blocking {
			files = append(files, f.File)
		}
	}
	return files
}
