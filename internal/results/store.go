// Package results persists raw review responses in the aggregate results log
// and splits the log back into per-file sections.
package results

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

const headerPrefix = "Results for "

// Store appends review responses to a single results log.
type Store struct {
	path string
}

// NewStore returns a store writing to path. The file is created on first
// append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the results log.
func (s *Store) Path() string {
	return s.path
}

// Append adds a labeled section for fileName to the log. The log is opened in
// append mode and closed before returning; existing content is never
// rewritten.
func (s *Store) Append(fileName, response string) (err error) {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("opening results log %s: %w", s.path, err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing results log %s: %w", s.path, closeErr)
		}
	}()

	if _, err := f.WriteString(FormatSection(fileName, response)); err != nil {
		return fmt.Errorf("writing results for %s: %w", fileName, err)
	}

	slog.Debug("Stored review", "file", fileName, "log", s.path, "bytes", len(response))
	return nil
}

// Reset removes a log left behind by a previous run. A missing log is not an
// error.
func (s *Store) Reset() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing stale results log %s: %w", s.path, err)
	}

	return nil
}

// FormatSection renders one file's section of the results log.
func FormatSection(fileName, response string) string {
	return headerPrefix + fileName + ":\n" + response + "\n\n"
}

// Section is one file's portion of the results log.
type Section struct {
	File string
	Body string
}

var headerRE = regexp.MustCompile(`(?m)^Results for (.+):\r?$`)

// Split breaks a results log into sections. A section starts at a header line
// and runs until the next header line or the end of the log. Text before the
// first header is ignored.
//
// Headers are only recognized at the start of a line, but a reviewer reply that
// itself contains such a line will still be split in two.
func Split(log string) []Section {
	matches := headerRE.FindAllStringSubmatchIndex(log, -1)
	sections := make([]Section, 0, len(matches))

	for i, m := range matches {
		bodyStart := m[1]
		bodyEnd := len(log)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}

		sections = append(sections, Section{
			File: log[m[2]:m[3]],
			Body: strings.Trim(log[bodyStart:bodyEnd], "\r\n"),
		})
	}

	return sections
}
