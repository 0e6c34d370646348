// Package lines loads input files as ordered lines and renders them with
// 1-based line numbers for the review prompt.
package lines

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

var (
	// ErrNotExist is returned by [Read] when the input file is missing.
	ErrNotExist = errors.New("file does not exist")

	// ErrUnreadable is returned by [Read] for every other I/O failure.
	ErrUnreadable = errors.New("file is unreadable")
)

// Read returns the lines of the file at path, in order, with line
// terminators removed. A trailing newline does not produce an extra empty
// line, so an empty file has zero lines.
func Read(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, classify(path, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("reading %q: %w: is a directory", path, ErrUnreadable)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, classify(path, err)
	}

	return Split(string(data)), nil
}

// Split breaks text into lines, accepting both "\n" and "\r\n" endings.
func Split(text string) []string {
	if text == "" {
		return nil
	}

	text = strings.TrimSuffix(text, "\n")
	parts := strings.Split(text, "\n")

	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\r")
	}

	return parts
}

// Number prefixes each line with its 1-based position and trims surrounding
// whitespace from the text: "3: some text".
func Number(lines []string) []string {
	numbered := make([]string, len(lines))

	for i, line := range lines {
		numbered[i] = fmt.Sprintf("%d: %s", i+1, strings.TrimSpace(line))
	}

	return numbered
}

func classify(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %q: %w", path, ErrNotExist)
	}

	return fmt.Errorf("reading %q: %w: %w", path, ErrUnreadable, err)
}
