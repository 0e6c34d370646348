// Package reporting renders run outcomes for people (console summary) and CI
// systems (JUnit XML).
package reporting

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/mdspell/internal/models"
)

// maxTextWidth caps the original and suggested columns.
const maxTextWidth = 40

// WriteSummary prints a table of every issue found followed by the verdict.
func WriteSummary(w io.Writer, outcome *models.RunOutcome) {
	rows := [][]string{{"FILE", "LINE", "CATEGORY", "ORIGINAL", "SUGGESTED"}}

	for _, fo := range outcome.Files {
		for _, is := range fo.Issues {
			rows = append(rows, []string{
				fo.File,
				strconv.Itoa(is.LineNumber),
				string(is.Category),
				cell(is.OriginalText),
				cell(is.SuggestedText),
			})
		}
	}

	if len(rows) > 1 {
		writeTable(w, rows)
		fmt.Fprintln(w) //nolint:errcheck
	}

	for _, fo := range outcome.Files {
		if fo.Status == models.StatusMalformed {
			fmt.Fprintf(w, "⚠️  %s: review could not be parsed (%s)\n", fo.File, fo.Message) //nolint:errcheck
		}
	}

	for _, sf := range outcome.Skipped {
		fmt.Fprintf(w, "⏭️  %s: skipped (%s)\n", sf.Path, sf.Reason) //nolint:errcheck
	}

	switch {
	case outcome.EvalError != "":
		fmt.Fprintf(w, "❌ Could not evaluate %s: %s\n", outcome.LogPath, outcome.EvalError) //nolint:errcheck
	case outcome.ShouldFail:
		blocking := outcome.BlockingFiles()
		fmt.Fprintf(w, "❌ Spelling issues found in %d file(s): %s\n", len(blocking), strings.Join(blocking, ", ")) //nolint:errcheck
	default:
		fmt.Fprintf(w, "✅ No spelling issues found in %d file(s)\n", len(outcome.Files)) //nolint:errcheck
	}
}

func writeTable(w io.Writer, rows [][]string) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	for _, row := range rows {
		var sb strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(padRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		fmt.Fprintln(w, sb.String()) //nolint:errcheck
	}
}

// cell flattens model text onto one line and caps its width.
func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, maxTextWidth, "…")
}

func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
