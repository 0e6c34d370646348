// Package spinner shows progress on a terminal while a review is in flight.
package spinner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const interval = 80 * time.Millisecond

// Enabled reports whether f is a terminal.
func Enabled(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// Start displays an animated spinner with the given message on w.
// Call the returned function to stop the spinner and clear the line.
func Start(w io.Writer, message string) (stop func()) {
	// frame, space, message
	width := 2 + runewidth.StringWidth(message)

	done := make(chan struct{})
	cleared := make(chan struct{})
	var stopOnce sync.Once

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], message) //nolint:errcheck

			select {
			case <-done:
				fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", width)) //nolint:errcheck
				close(cleared)
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		stopOnce.Do(func() {
			close(done)
		})
		<-cleared
	}
}
