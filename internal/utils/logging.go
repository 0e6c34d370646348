package utils

import (
	"context"
	"io"
	"log/slog"
	"strings"

	copilot "github.com/github/copilot-sdk/go"
)

// LevelCritical sits above [slog.LevelError] for failures that end the run.
const LevelCritical = slog.LevelError + 4

// DefaultLogLevel is used when LOG_LEVEL is unset or unrecognized.
const DefaultLogLevel = slog.LevelError

// ParseLogLevel maps a LOG_LEVEL value (DEBUG, INFO, WARNING, ERROR,
// CRITICAL; case-insensitive) to a slog level. The boolean is false when the
// value was not recognized and [DefaultLogLevel] was returned instead.
func ParseLogLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARNING", "WARN":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	case "CRITICAL":
		return LevelCritical, true
	default:
		return DefaultLogLevel, false
	}
}

// ConfigureLogging installs a text handler writing to w as the default slog
// logger.
func ConfigureLogging(w io.Writer, level slog.Level) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevel,
	})

	slog.SetDefault(slog.New(handler))
}

func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) > 0 {
		return a
	}

	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}

	switch {
	case level >= LevelCritical:
		a.Value = slog.StringValue("CRITICAL")
	case level == slog.LevelWarn:
		a.Value = slog.StringValue("WARNING")
	}

	return a
}

func SessionToSlog(event copilot.SessionEvent) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []any{
		"type", event.Type,
	}

	attrs = addIf(attrs, "content", event.Data.Content)
	attrs = addIf(attrs, "deltaContent", event.Data.DeltaContent)
	attrs = addIf(attrs, "reasoningText", event.Data.ReasoningText)

	slog.Debug("Event received", attrs...)
}

func addIf[T any](attrs []any, name string, v *T) []any {
	if v != nil {
		attrs = append(attrs, name)
		attrs = append(attrs, *v)
	}

	return attrs
}
