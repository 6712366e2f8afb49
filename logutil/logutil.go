// Package logutil builds slog loggers and renders bounded lists for debug
// output.
package logutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace is below debug and carries per-item lookup results.
const LevelTrace = slog.LevelDebug - 4

// levelOff is above every level in use.
const levelOff = slog.Level(100)

// ListLimit is how many items List renders before summarising the rest.
const ListLimit = 5

// New creates a text logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: renameTrace,
	}))
}

// NewFile creates a logger appending to path. The caller closes the file.
func NewFile(path string, level slog.Level) (*slog.Logger, *os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	return New(f, level), f, nil
}

// NewDiscard creates a logger that drops everything.
func NewDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: levelOff}))
}

// LevelFromString converts trace, debug, info, warn or error
// (case-insensitive) to a level. Unrecognised strings give info.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether s names a level LevelFromString knows.
func ValidLevel(s string) bool {
	switch strings.ToLower(s) {
	case "trace", "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

func renameTrace(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
			a.Value = slog.StringValue("TRACE")
		}
	}
	return a
}

// List renders at most ListLimit items joined by ", " and appends
// "and N more" when items were left out.
func List[T any](items []T, render func(T) string) string {
	n := min(len(items), ListLimit)
	parts := make([]string, 0, n)
	for _, it := range items[:n] {
		parts = append(parts, render(it))
	}
	msg := strings.Join(parts, ", ")
	if len(items) > ListLimit {
		msg = fmt.Sprintf("%s and %d more", msg, len(items)-ListLimit)
	}
	return msg
}

// Stringers renders items with their String method.
func Stringers[T fmt.Stringer](items []T) string {
	return List(items, func(v T) string { return v.String() })
}
