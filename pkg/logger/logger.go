package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
)

// callerHandler decorates every record with the file:line of the log call.
type callerHandler struct {
	slog.Handler
}

// trimPathDepth keeps only the last n segments of the given path.
// Example: trimPathDepth("a/b/c/d.go", 3) => "b/c/d.go"
func trimPathDepth(path string, depth int) string {
	parts := strings.Split(path, string(os.PathSeparator))
	if len(parts) <= depth {
		return path
	}
	return strings.Join(parts[len(parts)-depth:], string(os.PathSeparator))
}

func (h *callerHandler) Handle(ctx context.Context, r slog.Record) error {
	caller := "unknown"
	if r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		frame, _ := frames.Next()
		if frame.File != "" {
			caller = fmt.Sprintf("%s:%d", trimPathDepth(frame.File, 3), frame.Line)
		}
	}
	r.AddAttrs(slog.String("caller", caller))
	return h.Handler.Handle(ctx, r)
}

func (h *callerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &callerHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *callerHandler) WithGroup(name string) slog.Handler {
	return &callerHandler{Handler: h.Handler.WithGroup(name)}
}

// ParseLevel maps DEBUG, INFO, WARN and ERROR (any case) to a slog level.
// ok is false for anything else.
func ParseLevel(s string) (level slog.Level, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// New initializes the default logger for the application.
// It uses text format and DEBUG level for development, JSON and INFO for
// production. A known level overrides the mode's default.
func New(production bool, level string) *slog.Logger {
	l := build(os.Stdout, production, level)
	slog.SetDefault(l)
	return l
}

func build(w io.Writer, production bool, level string) *slog.Logger {
	lvl := slog.LevelDebug
	if production {
		lvl = slog.LevelInfo
	}
	if parsed, ok := ParseLevel(level); ok {
		lvl = parsed
	}

	opts := &slog.HandlerOptions{Level: lvl, AddSource: false}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if production {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(&callerHandler{Handler: handler})
}
