package app

import (
	"io"
	"log/slog"
)

// logLevels maps the accepted log level names. Names outside this table
// fall back to info.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the logger for a single run, writing to outW. Each App
// owns its own instance; the process-wide slog default is never touched.
func newLogger(level, format string, outW io.Writer) *slog.Logger {
	lvl, ok := logLevels[level]
	if !ok {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
