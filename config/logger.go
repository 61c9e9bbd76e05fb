package config

import (
	"io"
	"log/slog"
	"os"
)

// ServiceName is attached to every log record.
const ServiceName = "venuebooking"

// NewLogger returns the process logger. GO_ENV=production selects JSON output,
// anything else text. LOG_LEVEL takes debug, info, warn or error; unknown
// values fall back to info.
func NewLogger() *slog.Logger {
	return newLogger(os.Stdout, os.Getenv("GO_ENV"), os.Getenv("LOG_LEVEL"))
}

func newLogger(w io.Writer, env, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if env == "production" {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("service", ServiceName)
}
