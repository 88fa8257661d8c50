// Package logging builds the slog loggers used by the command line tools.
package logging

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// Options control logger construction.
type Options struct {
	Debug   bool
	JSON    bool
	UID     bool
	Service string
	Version string
}

// Setup creates a logger writing to w. It does not set the global logger.
func Setup(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	logger := slog.New(handler)
	if opts.Service != "" {
		logger = logger.With("service", opts.Service)
	}
	if opts.Version != "" {
		logger = logger.With("version", opts.Version)
	}
	if opts.UID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}
