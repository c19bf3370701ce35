package logging

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Options configures the base logger.
type Options struct {
	JSON    bool
	Debug   bool
	Service string
}

// Setup builds a slog.Logger writing to stderr, tagged with a "service"
// field when one is configured.
func Setup(opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}

	logger := slog.New(handler)
	if opts.Service != "" {
		logger = logger.With("service", opts.Service)
	}
	return logger
}

// WithRandomUID attaches a fresh random correlation id to logger, for
// processes that want one id for their whole lifetime.
func WithRandomUID(logger *slog.Logger) *slog.Logger {
	id := uuid.Must(uuid.NewRandom())
	return logger.With("uid", id.String())
}

// WithConnID attaches a per-connection correlation id, used by the
// transport loop in cmd/signerd so every log line for a connection's
// lifetime can be grepped together.
func WithConnID(logger *slog.Logger) *slog.Logger {
	id := uuid.Must(uuid.NewRandom())
	return logger.With("conn", id.String())
}
