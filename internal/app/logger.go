package app

import (
	"io"
	"log/slog"
)

// newLogger builds the application logger from the validated config. It
// does not touch the global logger, so several apps can run side by side
// in tests. Unknown levels fall back to warn, the CLI default.
func newLogger(cfg *Config, logW io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cfg.LogFormat {
	case "json":
		handler = slog.NewJSONHandler(logW, opts)
	default:
		handler = slog.NewTextHandler(logW, opts)
	}

	logger := slog.New(handler)
	if cfg.CI {
		logger = logger.With("ci", true)
	}
	return logger
}
