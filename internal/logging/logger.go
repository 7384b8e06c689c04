package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"

	"github.com/dawe014/web-service-integration-assignment/internal/config"
)

// New returns the process logger. Development gets colored, source-annotated
// output; every other environment gets JSON lines.
func New(w io.Writer, cfg config.Config, appName, version string) *slog.Logger {
	if cfg.IsDevelopment() {
		h := tint.NewHandler(w, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.Env,
	)
}
