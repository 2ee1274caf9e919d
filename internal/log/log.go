package log

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/config"
)

// NewSlogLogger creates the process logger for app and installs it as the
// slog default. Every record carries an "app" attribute.
func NewSlogLogger(cfg config.Log, app string) *slog.Logger {
	log := slog.New(newHandler(os.Stdout, cfg)).With(slog.String("app", app))
	slog.SetDefault(log)

	return log
}

func newHandler(w io.Writer, cfg config.Log) slog.Handler {
	var handler slog.Handler

	if cfg.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     cfg.Level,
			AddSource: cfg.AddSource,
		})
	} else {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      cfg.Level,
			AddSource:  cfg.AddSource,
			TimeFormat: time.RFC3339,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Value.Kind() == slog.KindAny {
					if _, ok := a.Value.Any().(error); ok {
						return tint.Attr(9, a)
					}
				}
				return a
			},
		})
	}

	return newEnrichedHandler(handler)
}
