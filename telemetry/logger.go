package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
)

// ConsoleLevel is the minimum level written to the console. Records sent to
// the OpenTelemetry log bridge are not filtered by it.
var ConsoleLevel = new(slog.LevelVar)

var console io.Writer = os.Stderr

// Logger returns a logger that writes every record both to the
// OpenTelemetry log bridge and to the console.
func Logger(name string) *slog.Logger {
	return slog.New(fanoutHandler{
		otelslog.NewHandler(name),
		slog.NewTextHandler(console, &slog.HandlerOptions{Level: ConsoleLevel}).WithAttrs([]slog.Attr{
			slog.String("logger", name),
		}),
	})
}

type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanoutHandler, len(handlers))
	for i, handler := range handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return next
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	next := make(fanoutHandler, len(handlers))
	for i, handler := range handlers {
		next[i] = handler.WithGroup(name)
	}
	return next
}
