package logging

import (
	"log/slog"
	"time"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for pipeline run identifiers.
	FieldRunID = "run_id"
	// FieldSource is the standardized structured logging key for dataset source identifiers.
	FieldSource = "source"
	// FieldAspect is the standardized structured logging key for aspect-ratio names.
	FieldAspect = "aspect"
	// FieldFormat is the standardized structured logging key for container formats.
	FieldFormat = "format"
	// FieldVariant is the standardized structured logging key for aspect/format variant labels.
	FieldVariant = "variant"
)

type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Args converts attrs to the variadic any form slog methods expect.
func Args(attrs ...Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

// NewNop returns a logger that discards everything. Useful for tests and
// wiring code that cannot fail.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// WithComponent returns a logger tagged with a standardized component
// attribute. If logger is nil, a no-op logger is used as the base.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}
