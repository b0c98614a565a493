package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type contextKey int

const loggerKey contextKey = iota

// Field names used by the context helpers.
const (
	FieldEndpoint  = "endpoint"
	FieldKind      = "kind"
	FieldManifest  = "manifest"
	FieldSource    = "source"
	FieldOperation = "operation"
)

// WithLogger stores logger in ctx. A nil logger stores the default.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// Ctx is short for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithFields returns a context whose logger carries fields.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	c := FromContext(ctx).With()
	for k, v := range fields {
		c = addFieldToContext(c, k, v)
	}
	logger := c.Logger()
	return WithLogger(ctx, &logger)
}

// WithField returns a context whose logger carries key=value.
func WithField(ctx context.Context, key string, value any) context.Context {
	logger := addFieldToContext(FromContext(ctx).With(), key, value).Logger()
	return WithLogger(ctx, &logger)
}

func addFieldToContext(c zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return c.Str(key, v)
	case int:
		return c.Int(key, v)
	case int64:
		return c.Int64(key, v)
	case uint:
		return c.Uint(key, v)
	case uint64:
		return c.Uint64(key, v)
	case float64:
		return c.Float64(key, v)
	case bool:
		return c.Bool(key, v)
	case time.Time:
		return c.Time(key, v)
	case []string:
		return c.Strs(key, v)
	case error:
		if key == zerolog.ErrorFieldName || key == "err" {
			return c.Err(v)
		}
		return c.Str(key, v.Error())
	default:
		return c.Interface(key, v)
	}
}

// WithEndpoint tags the logger with an endpoint key.
func WithEndpoint(ctx context.Context, key string) context.Context {
	return WithField(ctx, FieldEndpoint, key)
}

// WithKind tags the logger with a connection kind.
func WithKind(ctx context.Context, kind string) context.Context {
	return WithField(ctx, FieldKind, kind)
}

// WithManifest tags the logger with the manifest file being processed.
func WithManifest(ctx context.Context, path string) context.Context {
	return WithField(ctx, FieldManifest, path)
}

// WithSource tags the logger with where the data came from (file, flags, config).
func WithSource(ctx context.Context, source string) context.Context {
	return WithField(ctx, FieldSource, source)
}

// WithOperation tags the logger with the running operation.
func WithOperation(ctx context.Context, operation string) context.Context {
	return WithField(ctx, FieldOperation, operation)
}

// WithError attaches err to the logger. A nil err leaves ctx unchanged.
func WithError(ctx context.Context, err error) context.Context {
	if err == nil {
		return ctx
	}
	return WithField(ctx, zerolog.ErrorFieldName, err)
}
