package services

import "context"

type contextKey string

const (
	sourceKey    contextKey = "source"
	unitKey      contextKey = "unit"
	requestIDKey contextKey = "request_id"
)

// WithSource annotates context with the batch source identifier (file name or
// sheet row reference).
func WithSource(ctx context.Context, source string) context.Context {
	if source == "" {
		return ctx
	}
	return context.WithValue(ctx, sourceKey, source)
}

// SourceFromContext returns the batch source identifier if present.
func SourceFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sourceKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithUnit annotates context with the 1-based unit index being recognized.
func WithUnit(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, unitKey, index)
}

// UnitFromContext extracts the unit index if present.
func UnitFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(unitKey).(int); ok {
		return v, true
	}
	return 0, false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
