package school

import (
	"context"
	"strings"
)

type requestContextKey string

const (
	ctxKeyRequestID   requestContextKey = "school.request_id"
	ctxKeyCorrelation requestContextKey = "school.correlation_id"
)

// ContextWithRequestID stores the current request identifier on the context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || strings.TrimSpace(requestID) == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKeyRequestID, strings.TrimSpace(requestID))
}

// RequestIDFromContext returns the request identifier stored in the context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return strings.TrimSpace(requestID)
	}
	return ""
}

// ContextWithCorrelationID stores the correlation ID on the context.
func ContextWithCorrelationID(ctx context.Context, correlationID string) context.Context {
	if ctx == nil || strings.TrimSpace(correlationID) == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKeyCorrelation, strings.TrimSpace(correlationID))
}

// CorrelationIDFromContext extracts the stored correlation ID.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if correlationID, ok := ctx.Value(ctxKeyCorrelation).(string); ok {
		return strings.TrimSpace(correlationID)
	}
	return ""
}

// LoggerFromContext decorates logger with the request identifiers found on ctx.
func LoggerFromContext(ctx context.Context, logger Logger) Logger {
	fields := Fields{}
	if id := RequestIDFromContext(ctx); id != "" {
		fields["request_id"] = id
	}
	if id := CorrelationIDFromContext(ctx); id != "" {
		fields["correlation_id"] = id
	}
	if len(fields) == 0 {
		if logger == nil {
			return NopLogger()
		}
		return logger
	}
	return WithFields(logger, fields)
}
