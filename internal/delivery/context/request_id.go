// Package context carries request-scoped values (request ID, logger) across the
// echo handler and the plain context.Context handed to use cases.
package context

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HeaderXRequestID is the HTTP header name for request ID.
const HeaderXRequestID = "X-Request-Id"

// echoKeyRequestID is the echo.Context store key for the request ID.
const echoKeyRequestID = "request_id"

type ctxKey int

const (
	keyRequestID ctxKey = iota
	keyLogger
)

// GetRequestID returns the request ID stored on c. Outside the request-ID middleware it
// falls back to the request context, then to the response header, and only then mints
// a new ID, which it stores so later calls agree.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(echoKeyRequestID).(string); ok && id != "" {
		return id
	}

	id := GetRequestIDFromContext(c.Request().Context())
	if id == "" {
		id = c.Response().Header().Get(HeaderXRequestID)
	}
	if id == "" {
		id = uuid.NewString()
	}
	SetRequestID(c, id)

	return id
}

// SetRequestID sets the request ID in echo.Context.
func SetRequestID(c echo.Context, requestID string) {
	c.Set(echoKeyRequestID, requestID)
}

// GetRequestIDFromContext returns the request ID, or "" when ctx carries none.
func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)

	return id
}

// WithRequestID returns a new context with the request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// GetLoggerOrDefault returns the request-scoped logger, or fallback tagged with the
// context's request ID when the middleware did not run (worker pushes, CLI calls).
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(keyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}
	if fallback == nil {
		fallback = slog.Default()
	}
	if id := GetRequestIDFromContext(ctx); id != "" {
		return fallback.With(slog.String("request_id", id))
	}

	return fallback
}

// WithLogger returns a new context with the logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}
