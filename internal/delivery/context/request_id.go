// Package context carries per-request values (correlation id, scoped logger, authenticated
// actor) between echo handlers and the usecases they call.
package context

import (
	"context"
	"unicode"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	keyRequestID contextKey = "request_id"
	keyLogger    contextKey = "logger"
	keyActor     contextKey = "actor"

	// HeaderXRequestID carries the correlation id in both directions.
	HeaderXRequestID = "X-Request-Id"

	// MaxRequestIDLength bounds client-supplied correlation ids.
	MaxRequestIDLength = 128
)

// NormalizeRequestID returns raw when it is a usable correlation id: non-empty, at most
// MaxRequestIDLength bytes, printable ASCII without spaces. Otherwise it returns a new UUID.
func NormalizeRequestID(raw string) string {
	if raw == "" || len(raw) > MaxRequestIDLength {
		return uuid.NewString()
	}
	for _, r := range raw {
		if r > unicode.MaxASCII || !unicode.IsGraphic(r) || unicode.IsSpace(r) {
			return uuid.NewString()
		}
	}

	return raw
}

// GetRequestID returns the correlation id stored on the echo context. Requests that never
// passed the request-id middleware get a fresh id so error bodies always carry one.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(string(keyRequestID)).(string); ok && id != "" {
		return id
	}

	return uuid.NewString()
}

// SetRequestID stores the correlation id on the echo context.
func SetRequestID(c echo.Context, requestID string) {
	c.Set(string(keyRequestID), requestID)
}

// WithRequestID returns ctx carrying the correlation id, for usecase logs and events.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// GetRequestIDFromContext returns the correlation id, or "" outside a request.
func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)

	return id
}
