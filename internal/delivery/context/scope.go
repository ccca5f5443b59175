package context

import (
	"context"
	"log/slog"

	"marketplace/internal/domain/entity"
)

// WithLogger returns ctx carrying the request-scoped logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// GetLoggerOrDefault returns the request-scoped logger, or fallback outside a request.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(keyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}

// WithActor returns ctx carrying the authenticated caller. When a request logger is present
// it is re-scoped with the caller's account id and role.
func WithActor(ctx context.Context, actor entity.Actor) context.Context {
	ctx = context.WithValue(ctx, keyActor, actor)
	if logger := GetLoggerOrDefault(ctx, nil); logger != nil {
		ctx = WithLogger(ctx, logger.With(
			slog.String("actor_id", actor.AccountID.String()),
			slog.String("actor_role", actor.Role.String()),
		))
	}

	return ctx
}

// ActorFromContext returns the authenticated caller, if any.
func ActorFromContext(ctx context.Context) (entity.Actor, bool) {
	actor, ok := ctx.Value(keyActor).(entity.Actor)

	return actor, ok
}
