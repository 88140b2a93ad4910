package middleware

import (
	"context"

	"github.com/angelmondragon/rxcart-backend/pkg/auth"
)

type contextKey string

const ctxActor contextKey = "actor"

// ActorFromContext returns the authenticated caller, if any.
func ActorFromContext(ctx context.Context) (auth.Actor, bool) {
	if ctx == nil {
		return auth.Actor{}, false
	}
	actor, ok := ctx.Value(ctxActor).(auth.Actor)
	return actor, ok
}

// WithActor injects the caller into the context; used by Auth and tests.
func WithActor(ctx context.Context, actor auth.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}

// UserIDFromContext returns the caller's user id as a string.
func UserIDFromContext(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor.UserID.String()
	}
	return ""
}

// PharmacyIDFromContext returns the pharmacy the caller acts for.
func PharmacyIDFromContext(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok && actor.PharmacyID != nil {
		return actor.PharmacyID.String()
	}
	return ""
}
