package shared

import (
	"context"

	"github.com/pulse-news/pulse/internal/authz"
)

type actorContextKey struct{}

type requestMetaContextKey struct{}

// RequestMeta carries client details captured by the middleware stack
// for activity records.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// ContextWithRequestMeta stores client request details in context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaContextKey{}, meta)
}

// RequestMetaFromContext extracts client request details from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaContextKey{}).(RequestMeta)
	return meta
}

// ContextWithActor stores the resolved actor in context.
func ContextWithActor(ctx context.Context, actor authz.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context. Requests that never
// passed token resolution yield the anonymous actor.
func ActorFromContext(ctx context.Context) authz.Actor {
	actor, ok := ctx.Value(actorContextKey{}).(authz.Actor)
	if !ok {
		return authz.Anonymous()
	}
	return actor
}
