package token

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pulse-news/pulse/internal/authz"
	"github.com/pulse-news/pulse/internal/shared"
)

// ActorLoader resolves a user ID from verified claims into a full actor
// with derived capabilities.
type ActorLoader interface {
	ActorByID(ctx context.Context, id int64) (authz.Actor, error)
}

// Middleware resolves bearer tokens into the request context's actor.
// Requests without a token, or with an invalid one, proceed as anonymous;
// public reads must keep working and handlers deny writes themselves.
type Middleware struct {
	Issuer *Issuer
	Loader ActorLoader
	Logger *slog.Logger
}

// Resolve is the chi middleware installing the actor into context.
func (m Middleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := authz.Anonymous()
		if raw := bearerToken(r); raw != "" {
			claims, err := m.Issuer.ParseAccess(raw)
			if err == nil {
				loaded, loadErr := m.Loader.ActorByID(r.Context(), claims.Subject)
				if loadErr == nil {
					actor = loaded
				} else if m.Logger != nil {
					m.Logger.Warn("resolve actor", slog.Int64("user_id", claims.Subject), slog.Any("error", loadErr))
				}
			}
		}
		ctx := shared.ContextWithActor(r.Context(), actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuthenticated rejects anonymous requests before the handler runs.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !shared.ActorFromContext(r.Context()).Authenticated {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}
