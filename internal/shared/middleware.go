package shared

import (
	"net/http"

	"github.com/pulse-news/pulse/internal/authz"
)

// RequireCapability guards a route group: the actor must be privileged or
// hold at least one of the listed capabilities.
func RequireCapability(caps ...authz.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			if !actor.Authenticated {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if actor.Privileged() {
				next.ServeHTTP(w, r)
				return
			}
			for _, c := range caps {
				if actor.Has(c) {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}
