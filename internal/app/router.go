package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pulse-news/pulse/internal/activity"
	"github.com/pulse-news/pulse/internal/articles"
	"github.com/pulse-news/pulse/internal/auth"
	"github.com/pulse-news/pulse/internal/bookmarks"
	"github.com/pulse-news/pulse/internal/comments"
	"github.com/pulse-news/pulse/internal/observability"
	"github.com/pulse-news/pulse/internal/platform/httpx"
	"github.com/pulse-news/pulse/internal/reactions"
	"github.com/pulse-news/pulse/internal/roles"
	"github.com/pulse-news/pulse/internal/taxonomy"
	"github.com/pulse-news/pulse/internal/token"
	"github.com/pulse-news/pulse/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config
	Tokens token.Middleware

	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	RolesHandler     *roles.Handler
	ArticlesHandler  *articles.Handler
	CommentsHandler  *comments.Handler
	ReactionsHandler *reactions.Handler
	BookmarksHandler *bookmarks.Handler
	TaxonomyHandler  *taxonomy.Handler
	ActivityHandler  *activity.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Pulse defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Tokens:  params.Tokens,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Use(LoginRateLimiter())
		params.AuthHandler.MountRoutes(r)
	})

	r.Route("/articles", func(r chi.Router) {
		params.ArticlesHandler.MountRoutes(r)
		r.Route("/{slug}/comments", params.CommentsHandler.MountArticleRoutes)
		r.Route("/{slug}/reactions", params.ReactionsHandler.MountArticleRoutes)
		r.Route("/{slug}/bookmark", params.BookmarksHandler.MountArticleRoutes)
	})

	r.Route("/comments", params.CommentsHandler.MountRoutes)
	r.Route("/reactions", params.ReactionsHandler.MountRoutes)
	r.Route("/bookmarks", params.BookmarksHandler.MountRoutes)
	r.Route("/categories", params.TaxonomyHandler.MountCategoryRoutes)
	r.Route("/tags", params.TaxonomyHandler.MountTagRoutes)
	r.Route("/roles", params.RolesHandler.MountRoutes)
	r.Route("/users", params.UsersHandler.MountRoutes)
	r.Route("/activities", params.ActivityHandler.MountRoutes)

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
