package app_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pulse-news/pulse/internal/activity"
	"github.com/pulse-news/pulse/internal/app"
	"github.com/pulse-news/pulse/internal/articles"
	"github.com/pulse-news/pulse/internal/auth"
	"github.com/pulse-news/pulse/internal/bookmarks"
	"github.com/pulse-news/pulse/internal/comments"
	"github.com/pulse-news/pulse/internal/observability"
	"github.com/pulse-news/pulse/internal/reactions"
	"github.com/pulse-news/pulse/internal/roles"
	"github.com/pulse-news/pulse/internal/taxonomy"
	"github.com/pulse-news/pulse/internal/token"
	"github.com/pulse-news/pulse/internal/users"

	_ "github.com/pulse-news/pulse/internal/testing/guard"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.Default()
	cfg := &app.Config{AppEnv: "test"}

	issuer, err := token.NewIssuer("0123456789abcdef0123456789abcdef", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	usersService := users.NewService(nil, nil, nil)

	return app.NewRouter(app.RouterParams{
		Logger: logger,
		Config: cfg,
		Tokens: token.Middleware{Issuer: issuer, Loader: usersService, Logger: logger},

		AuthHandler:      auth.NewHandler(logger, auth.NewService(nil), usersService, issuer, nil, nil),
		UsersHandler:     users.NewHandler(logger, usersService),
		RolesHandler:     roles.NewHandler(logger, roles.NewService(nil)),
		ArticlesHandler:  articles.NewHandler(logger, articles.NewService(nil, nil, nil, nil, logger)),
		CommentsHandler:  comments.NewHandler(logger, comments.NewService(nil, nil, nil)),
		ReactionsHandler: reactions.NewHandler(reactions.NewService(nil, nil)),
		BookmarksHandler: bookmarks.NewHandler(bookmarks.NewService(nil, nil)),
		TaxonomyHandler:  taxonomy.NewHandler(logger, taxonomy.NewService(nil)),
		ActivityHandler:  activity.NewHandler(activity.NewService(nil)),

		Metrics: observability.NewMetrics(),
	})
}

func TestRouterHealthz(t *testing.T) {
	router := testRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRouterUnknownRouteReturnsProblemJSON(t *testing.T) {
	router := testRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Contains(t, rr.Header().Get("Content-Type"), "application/json")
}

func TestRouterServesMetrics(t *testing.T) {
	router := testRouter(t)

	warm := httptest.NewRecorder()
	router.ServeHTTP(warm, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, warm.Code)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "pulse_http_requests_total")
}