package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/pulse-news/pulse/internal/activity"
	"github.com/pulse-news/pulse/internal/app"
	"github.com/pulse-news/pulse/internal/articles"
	"github.com/pulse-news/pulse/internal/auth"
	"github.com/pulse-news/pulse/internal/bookmarks"
	"github.com/pulse-news/pulse/internal/comments"
	"github.com/pulse-news/pulse/internal/observability"
	"github.com/pulse-news/pulse/internal/platform/cache"
	"github.com/pulse-news/pulse/internal/platform/db"
	"github.com/pulse-news/pulse/internal/reactions"
	"github.com/pulse-news/pulse/internal/roles"
	"github.com/pulse-news/pulse/internal/taxonomy"
	"github.com/pulse-news/pulse/internal/token"
	"github.com/pulse-news/pulse/internal/users"
	"github.com/pulse-news/pulse/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, 0)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	issuer, err := token.NewIssuer(cfg.TokenSecret, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		logger.Error("init token issuer", slog.Any("error", err))
		os.Exit(1)
	}
	denylist := token.NewDenylist(redisClient)

	queue := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	activityRepo := activity.NewRepository(pool)
	recorder := activity.NewRecorder(queue, activityRepo, logger)
	activityService := activity.NewService(activityRepo)
	activityHandler := activity.NewHandler(activityService)

	rolesRepo := roles.NewRepository(pool)
	rolesService := roles.NewService(rolesRepo)
	rolesHandler := roles.NewHandler(logger, rolesService)
	if err := rolesService.Seed(ctx); err != nil {
		logger.Error("seed canonical roles", slog.Any("error", err))
		os.Exit(1)
	}

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, rolesService, recorder)
	usersHandler := users.NewHandler(logger, usersService)

	authService := auth.NewService(usersRepo)
	authHandler := auth.NewHandler(logger, authService, usersService, issuer, denylist, recorder)

	taxonomyRepo := taxonomy.NewRepository(pool)
	taxonomyService := taxonomy.NewService(taxonomyRepo)
	taxonomyHandler := taxonomy.NewHandler(logger, taxonomyService)

	articlesRepo := articles.NewRepository(pool)
	articlesService := articles.NewService(articlesRepo, taxonomyService, recorder, queue, logger)
	articlesHandler := articles.NewHandler(logger, articlesService)

	commentsService := comments.NewService(comments.NewRepository(pool), articlesService, recorder)
	commentsHandler := comments.NewHandler(logger, commentsService)

	reactionsService := reactions.NewService(reactions.NewRepository(pool), articlesService)
	reactionsHandler := reactions.NewHandler(reactionsService)

	bookmarksService := bookmarks.NewService(bookmarks.NewRepository(pool), articlesService)
	bookmarksHandler := bookmarks.NewHandler(bookmarksService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger: logger,
		Config: cfg,
		Tokens: token.Middleware{Issuer: issuer, Loader: usersService, Logger: logger},

		AuthHandler:      authHandler,
		UsersHandler:     usersHandler,
		RolesHandler:     rolesHandler,
		ArticlesHandler:  articlesHandler,
		CommentsHandler:  commentsHandler,
		ReactionsHandler: reactionsHandler,
		BookmarksHandler: bookmarksHandler,
		TaxonomyHandler:  taxonomyHandler,
		ActivityHandler:  activityHandler,

		Metrics: metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
