package articles

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pulse-news/pulse/internal/authz"
	"github.com/pulse-news/pulse/internal/platform/httpx"
	"github.com/pulse-news/pulse/internal/shared"
)

// Handler exposes article endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers article routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{slug}", h.show)
	r.Put("/{slug}", h.update)
	r.Delete("/{slug}", h.remove)
	r.Post("/{slug}/publish", h.publish)
	r.Post("/{slug}/unpublish", h.unpublish)
	r.Post("/{slug}/archive", h.archive)
	r.Post("/{slug}/view", h.recordView)
}

type createArticleRequest struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Summary       string   `json:"summary" validate:"max=500"`
	Content       string   `json:"content" validate:"required"`
	FeaturedImage string   `json:"featured_image" validate:"omitempty,url"`
	CategoryID    *int64   `json:"category_id"`
	Tags          []string `json:"tags" validate:"max=10,dive,max=50"`
}

type updateArticleRequest struct {
	Title         *string   `json:"title" validate:"omitempty,max=200"`
	Summary       *string   `json:"summary" validate:"omitempty,max=500"`
	Content       *string   `json:"content"`
	FeaturedImage *string   `json:"featured_image" validate:"omitempty,url"`
	CategoryID    *int64    `json:"category_id"`
	ClearCategory bool      `json:"clear_category"`
	Tags          *[]string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters := ListFilters{
		Search:       query.Get("search"),
		CategorySlug: query.Get("category"),
		State:        query.Get("state"),
	}
	if tags := query.Get("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filters.TagSlugs = append(filters.TagSlugs, t)
			}
		}
	}
	filters.AuthorID, _ = strconv.ParseInt(query.Get("author_id"), 10, 64)
	filters.Page, _ = strconv.Atoi(query.Get("page"))
	filters.PerPage, _ = strconv.Atoi(query.Get("per_page"))

	actor := shared.ActorFromContext(r.Context())
	result, err := h.service.List(r.Context(), actor, filters)
	if err != nil {
		h.logger.Error("list articles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	article, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "slug"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, article)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createArticleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor := shared.ActorFromContext(r.Context())
	article, err := h.service.Create(r.Context(), actor, CreateInput{
		Title:         req.Title,
		Summary:       req.Summary,
		Content:       req.Content,
		FeaturedImage: req.FeaturedImage,
		CategoryID:    req.CategoryID,
		Tags:          req.Tags,
	})
	if err != nil {
		h.logger.Error("create article", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, article)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateArticleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor := shared.ActorFromContext(r.Context())
	article, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "slug"), UpdateInput{
		Title:         req.Title,
		Summary:       req.Summary,
		Content:       req.Content,
		FeaturedImage: req.FeaturedImage,
		CategoryID:    req.CategoryID,
		ClearCategory: req.ClearCategory,
		Tags:          req.Tags,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, article)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "slug")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Publish)
}

func (h *Handler) unpublish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Unpublish)
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Archive)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actor authz.Actor, slug string) (Article, error)) {
	actor := shared.ActorFromContext(r.Context())
	article, err := fn(r.Context(), actor, chi.URLParam(r, "slug"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, article)
}

func (h *Handler) recordView(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	if err := h.service.RecordView(r.Context(), actor, chi.URLParam(r, "slug")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}
