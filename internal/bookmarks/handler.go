package bookmarks

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pulse-news/pulse/internal/platform/httpx"
	"github.com/pulse-news/pulse/internal/shared"
)

// Handler exposes bookmark endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// MountArticleRoutes registers the routes nested under an article.
func (h *Handler) MountArticleRoutes(r chi.Router) {
	r.Get("/", h.check)
	r.Post("/", h.toggle)
}

// MountRoutes registers the actor-scoped routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	bookmarked, err := h.service.Toggle(r.Context(), actor, chi.URLParam(r, "slug"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"bookmarked": bookmarked})
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	bookmarked, err := h.service.Check(r.Context(), actor, chi.URLParam(r, "slug"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"bookmarked": bookmarked})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	result, err := h.service.List(r.Context(), actor, page, perPage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
