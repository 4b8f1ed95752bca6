package reactions

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pulse-news/pulse/internal/platform/httpx"
	"github.com/pulse-news/pulse/internal/shared"
)

// Handler exposes reaction endpoints.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validator: validator.New()}
}

// MountArticleRoutes registers the routes nested under an article.
func (h *Handler) MountArticleRoutes(r chi.Router) {
	r.Get("/", h.summary)
	r.Post("/", h.toggle)
	r.Delete("/", h.remove)
}

// MountRoutes registers the actor-scoped routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listMine)
}

type toggleRequest struct {
	Value string `json:"value" validate:"required,oneof=like dislike"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	summary, err := h.service.SummaryFor(r.Context(), actor, chi.URLParam(r, "slug"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor := shared.ActorFromContext(r.Context())
	summary, err := h.service.Toggle(r.Context(), actor, chi.URLParam(r, "slug"), req.Value)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	summary, err := h.service.Remove(r.Context(), actor, chi.URLParam(r, "slug"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	list, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Reaction{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"reactions": list})
}
