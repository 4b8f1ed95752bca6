package activity

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pulse-news/pulse/internal/platform/httpx"
	"github.com/pulse-news/pulse/internal/shared"
)

// Handler exposes the activity history endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// MountRoutes registers activity routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/user/{id}", h.listForUser)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, 0)
}

func (h *Handler) listForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	h.respond(w, r, userID)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, userID int64) {
	actor := shared.ActorFromContext(r.Context())
	if !actor.Authenticated {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	filters := ListFilters{
		UserID:  userID,
		Action:  r.URL.Query().Get("action"),
		Page:    queryInt(r, "page"),
		PerPage: queryInt(r, "per_page"),
	}
	result, err := h.service.ListFor(r.Context(), actor, filters)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func queryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}
