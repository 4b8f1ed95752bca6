package roles

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pulse-news/pulse/internal/authz"
	"github.com/pulse-news/pulse/internal/platform/httpx"
	"github.com/pulse-news/pulse/internal/shared"
)

// Handler manages role registry endpoints. All routes are admin-only;
// roles are never mutated by regular request flow.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(shared.RequireCapability(authz.CapUserManage))
		r.Get("/", h.list)
		r.Get("/{name}", h.show)
		r.Post("/", h.create)
		r.Put("/{name}/capabilities", h.setCapabilities)
	})
}

type createRoleRequest struct {
	Name         string   `json:"name" validate:"required,min=2,max=50"`
	DisplayName  string   `json:"display_name" validate:"max=100"`
	Description  string   `json:"description" validate:"max=500"`
	Capabilities []string `json:"capabilities" validate:"dive,min=3"`
}

type capabilitiesRequest struct {
	Capabilities []string `json:"capabilities" validate:"required,dive,min=3"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": result})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	role, err := h.service.Resolve(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	role, err := h.service.Create(r.Context(), req.Name, req.DisplayName, req.Description, toCapabilities(req.Capabilities))
	if err != nil {
		h.logger.Error("create role", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
}

func (h *Handler) setCapabilities(w http.ResponseWriter, r *http.Request) {
	var req capabilitiesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	role, err := h.service.SetCapabilities(r.Context(), chi.URLParam(r, "name"), toCapabilities(req.Capabilities))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func toCapabilities(names []string) []authz.Capability {
	caps := make([]authz.Capability, 0, len(names))
	for _, n := range names {
		caps = append(caps, authz.Capability(n))
	}
	return caps
}
