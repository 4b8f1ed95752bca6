package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pulse-news/pulse/internal/activity"
	"github.com/pulse-news/pulse/internal/platform/httpx"
	"github.com/pulse-news/pulse/internal/shared"
	"github.com/pulse-news/pulse/internal/token"
	"github.com/pulse-news/pulse/internal/users"
)

// Registrar covers the account operations the auth flow needs.
type Registrar interface {
	Register(ctx context.Context, input users.RegisterInput) (users.User, error)
	MarkLogin(ctx context.Context, userID int64, ip string)
}

// ActivityRecorder appends entries to the activity log.
type ActivityRecorder interface {
	Record(ctx context.Context, userID int64, action string, details map[string]any)
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	accounts  Registrar
	issuer    *token.Issuer
	denylist  *token.Denylist
	recorder  ActivityRecorder
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, accounts Registrar, issuer *token.Issuer, denylist *token.Denylist, recorder ActivityRecorder) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		accounts:  accounts,
		issuer:    issuer,
		denylist:  denylist,
		recorder:  recorder,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/refresh", h.handleRefresh)
	r.Post("/logout", h.handleLogout)
}

type registerRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

type loginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type sessionResponse struct {
	Access    string     `json:"access"`
	Refresh   string     `json:"refresh"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      users.User `json:"user"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	user, err := h.accounts.Register(r.Context(), users.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.logger.Error("register", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	pair, err := h.issuer.IssuePair(user.ID)
	if err != nil {
		h.logger.Error("issue tokens", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sessionResponse{
		Access:    pair.Access,
		Refresh:   pair.Refresh,
		ExpiresAt: pair.ExpiresAt,
		User:      user,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	user, err := h.service.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pair, err := h.issuer.IssuePair(user.ID)
	if err != nil {
		h.logger.Error("issue tokens", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	meta := shared.RequestMetaFromContext(r.Context())
	h.accounts.MarkLogin(r.Context(), user.ID, meta.IP)
	h.recorder.Record(r.Context(), user.ID, activity.ActionLogin, nil)
	httpx.JSON(w, http.StatusOK, sessionResponse{
		Access:    pair.Access,
		Refresh:   pair.Refresh,
		ExpiresAt: pair.ExpiresAt,
		User:      user,
	})
}

// handleRefresh rotates a refresh token. The old token is revoked so a
// stolen one cannot be replayed after its rightful owner refreshed.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.verifiedRefreshClaims(w, r)
	if !ok {
		return
	}
	if err := h.denylist.Revoke(r.Context(), claims.ID, time.Unix(claims.ExpiresAt, 0)); err != nil {
		h.logger.Error("revoke refresh token", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	pair, err := h.issuer.IssuePair(claims.Subject)
	if err != nil {
		h.logger.Error("issue tokens", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"access":     pair.Access,
		"refresh":    pair.Refresh,
		"expires_at": pair.ExpiresAt,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.verifiedRefreshClaims(w, r)
	if !ok {
		return
	}
	if err := h.denylist.Revoke(r.Context(), claims.ID, time.Unix(claims.ExpiresAt, 0)); err != nil {
		h.logger.Error("revoke refresh token", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	h.recorder.Record(r.Context(), claims.Subject, activity.ActionLogout, nil)
	httpx.NoContent(w)
}

func (h *Handler) verifiedRefreshClaims(w http.ResponseWriter, r *http.Request) (token.Claims, bool) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return token.Claims{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return token.Claims{}, false
	}
	claims, err := h.issuer.ParseRefresh(req.Refresh)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid refresh token")
		return token.Claims{}, false
	}
	revoked, err := h.denylist.Revoked(r.Context(), claims.ID)
	if err != nil {
		h.logger.Warn("denylist lookup failed", slog.Any("error", err))
	}
	if revoked {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid refresh token")
		return token.Claims{}, false
	}
	return claims, true
}
