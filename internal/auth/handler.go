package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/erpcore/erp-api/internal/accesscontrol"
	"github.com/erpcore/erp-api/internal/transport"
	"github.com/erpcore/erp-api/pkg/logger"
)

// ServiceAPI is the surface the HTTP layer needs from the auth service.
type ServiceAPI interface {
	Authenticate(dto LoginDTO) (string, *accesscontrol.Identity, error)
	IdentityFromToken(tokenString string) (*accesscontrol.Identity, error)
	CreateSuperAdmin(dto CreateSuperAdminDTO) (*accesscontrol.Identity, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// MountRoutes registers the public auth endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/super-admin", h.CreateSuperAdmin)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, identity, err := h.Service.Authenticate(dto)
	if err != nil {
		switch err {
		case ErrInvalidCredentials:
			h.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		case ErrSecretMissing:
			h.Logger.Error("login failed: signing secret missing")
			h.WriteError(w, http.StatusInternalServerError, "JWT secret not configured")
		default:
			if _, ok := err.(ValidationError); ok {
				h.WriteError(w, http.StatusBadRequest, err.Error())
			} else {
				h.Logger.Error("login failed", "error", err)
				h.WriteError(w, http.StatusInternalServerError, "Login failed")
			}
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, LoginResponse{Token: token, User: identity})
}

// Me returns the identity the auth middleware resolved for this request.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := accesscontrol.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	h.WriteJSON(w, http.StatusOK, MeResponse{User: identity})
}

// CreateSuperAdmin bootstraps the first super admin. Open by design: it
// conflicts as soon as one exists, so it is only usable on a fresh install.
func (h *Handler) CreateSuperAdmin(w http.ResponseWriter, r *http.Request) {
	var dto CreateSuperAdminDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	identity, err := h.Service.CreateSuperAdmin(dto)
	if err != nil {
		switch err {
		case ErrSuperAdminExists:
			h.WriteError(w, http.StatusConflict, "Super admin already exists")
		case ErrEmailInUse:
			h.WriteError(w, http.StatusConflict, "Email already in use")
		default:
			if _, ok := err.(ValidationError); ok {
				h.WriteError(w, http.StatusBadRequest, err.Error())
			} else {
				h.Logger.Error("super admin bootstrap failed", "error", err)
				h.WriteError(w, http.StatusInternalServerError, "Failed to create super admin")
			}
		}
		return
	}

	h.WriteJSON(w, http.StatusCreated, identity)
}
