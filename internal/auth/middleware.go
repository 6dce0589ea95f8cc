package auth

import (
	"net/http"

	"github.com/erpcore/erp-api/internal/accesscontrol"
)

// Middleware authenticates a request: bearer extraction, token
// verification, a fresh hydrated lookup of the subject, permission
// resolution, then the identity goes into the request context. Each request
// is resolved from scratch; role changes take effect on the next call.
//
// All credential failures map to the same 401 so a caller cannot
// distinguish a forged token from an expired one or a deactivated account.
// Only a missing signing secret surfaces differently (500): that is a
// deployment fault, not a credential fault.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "Missing token")
			return
		}

		identity, err := h.Service.IdentityFromToken(token)
		if err != nil {
			if err == ErrSecretMissing {
				h.Logger.Error("auth middleware: signing secret missing")
				h.WriteError(w, http.StatusInternalServerError, "JWT secret not configured")
				return
			}
			h.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := accesscontrol.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
